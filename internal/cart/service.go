package cart

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	pkgerrors "github.com/cia-labs/nischte-app/pkg/errors"
	"github.com/cia-labs/nischte-app/pkg/redis"
)

// Session is the per-user cart plus the single cart-wide offer selection.
type Session struct {
	State    State          `json:"state"`
	Selected *SelectedOffer `json:"selected,omitempty"`
}

// Service owns the session cart lifecycle. All mutations go through the
// documented transitions; the state is never written directly.
type Service interface {
	Get(ctx context.Context, userID string) (*Session, error)
	Add(ctx context.Context, userID string, item Item) (*Session, error)
	Remove(ctx context.Context, userID, itemID string) (*Session, error)
	UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (*Session, error)
	Load(ctx context.Context, userID string, items []Item) (*Session, error)
	SelectOffer(ctx context.Context, userID string, selection *SelectedOffer) (*Session, error)
	Clear(ctx context.Context, userID string) error
}

// SessionStore is the slice of the redis client the cart needs.
type SessionStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(userID string) string
}

type service struct {
	store SessionStore
	ttl   time.Duration
}

// NewService wires the cart session service.
func NewService(store SessionStore, ttl time.Duration) (Service, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "cart session store required")
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &service{store: store, ttl: ttl}, nil
}

func (s *service) Get(ctx context.Context, userID string) (*Session, error) {
	return s.load(ctx, userID)
}

func (s *service) Add(ctx context.Context, userID string, item Item) (*Session, error) {
	if strings.TrimSpace(item.ID) == "" || strings.TrimSpace(item.ShopID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id and shop id required")
	}
	return s.transition(ctx, userID, AddToCart{Item: item})
}

func (s *service) Remove(ctx context.Context, userID, itemID string) (*Session, error) {
	return s.transition(ctx, userID, RemoveFromCart{ItemID: itemID})
}

func (s *service) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (*Session, error) {
	return s.transition(ctx, userID, UpdateQuantity{ItemID: itemID, Quantity: quantity})
}

func (s *service) Load(ctx context.Context, userID string, items []Item) (*Session, error) {
	return s.transition(ctx, userID, LoadCart{Items: items})
}

func (s *service) SelectOffer(ctx context.Context, userID string, selection *SelectedOffer) (*Session, error) {
	session, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if selection == nil {
		session.Selected = nil
		return session, s.save(ctx, userID, session)
	}

	idx := indexOf(session.State.Items, selection.ItemID)
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	if !containsOffer(session.State.Items[idx].OfferIDs, selection.OfferID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer does not apply to this item")
	}

	// Choosing any offer supersedes every prior selection: one offer active
	// across the whole cart.
	session.Selected = &SelectedOffer{ItemID: selection.ItemID, OfferID: selection.OfferID}
	return session, s.save(ctx, userID, session)
}

func (s *service) Clear(ctx context.Context, userID string) error {
	if err := s.store.Del(ctx, s.store.CartKey(userID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart session")
	}
	return nil
}

func (s *service) transition(ctx context.Context, userID string, action Action) (*Session, error) {
	session, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	session.State = Apply(session.State, action)

	// A selection pointing at a line that no longer exists is dropped.
	if session.Selected != nil && indexOf(session.State.Items, session.Selected.ItemID) < 0 {
		session.Selected = nil
	}

	if err := s.save(ctx, userID, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *service) load(ctx context.Context, userID string) (*Session, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	raw, err := s.store.Get(ctx, s.store.CartKey(userID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &Session{State: State{Items: []Item{}}}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart session")
	}

	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		// A corrupt session is unrecoverable; start fresh rather than fail
		// every cart operation for the user.
		return &Session{State: State{Items: []Item{}}}, nil
	}
	if session.State.Items == nil {
		session.State.Items = []Item{}
	}
	return &session, nil
}

func (s *service) save(ctx context.Context, userID string, session *Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart session")
	}
	if err := s.store.Set(ctx, s.store.CartKey(userID), string(payload), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart session")
	}
	return nil
}

func containsOffer(ids []string, offerID string) bool {
	for _, id := range ids {
		if id == offerID {
			return true
		}
	}
	return false
}
