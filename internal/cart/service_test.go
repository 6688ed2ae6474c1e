package cart

import (
	"context"
	"testing"
	"time"

	pkgerrors "github.com/cia-labs/nischte-app/pkg/errors"
	"github.com/cia-labs/nischte-app/pkg/redis"
	"github.com/shopspring/decimal"
)

func newTestService(t *testing.T) (Service, *stubStore) {
	t.Helper()
	store := newStubStore()
	svc, err := NewService(store, time.Hour)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, store
}

func TestServiceGetReturnsEmptySessionForNewUser(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	session, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(session.State.Items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(session.State.Items))
	}
	if session.Selected != nil {
		t.Fatalf("expected no selection")
	}
}

func TestServiceAddPersistsAcrossLoads(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "user-1", Item{ID: "a", ShopID: "s1", UnitPrice: decimal.NewFromInt(10)}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	session, err := svc.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(session.State.Items) != 1 || session.State.Items[0].Quantity != 1 {
		t.Fatalf("unexpected session state: %+v", session.State)
	}
}

func TestServiceAddRejectsMissingIdentifiers(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	_, err := svc.Add(context.Background(), "user-1", Item{ID: "", ShopID: "s1"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceSelectOfferIsExclusive(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "user-1", Item{ID: "a", ShopID: "s1", UnitPrice: decimal.NewFromInt(10), OfferIDs: []string{"o1"}}); err != nil {
		t.Fatalf("add a: %v", err)
	}
	if _, err := svc.Add(ctx, "user-1", Item{ID: "b", ShopID: "s1", UnitPrice: decimal.NewFromInt(5), OfferIDs: []string{"o2"}}); err != nil {
		t.Fatalf("add b: %v", err)
	}

	session, err := svc.SelectOffer(ctx, "user-1", &SelectedOffer{ItemID: "a", OfferID: "o1"})
	if err != nil {
		t.Fatalf("select o1: %v", err)
	}
	if session.Selected == nil || session.Selected.OfferID != "o1" {
		t.Fatalf("expected o1 selected, got %+v", session.Selected)
	}

	session, err = svc.SelectOffer(ctx, "user-1", &SelectedOffer{ItemID: "b", OfferID: "o2"})
	if err != nil {
		t.Fatalf("select o2: %v", err)
	}
	if session.Selected == nil || session.Selected.OfferID != "o2" || session.Selected.ItemID != "b" {
		t.Fatalf("selecting o2 must supersede o1, got %+v", session.Selected)
	}
}

func TestServiceSelectOfferValidatesAssociation(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "user-1", Item{ID: "a", ShopID: "s1", UnitPrice: decimal.NewFromInt(10), OfferIDs: []string{"o1"}}); err != nil {
		t.Fatalf("add: %v", err)
	}

	_, err := svc.SelectOffer(ctx, "user-1", &SelectedOffer{ItemID: "a", OfferID: "other"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = svc.SelectOffer(ctx, "user-1", &SelectedOffer{ItemID: "missing", OfferID: "o1"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestServiceSelectionDroppedWhenLineRemoved(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "user-1", Item{ID: "a", ShopID: "s1", UnitPrice: decimal.NewFromInt(10), OfferIDs: []string{"o1"}}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.SelectOffer(ctx, "user-1", &SelectedOffer{ItemID: "a", OfferID: "o1"}); err != nil {
		t.Fatalf("select: %v", err)
	}

	session, err := svc.Remove(ctx, "user-1", "a")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if session.Selected != nil {
		t.Fatalf("selection should drop with its line, got %+v", session.Selected)
	}
}

func TestServiceCorruptSessionStartsFresh(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	store.data[store.CartKey("user-1")] = "{not json"

	session, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(session.State.Items) != 0 {
		t.Fatalf("corrupt session should reset to empty cart")
	}
}

type stubStore struct {
	data map[string]string
}

func newStubStore() *stubStore {
	return &stubStore{data: map[string]string{}}
}

func (s *stubStore) Get(ctx context.Context, key string) (string, error) {
	v, ok := s.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (s *stubStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	s.data[key] = value.(string)
	return nil
}

func (s *stubStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

func (s *stubStore) CartKey(userID string) string {
	return "test:cart:" + userID
}
