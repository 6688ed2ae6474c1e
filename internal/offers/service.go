package offers

import (
	"context"

	"github.com/cia-labs/nischte-app/internal/cart"
	"github.com/cia-labs/nischte-app/internal/platform"
	"github.com/cia-labs/nischte-app/internal/pricing"
	pkgerrors "github.com/cia-labs/nischte-app/pkg/errors"
	"github.com/cia-labs/nischte-app/pkg/logger"
)

// Service narrows the offers referenced by the cart down to the currently
// eligible ones. Eligibility is decided server-side; this never evaluates
// expiry or usage rules locally.
type Service interface {
	Resolve(ctx context.Context, token string, items []cart.Item) *Resolution
}

// Resolution is the resolver output. A failed resolution leaves Offers empty
// and sets Warning; checkout stays possible without offers, so resolution
// never propagates an error.
type Resolution struct {
	Offers  map[string]pricing.Offer
	Warning string
}

// OfferSource is the slice of the platform client the resolver needs.
type OfferSource interface {
	EligibleOffers(ctx context.Context, token string, offerIDs []string) ([]platform.EligibleOffer, error)
	OfferDetails(ctx context.Context, token string, offerIDs []string) ([]platform.OfferRecord, error)
}

type service struct {
	source OfferSource
	logg   *logger.Logger
}

// NewService wires the offer resolver.
func NewService(source OfferSource, logg *logger.Logger) (Service, error) {
	if source == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "offer source required")
	}
	return &service{source: source, logg: logg}, nil
}

func (s *service) Resolve(ctx context.Context, token string, items []cart.Item) *Resolution {
	empty := &Resolution{Offers: map[string]pricing.Offer{}}

	candidates := candidateIDs(items)
	if len(candidates) == 0 {
		return empty
	}

	eligible, err := s.source.EligibleOffers(ctx, token, candidates)
	if err != nil {
		return s.unavailable(ctx, err)
	}
	if len(eligible) == 0 {
		return empty
	}

	ids := make([]string, 0, len(eligible))
	for _, offer := range eligible {
		ids = append(ids, offer.OfferID)
	}

	records, err := s.source.OfferDetails(ctx, token, ids)
	if err != nil {
		return s.unavailable(ctx, err)
	}

	resolved := make(map[string]pricing.Offer, len(records))
	for _, record := range records {
		resolved[record.ID] = pricing.Offer{
			ID:           record.ID,
			Name:         record.OfferType.Name,
			Description:  record.OfferDescription.Description,
			DiscountRate: record.OfferDescription.DiscountRate,
			PlusOffers:   record.OfferDescription.PlusOffers,
		}
	}
	return &Resolution{Offers: resolved}
}

func (s *service) unavailable(ctx context.Context, err error) *Resolution {
	if s.logg != nil {
		s.logg.Error(ctx, "offers.resolve_failed", err)
	}
	return &Resolution{
		Offers:  map[string]pricing.Offer{},
		Warning: "offers are currently unavailable",
	}
}

// candidateIDs collects the distinct offer ids referenced across cart items,
// preserving first-seen order.
func candidateIDs(items []cart.Item) []string {
	seen := map[string]bool{}
	ids := make([]string, 0)
	for _, item := range items {
		for _, id := range item.OfferIDs {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}
