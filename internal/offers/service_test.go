package offers

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/cia-labs/nischte-app/internal/cart"
	"github.com/cia-labs/nischte-app/internal/platform"
)

func TestResolveEmptyCandidatesSkipsNetwork(t *testing.T) {
	t.Parallel()

	source := &stubSource{}
	svc, err := NewService(source, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	items := []cart.Item{{ID: "a", ShopID: "s1", OfferIDs: []string{}}}
	res := svc.Resolve(context.Background(), "tok", items)

	if len(res.Offers) != 0 || res.Warning != "" {
		t.Fatalf("expected empty resolution, got %+v", res)
	}
	if source.eligibleCalls != 0 || source.detailCalls != 0 {
		t.Fatalf("no network call expected for empty candidate set")
	}
}

func TestResolveHappyPath(t *testing.T) {
	t.Parallel()

	rate := decimal.NewFromInt(20)
	record := platform.OfferRecord{ID: "o1"}
	record.OfferType.Name = "festive"
	record.OfferDescription.DiscountRate = &rate
	record.OfferDescription.Description = "20% off"

	source := &stubSource{
		eligible: []platform.EligibleOffer{{OfferID: "o1"}},
		records:  []platform.OfferRecord{record},
	}
	svc, _ := NewService(source, nil)

	items := []cart.Item{
		{ID: "a", ShopID: "s1", OfferIDs: []string{"o1", "o2"}},
		{ID: "b", ShopID: "s1", OfferIDs: []string{"o1"}},
	}
	res := svc.Resolve(context.Background(), "tok", items)

	if len(source.gotCandidates) != 2 {
		t.Fatalf("candidates should be distinct, got %v", source.gotCandidates)
	}
	offer, ok := res.Offers["o1"]
	if !ok {
		t.Fatalf("expected o1 resolved, got %v", res.Offers)
	}
	if offer.Name != "festive" || offer.DiscountRate == nil {
		t.Fatalf("record not mapped: %+v", offer)
	}
}

func TestResolveNoEligibleOffersSkipsDetails(t *testing.T) {
	t.Parallel()

	source := &stubSource{}
	svc, _ := NewService(source, nil)

	items := []cart.Item{{ID: "a", ShopID: "s1", OfferIDs: []string{"o1"}}}
	res := svc.Resolve(context.Background(), "tok", items)

	if len(res.Offers) != 0 || res.Warning != "" {
		t.Fatalf("expected empty resolution, got %+v", res)
	}
	if source.detailCalls != 0 {
		t.Fatalf("details should not be fetched when nothing is eligible")
	}
}

func TestResolveFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	source := &stubSource{eligibleErr: errors.New("upstream down")}
	svc, _ := NewService(source, nil)

	items := []cart.Item{{ID: "a", ShopID: "s1", OfferIDs: []string{"o1"}}}
	res := svc.Resolve(context.Background(), "tok", items)

	if len(res.Offers) != 0 {
		t.Fatalf("failed resolution must leave offers empty")
	}
	if res.Warning == "" {
		t.Fatalf("failed resolution must carry a warning")
	}
}

func TestResolveDetailsFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	source := &stubSource{
		eligible:   []platform.EligibleOffer{{OfferID: "o1"}},
		detailsErr: errors.New("upstream down"),
	}
	svc, _ := NewService(source, nil)

	items := []cart.Item{{ID: "a", ShopID: "s1", OfferIDs: []string{"o1"}}}
	res := svc.Resolve(context.Background(), "tok", items)

	if len(res.Offers) != 0 || res.Warning == "" {
		t.Fatalf("expected warning with empty offers, got %+v", res)
	}
}

type stubSource struct {
	eligible    []platform.EligibleOffer
	eligibleErr error
	records     []platform.OfferRecord
	detailsErr  error

	gotCandidates []string
	eligibleCalls int
	detailCalls   int
}

func (s *stubSource) EligibleOffers(ctx context.Context, token string, offerIDs []string) ([]platform.EligibleOffer, error) {
	s.eligibleCalls++
	s.gotCandidates = offerIDs
	return s.eligible, s.eligibleErr
}

func (s *stubSource) OfferDetails(ctx context.Context, token string, offerIDs []string) ([]platform.OfferRecord, error) {
	s.detailCalls++
	return s.records, s.detailsErr
}
