package cart

import (
	"testing"

	"github.com/shopspring/decimal"
)

func item(id, shopID string, price float64, offerIDs ...string) Item {
	return Item{
		ID:        id,
		ShopID:    shopID,
		Name:      "item-" + id,
		UnitPrice: decimal.NewFromFloat(price),
		Quantity:  1,
		OfferIDs:  offerIDs,
	}
}

func TestAddToCartNewItemStartsAtQuantityOne(t *testing.T) {
	t.Parallel()

	state := Apply(State{}, AddToCart{Item: item("a", "s1", 10)})

	if len(state.Items) != 1 {
		t.Fatalf("expected one item, got %d", len(state.Items))
	}
	if state.Items[0].Quantity != 1 {
		t.Fatalf("expected quantity 1, got %d", state.Items[0].Quantity)
	}
	if state.Items[0].OfferIDs == nil {
		t.Fatalf("offer ids should be normalized to empty, got nil")
	}
	if !state.Total.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected total 10, got %s", state.Total)
	}
}

func TestAddToCartIncrementsExistingItem(t *testing.T) {
	t.Parallel()

	state := Apply(State{}, AddToCart{Item: item("a", "s1", 10, "offer-1")})
	state = Apply(state, AddToCart{Item: item("a", "s1", 10)})

	if len(state.Items) != 1 {
		t.Fatalf("expected one line, got %d", len(state.Items))
	}
	if state.Items[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", state.Items[0].Quantity)
	}
	if len(state.Items[0].OfferIDs) != 1 || state.Items[0].OfferIDs[0] != "offer-1" {
		t.Fatalf("existing offer ids should be preserved, got %v", state.Items[0].OfferIDs)
	}
	if !state.Total.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected total 20, got %s", state.Total)
	}
}

func TestAddToCartBackfillsOfferIDsWhenPreviouslyEmpty(t *testing.T) {
	t.Parallel()

	state := Apply(State{}, AddToCart{Item: item("a", "s1", 10)})
	state = Apply(state, AddToCart{Item: item("a", "s1", 10, "offer-2")})

	if len(state.Items[0].OfferIDs) != 1 || state.Items[0].OfferIDs[0] != "offer-2" {
		t.Fatalf("expected payload offer ids to backfill, got %v", state.Items[0].OfferIDs)
	}
}

func TestAddToCartFromDifferentShopReplacesCart(t *testing.T) {
	t.Parallel()

	state := Apply(State{}, AddToCart{Item: item("a", "s1", 10)})
	state = Apply(state, AddToCart{Item: item("b", "s1", 5)})
	state = Apply(state, AddToCart{Item: item("c", "s2", 7)})

	if len(state.Items) != 1 {
		t.Fatalf("switching shops should replace the cart, got %d items", len(state.Items))
	}
	if state.Items[0].ID != "c" || state.Items[0].ShopID != "s2" {
		t.Fatalf("expected only the new shop's item, got %+v", state.Items[0])
	}
	if state.Items[0].Quantity != 1 {
		t.Fatalf("replacement entry should have quantity 1, got %d", state.Items[0].Quantity)
	}
	if !state.Total.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("expected total 7, got %s", state.Total)
	}
}

func TestSingleShopInvariantHoldsAcrossSequences(t *testing.T) {
	t.Parallel()

	adds := []Item{
		item("a", "s1", 10),
		item("b", "s2", 5),
		item("c", "s2", 3),
		item("d", "s3", 1),
		item("e", "s3", 2),
		item("e", "s3", 2),
	}

	state := State{}
	for _, payload := range adds {
		state = Apply(state, AddToCart{Item: payload})
		shops := map[string]bool{}
		for _, it := range state.Items {
			shops[it.ShopID] = true
		}
		if len(shops) > 1 {
			t.Fatalf("cart holds items from multiple shops: %v", shops)
		}
	}

	if len(state.Items) != 2 {
		t.Fatalf("expected d and e, got %d items", len(state.Items))
	}
	if state.Items[1].Quantity != 2 {
		t.Fatalf("expected e at quantity 2, got %d", state.Items[1].Quantity)
	}
}

func TestRemoveFromCartRecomputesTotal(t *testing.T) {
	t.Parallel()

	state := Apply(State{}, AddToCart{Item: item("a", "s1", 10)})
	state = Apply(state, AddToCart{Item: item("b", "s1", 5)})
	state = Apply(state, RemoveFromCart{ItemID: "a"})

	if len(state.Items) != 1 || state.Items[0].ID != "b" {
		t.Fatalf("unexpected items after remove: %+v", state.Items)
	}
	if !state.Total.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("expected total 5, got %s", state.Total)
	}
}

func TestRemoveUnknownItemIsNoOp(t *testing.T) {
	t.Parallel()

	state := Apply(State{}, AddToCart{Item: item("a", "s1", 10)})
	next := Apply(state, RemoveFromCart{ItemID: "zz"})

	if len(next.Items) != 1 || !next.Total.Equal(state.Total) {
		t.Fatalf("removing an unknown item must not change the cart")
	}
}

func TestUpdateQuantitySetsVerbatim(t *testing.T) {
	t.Parallel()

	state := Apply(State{}, AddToCart{Item: item("a", "s1", 10)})
	state = Apply(state, UpdateQuantity{ItemID: "a", Quantity: 7})

	if state.Items[0].Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", state.Items[0].Quantity)
	}
	if !state.Total.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected total 70, got %s", state.Total)
	}
}

func TestLoadCartNormalizesOfferIDsAndTotals(t *testing.T) {
	t.Parallel()

	payload := []Item{
		{ID: "a", ShopID: "s1", UnitPrice: decimal.NewFromInt(3), Quantity: 2},
		{ID: "b", ShopID: "s1", UnitPrice: decimal.NewFromInt(4), Quantity: 1, OfferIDs: []string{"o1"}},
	}
	state := Apply(State{}, LoadCart{Items: payload})

	if state.Items[0].OfferIDs == nil {
		t.Fatalf("missing offer ids should normalize to empty set")
	}
	if !state.Total.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected total 10, got %s", state.Total)
	}
}

func TestClearItemBehavesLikeRemove(t *testing.T) {
	t.Parallel()

	state := Apply(State{}, AddToCart{Item: item("a", "s1", 10)})
	state = Apply(state, ClearItem{ItemID: "a"})

	if len(state.Items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(state.Items))
	}
	if !state.Total.IsZero() {
		t.Fatalf("expected zero total, got %s", state.Total)
	}
}

func TestTotalMatchesSumAfterEveryTransition(t *testing.T) {
	t.Parallel()

	actions := []Action{
		AddToCart{Item: item("a", "s1", 9.99)},
		AddToCart{Item: item("a", "s1", 9.99)},
		AddToCart{Item: item("b", "s1", 0.01)},
		UpdateQuantity{ItemID: "b", Quantity: 13},
		RemoveFromCart{ItemID: "a"},
		LoadCart{Items: []Item{item("x", "s9", 2.5), item("y", "s9", 1.25)}},
		UpdateQuantity{ItemID: "y", Quantity: 4},
	}

	state := State{}
	for i, action := range actions {
		state = Apply(state, action)
		expected := decimal.Zero
		for _, it := range state.Items {
			expected = expected.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
		if !state.Total.Equal(expected) {
			t.Fatalf("after action %d total %s != sum %s", i, state.Total, expected)
		}
	}
}
