package cart

import "github.com/shopspring/decimal"

// Item is a single purchase line held in the session cart.
type Item struct {
	ID        string          `json:"id"`
	ShopID    string          `json:"shopId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Picture   string          `json:"picture,omitempty"`
	Quantity  int             `json:"quantity"`
	OfferIDs  []string        `json:"offerIds"`
}

// State holds the cart lines in insertion order plus the raw pre-discount
// total. All items in a non-empty cart share the same shop.
type State struct {
	Items []Item          `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// SelectedOffer pins at most one offer active across the whole cart.
type SelectedOffer struct {
	ItemID  string `json:"itemId"`
	OfferID string `json:"offerId"`
}

// Action is a discrete cart transition.
type Action interface {
	isAction()
}

// AddToCart adds one unit of the payload item. Adding an item from a
// different shop replaces the whole cart: no cross-shop combination is ever
// valid, so the switch is intentional and silent.
type AddToCart struct {
	Item Item
}

// RemoveFromCart deletes the matching line.
type RemoveFromCart struct {
	ItemID string
}

// UpdateQuantity sets the matching line's quantity verbatim. Clamping is a
// caller-level policy; the store stays total.
type UpdateQuantity struct {
	ItemID   string
	Quantity int
}

// LoadCart replaces the item sequence wholesale (session hydration).
type LoadCart struct {
	Items []Item
}

// ClearItem is remove under a different user intent: the line was cancelled.
type ClearItem struct {
	ItemID string
}

func (AddToCart) isAction()      {}
func (RemoveFromCart) isAction() {}
func (UpdateQuantity) isAction() {}
func (LoadCart) isAction()       {}
func (ClearItem) isAction()      {}

// Apply transitions the cart state. Transitions are synchronous, pure and
// total: unknown ids and unmatched actions leave the state unchanged, they
// never error.
func Apply(state State, action Action) State {
	switch act := action.(type) {
	case AddToCart:
		return applyAdd(state, act.Item)
	case RemoveFromCart:
		return applyRemove(state, act.ItemID)
	case UpdateQuantity:
		return applyUpdateQuantity(state, act.ItemID, act.Quantity)
	case LoadCart:
		return applyLoad(act.Items)
	case ClearItem:
		return applyRemove(state, act.ItemID)
	default:
		return state
	}
}

func applyAdd(state State, payload Item) State {
	existingShopID := ""
	if len(state.Items) > 0 {
		existingShopID = state.Items[0].ShopID
	}

	var items []Item
	switch {
	case existingShopID != "" && existingShopID != payload.ShopID:
		// Switching shops empties the previous cart.
		entry := payload
		entry.Quantity = 1
		entry.OfferIDs = normalizeOfferIDs(payload.OfferIDs)
		items = []Item{entry}
	default:
		idx := indexOf(state.Items, payload.ID)
		if idx >= 0 {
			items = cloneItems(state.Items)
			items[idx].Quantity++
			if len(items[idx].OfferIDs) == 0 {
				items[idx].OfferIDs = normalizeOfferIDs(payload.OfferIDs)
			}
		} else {
			entry := payload
			entry.Quantity = 1
			entry.OfferIDs = normalizeOfferIDs(payload.OfferIDs)
			items = append(cloneItems(state.Items), entry)
		}
	}

	return State{Items: items, Total: rawTotal(items)}
}

func applyRemove(state State, itemID string) State {
	items := make([]Item, 0, len(state.Items))
	for _, item := range state.Items {
		if item.ID != itemID {
			items = append(items, item)
		}
	}
	return State{Items: items, Total: rawTotal(items)}
}

func applyUpdateQuantity(state State, itemID string, quantity int) State {
	items := cloneItems(state.Items)
	for i := range items {
		if items[i].ID == itemID {
			items[i].Quantity = quantity
			items[i].OfferIDs = normalizeOfferIDs(items[i].OfferIDs)
		}
	}
	return State{Items: items, Total: rawTotal(items)}
}

func applyLoad(payload []Item) State {
	items := make([]Item, 0, len(payload))
	for _, item := range payload {
		item.OfferIDs = normalizeOfferIDs(item.OfferIDs)
		items = append(items, item)
	}
	return State{Items: items, Total: rawTotal(items)}
}

func rawTotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func indexOf(items []Item, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func cloneItems(items []Item) []Item {
	cloned := make([]Item, len(items))
	copy(cloned, items)
	return cloned
}

func normalizeOfferIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
