package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/cia-labs/nischte-app/internal/cart"
)

// OrderSummary is the immutable priced snapshot handed to checkout. Once
// built and persisted it is never recomputed; later cart mutations must not
// change it. Field names follow the platform's order-creation contract.
type OrderSummary struct {
	Items            []SummaryItem   `json:"items"`
	CartTotal        decimal.Decimal `json:"cartTotal"`
	TotalSavings     decimal.Decimal `json:"totalSavings"`
	TotalItems       int             `json:"totalItems"`
	OriginalQuantity int             `json:"originalQuantity"`
	UserID           string          `json:"userId"`
}

// SummaryItem is one priced line in the snapshot.
type SummaryItem struct {
	ItemID        string          `json:"itemId"`
	ItemName      string          `json:"itemName"`
	ShopID        string          `json:"shopId"`
	Quantity      int             `json:"quantity"`
	BasePrice     decimal.Decimal `json:"basePrice"`
	TotalItems    int             `json:"totalItems"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	FinalPrice    decimal.Decimal `json:"finalPrice"`
	Savings       decimal.Decimal `json:"savings"`
	AppliedOffer  *AppliedOffer   `json:"appliedOffer"`
}

// AppliedOffer records the offer that shaped a line's price.
type AppliedOffer struct {
	OfferID      string           `json:"offerId"`
	OfferName    string           `json:"offerName"`
	Description  string           `json:"description"`
	DiscountRate *decimal.Decimal `json:"discountRate,omitempty"`
	PlusOffer    *int             `json:"plusOffer,omitempty"`
}

// BuildOrderSummary projects the quote into the checkout hand-off artifact.
func BuildOrderSummary(items []cart.Item, selected *cart.SelectedOffer, offers map[string]Offer, userID string) OrderSummary {
	quote := QuoteCart(items, selected, offers)

	summary := OrderSummary{
		Items:            make([]SummaryItem, 0, len(quote.Lines)),
		CartTotal:        quote.CartTotal,
		TotalSavings:     quote.TotalSavings,
		TotalItems:       quote.TotalItems,
		OriginalQuantity: quote.OriginalQuantity,
		UserID:           userID,
	}

	for _, line := range quote.Lines {
		entry := SummaryItem{
			ItemID:        line.Item.ID,
			ItemName:      line.Item.Name,
			ShopID:        line.Item.ShopID,
			Quantity:      line.Item.Quantity,
			BasePrice:     line.Item.UnitPrice,
			TotalItems:    line.Pricing.EffectiveUnits,
			OriginalPrice: line.Pricing.Original,
			FinalPrice:    line.Pricing.Final,
			Savings:       line.Pricing.Savings,
		}
		if applied := line.Pricing.Applied; applied != nil {
			entry.AppliedOffer = &AppliedOffer{
				OfferID:      applied.ID,
				OfferName:    applied.Name,
				Description:  applied.Description,
				DiscountRate: applied.DiscountRate,
				PlusOffer:    applied.PlusOffers,
			}
		}
		summary.Items = append(summary.Items, entry)
	}

	return summary
}
