package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/cia-labs/nischte-app/internal/cart"
)

var oneHundred = decimal.NewFromInt(100)

// Offer is a server-declared promotional rule. A single offer may carry both
// a discount rate and bonus units; the effects apply independently.
type Offer struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	DiscountRate *decimal.Decimal `json:"discountRate,omitempty"`
	PlusOffers   *int             `json:"plusOffers,omitempty"`
}

// ItemPricing is the priced view of a single cart line.
type ItemPricing struct {
	Original       decimal.Decimal `json:"original"`
	Final          decimal.Decimal `json:"final"`
	Savings        decimal.Decimal `json:"savings"`
	EffectiveUnits int             `json:"effectiveUnits"`
	Applied        *Offer          `json:"appliedOffer,omitempty"`
}

// Quote aggregates per-line pricing into cart-level totals. It is always
// derived from the current cart and selection, never cached.
type Quote struct {
	Lines            []LineQuote     `json:"lines"`
	CartTotal        decimal.Decimal `json:"cartTotal"`
	TotalSavings     decimal.Decimal `json:"totalSavings"`
	TotalItems       int             `json:"totalItems"`
	OriginalQuantity int             `json:"originalQuantity"`
}

// LineQuote pairs a cart line with its pricing.
type LineQuote struct {
	Item    cart.Item   `json:"item"`
	Pricing ItemPricing `json:"pricing"`
}

// PriceItem prices one cart line against the selection and the resolved offer
// set. A missing selection, or a selection whose offer record is unknown,
// prices at face value.
func PriceItem(item cart.Item, selected *cart.SelectedOffer, offers map[string]Offer) ItemPricing {
	original := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))

	base := ItemPricing{
		Original:       original,
		Final:          original,
		Savings:        decimal.Zero,
		EffectiveUnits: item.Quantity,
	}

	if selected == nil || selected.ItemID != item.ID {
		return base
	}
	offer, ok := offers[selected.OfferID]
	if !ok {
		return base
	}

	priced := base
	priced.Applied = &offer

	if offer.DiscountRate != nil {
		rate := decimal.NewFromInt(1).Sub(offer.DiscountRate.Div(oneHundred))
		priced.Final = original.Mul(rate)
		priced.Savings = original.Sub(priced.Final)
	}
	if offer.PlusOffers != nil {
		// Bonus units are informational; they never reprice the line.
		priced.EffectiveUnits = item.Quantity + *offer.PlusOffers
	}

	return priced
}

// QuoteCart prices every line and derives the cart-level aggregates.
func QuoteCart(items []cart.Item, selected *cart.SelectedOffer, offers map[string]Offer) Quote {
	quote := Quote{
		Lines:        make([]LineQuote, 0, len(items)),
		CartTotal:    decimal.Zero,
		TotalSavings: decimal.Zero,
	}

	for _, item := range items {
		pricing := PriceItem(item, selected, offers)
		quote.Lines = append(quote.Lines, LineQuote{Item: item, Pricing: pricing})
		quote.CartTotal = quote.CartTotal.Add(pricing.Final)
		quote.TotalSavings = quote.TotalSavings.Add(pricing.Savings)
		quote.TotalItems += pricing.EffectiveUnits
		quote.OriginalQuantity += item.Quantity
	}

	return quote
}
