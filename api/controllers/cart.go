package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/cia-labs/nischte-app/api/middleware"
	"github.com/cia-labs/nischte-app/api/responses"
	"github.com/cia-labs/nischte-app/api/validators"
	cartsvc "github.com/cia-labs/nischte-app/internal/cart"
	"github.com/cia-labs/nischte-app/internal/offers"
	"github.com/cia-labs/nischte-app/internal/pricing"
	"github.com/cia-labs/nischte-app/pkg/config"
	pkgerrors "github.com/cia-labs/nischte-app/pkg/errors"
	"github.com/cia-labs/nischte-app/pkg/logger"
)

// CartGet returns the session cart with a priced quote against the currently
// eligible offers.
func CartGet(svc cartsvc.Service, resolver offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || resolver == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resolution := resolver.Resolve(r.Context(), middleware.AuthTokenFromContext(r.Context()), session.State.Items)
		quote := pricing.QuoteCart(session.State.Items, session.Selected, resolution.Offers)

		responses.WriteSuccess(w, quotedCartResponse{
			cartResponse: newCartResponse(session),
			Quote:        &quote,
			OfferWarning: resolution.Warning,
		})
	}
}

// CartLoad replaces the session cart wholesale.
func CartLoad(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload loadCartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]cartsvc.Item, len(payload.Items))
		for i, item := range payload.Items {
			items[i] = item.toItem()
		}

		session, err := svc.Load(r.Context(), userID, items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(session))
	}
}

// CartAddItem adds a single unit of an item, subject to the single-shop rule.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartItemPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Add(r.Context(), userID, payload.toItem())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(session))
	}
}

// CartUpdateQuantity sets a line's quantity. Zero and below removes the
// line; the ceiling is clamped rather than rejected.
func CartUpdateQuantity(svc cartsvc.Service, cfg config.CheckoutConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID := chi.URLParam(r, "itemID")
		if itemID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "item id required"))
			return
		}

		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var session *cartsvc.Session
		switch {
		case payload.Quantity < 1:
			session, err = svc.Remove(r.Context(), userID, itemID)
		default:
			quantity := payload.Quantity
			if ceiling := cfg.MaxQuantity; ceiling > 0 && quantity > ceiling {
				quantity = ceiling
			}
			session, err = svc.UpdateQuantity(r.Context(), userID, itemID, quantity)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(session))
	}
}

// CartRemoveItem drops a line from the cart.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID := chi.URLParam(r, "itemID")
		if itemID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "item id required"))
			return
		}

		session, err := svc.Remove(r.Context(), userID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(session))
	}
}

// CartSelectOffer sets the single cart-wide offer selection.
func CartSelectOffer(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload selectOfferRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.SelectOffer(r.Context(), userID, &cartsvc.SelectedOffer{
			ItemID:  payload.ItemID,
			OfferID: payload.OfferID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(session))
	}
}

// CartClearOffer drops the offer selection without touching the items.
func CartClearOffer(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.SelectOffer(r.Context(), userID, nil)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(session))
	}
}

func requireUserID(r *http.Request) (string, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return userID, nil
}

type cartItemPayload struct {
	ID        string          `json:"id" validate:"required"`
	ShopID    string          `json:"shopId" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	UnitPrice decimal.Decimal `json:"unitPrice" validate:"required"`
	Picture   string          `json:"picture"`
	Quantity  int             `json:"quantity" validate:"min=0"`
	OfferIDs  []string        `json:"offerIds"`
}

func (p cartItemPayload) toItem() cartsvc.Item {
	return cartsvc.Item{
		ID:        p.ID,
		ShopID:    p.ShopID,
		Name:      p.Name,
		UnitPrice: p.UnitPrice,
		Picture:   p.Picture,
		Quantity:  p.Quantity,
		OfferIDs:  p.OfferIDs,
	}
}

type loadCartRequest struct {
	Items []cartItemPayload `json:"items" validate:"dive"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type selectOfferRequest struct {
	ItemID  string `json:"itemId" validate:"required"`
	OfferID string `json:"offerId" validate:"required"`
}

type cartResponse struct {
	Items    []cartsvc.Item         `json:"items"`
	Total    decimal.Decimal        `json:"total"`
	Selected *cartsvc.SelectedOffer `json:"selectedOffer,omitempty"`
}

type quotedCartResponse struct {
	cartResponse
	Quote        *pricing.Quote `json:"quote,omitempty"`
	OfferWarning string         `json:"offerWarning,omitempty"`
}

func newCartResponse(session *cartsvc.Session) cartResponse {
	items := session.State.Items
	if items == nil {
		items = []cartsvc.Item{}
	}
	return cartResponse{
		Items:    items,
		Total:    session.State.Total,
		Selected: session.Selected,
	}
}
