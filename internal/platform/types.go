package platform

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// EligibleOffer is one entry of the eligibility response.
type EligibleOffer struct {
	OfferID string `json:"offerId"`
}

// OfferRecord mirrors the platform's offer-details payload.
type OfferRecord struct {
	ID        string `json:"_id"`
	OfferType struct {
		Name string `json:"name"`
	} `json:"offerType"`
	OfferDescription struct {
		DiscountRate *decimal.Decimal `json:"discountRate,omitempty"`
		PlusOffers   *int             `json:"plusOffers,omitempty"`
		Description  string           `json:"description"`
	} `json:"offerDescription"`
}

// PaymentSession is returned by payment initiation. Data is the gateway's
// opaque session payload and is carried through the hand-off untouched.
type PaymentSession struct {
	MerchantTransactionID string          `json:"merchantTransactionId"`
	Data                  json.RawMessage `json:"data"`
	RedirectURL           string          `json:"redirectUrl"`
}

// CreatedOrder is the slice of the order-creation response the storefront
// consumes.
type CreatedOrder struct {
	UserID string             `json:"userId"`
	Items  []CreatedOrderItem `json:"items"`
}

// CreatedOrderItem is the per-line slice of a created order.
type CreatedOrderItem struct {
	ShopID string `json:"shopId"`
}

// Shop is the owner lookup view of a shop.
type Shop struct {
	OwnerID string `json:"ownerId"`
}

type eligibleResponse struct {
	Success          bool            `json:"success"`
	ApplicableOffers []EligibleOffer `json:"applicableOffers"`
}

type offerDetailsResponse struct {
	Offers []OfferRecord `json:"offers"`
}

type initiateRequest struct {
	Amount    json.Number `json:"amount"`
	Timestamp int64       `json:"timestamp"`
}

type initiateResponse struct {
	Success               bool            `json:"success"`
	MerchantTransactionID string          `json:"merchantTransactionId"`
	Data                  json.RawMessage `json:"data"`
	RedirectURL           string          `json:"redirectUrl"`
	Message               string          `json:"message,omitempty"`
}

type validateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type createOrderResponse struct {
	Success bool          `json:"success"`
	Order   *CreatedOrder `json:"order,omitempty"`
	Message string        `json:"message,omitempty"`
}

type shopResponse struct {
	Success bool  `json:"success"`
	Shop    *Shop `json:"shop,omitempty"`
}

type fcmTokenResponse struct {
	Success  bool   `json:"success"`
	FCMToken string `json:"fcmToken"`
}

type notificationRequest struct {
	FCMToken string `json:"fcmToken"`
	Title    string `json:"title"`
	Body     string `json:"body"`
}
