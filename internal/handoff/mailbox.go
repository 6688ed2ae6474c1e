package handoff

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cia-labs/nischte-app/internal/pricing"
)

// PaymentHandoff bridges the outbound payment-session request and the
// inbound gateway-redirect reconciliation. PaymentData is the gateway's
// opaque session payload. Timestamp is unix milliseconds at creation.
type PaymentHandoff struct {
	TransactionID string          `json:"transactionId"`
	PaymentData   json.RawMessage `json:"paymentData"`
	Timestamp     int64           `json:"timestamp"`
}

// CreatedAt returns the hand-off creation time.
func (h PaymentHandoff) CreatedAt() time.Time {
	return time.UnixMilli(h.Timestamp)
}

// Mailbox is the two-slot durable store bridging checkout and
// reconciliation. Checkout writes both slots; reconciliation consumes and
// deletes them. At most one checkout is in flight per user: writes overwrite.
//
// Get methods return (nil, nil) when the slot is empty.
type Mailbox interface {
	PutOrderSummary(ctx context.Context, userID string, summary pricing.OrderSummary, ttl time.Duration) error
	GetOrderSummary(ctx context.Context, userID string) (*pricing.OrderSummary, error)
	DeleteOrderSummary(ctx context.Context, userID string) error

	PutPaymentHandoff(ctx context.Context, userID string, handoff PaymentHandoff, ttl time.Duration) error
	GetPaymentHandoff(ctx context.Context, userID string) (*PaymentHandoff, error)
	DeletePaymentHandoff(ctx context.Context, userID string) error
}
