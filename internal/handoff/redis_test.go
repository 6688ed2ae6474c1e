package handoff

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cia-labs/nischte-app/internal/pricing"
	pkgerrors "github.com/cia-labs/nischte-app/pkg/errors"
	"github.com/cia-labs/nischte-app/pkg/redis"
)

func newTestMailbox(t *testing.T) (Mailbox, *stubKV) {
	t.Helper()
	kv := newStubKV()
	mailbox, err := NewRedisMailbox(kv)
	if err != nil {
		t.Fatalf("NewRedisMailbox: %v", err)
	}
	return mailbox, kv
}

func TestOrderSummaryRoundTrip(t *testing.T) {
	t.Parallel()

	mailbox, _ := newTestMailbox(t)
	ctx := context.Background()

	summary := pricing.OrderSummary{
		CartTotal:        decimal.NewFromInt(10),
		TotalItems:       1,
		OriginalQuantity: 1,
		UserID:           "user-1",
	}
	if err := mailbox.PutOrderSummary(ctx, "user-1", summary, 15*time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := mailbox.GetOrderSummary(ctx, "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || !got.CartTotal.Equal(decimal.NewFromInt(10)) || got.UserID != "user-1" {
		t.Fatalf("unexpected round trip: %+v", got)
	}

	if err := mailbox.DeleteOrderSummary(ctx, "user-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err = mailbox.GetOrderSummary(ctx, "user-1")
	if err != nil || got != nil {
		t.Fatalf("expected empty slot after delete, got %+v err=%v", got, err)
	}
}

func TestPaymentHandoffRoundTrip(t *testing.T) {
	t.Parallel()

	mailbox, _ := newTestMailbox(t)
	ctx := context.Background()

	record := PaymentHandoff{
		TransactionID: "txn-1",
		PaymentData:   []byte(`{"opaque":"blob"}`),
		Timestamp:     time.Now().UnixMilli(),
	}
	if err := mailbox.PutPaymentHandoff(ctx, "user-1", record, 15*time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := mailbox.GetPaymentHandoff(ctx, "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.TransactionID != "txn-1" {
		t.Fatalf("unexpected round trip: %+v", got)
	}
	if got.CreatedAt().UnixMilli() != record.Timestamp {
		t.Fatalf("CreatedAt should reflect stored timestamp")
	}
}

func TestEmptySlotReturnsNilNil(t *testing.T) {
	t.Parallel()

	mailbox, _ := newTestMailbox(t)

	summary, err := mailbox.GetOrderSummary(context.Background(), "nobody")
	if err != nil || summary != nil {
		t.Fatalf("expected nil,nil for empty slot, got %+v err=%v", summary, err)
	}
}

func TestMalformedRecordIsStateConflict(t *testing.T) {
	t.Parallel()

	mailbox, kv := newTestMailbox(t)
	kv.data[kv.OrderSummaryKey("user-1")] = "{broken"

	_, err := mailbox.GetOrderSummary(context.Background(), "user-1")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for malformed record, got %v", err)
	}
}

func TestPutOverwritesPriorCheckout(t *testing.T) {
	t.Parallel()

	mailbox, _ := newTestMailbox(t)
	ctx := context.Background()

	first := PaymentHandoff{TransactionID: "txn-1", Timestamp: 1}
	second := PaymentHandoff{TransactionID: "txn-2", Timestamp: 2}
	_ = mailbox.PutPaymentHandoff(ctx, "user-1", first, time.Minute)
	_ = mailbox.PutPaymentHandoff(ctx, "user-1", second, time.Minute)

	got, err := mailbox.GetPaymentHandoff(ctx, "user-1")
	if err != nil || got == nil || got.TransactionID != "txn-2" {
		t.Fatalf("second checkout must overwrite the first, got %+v", got)
	}
}

type stubKV struct {
	data map[string]string
}

func newStubKV() *stubKV {
	return &stubKV{data: map[string]string{}}
}

func (s *stubKV) Get(ctx context.Context, key string) (string, error) {
	v, ok := s.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (s *stubKV) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	s.data[key] = value.(string)
	return nil
}

func (s *stubKV) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

func (s *stubKV) OrderSummaryKey(userID string) string {
	return "test:handoff:summary:" + userID
}

func (s *stubKV) PaymentHandoffKey(userID string) string {
	return "test:handoff:payment:" + userID
}
