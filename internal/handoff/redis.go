package handoff

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/cia-labs/nischte-app/internal/pricing"
	pkgerrors "github.com/cia-labs/nischte-app/pkg/errors"
	"github.com/cia-labs/nischte-app/pkg/redis"
)

// KeyValueStore is the slice of the redis client the mailbox needs.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	OrderSummaryKey(userID string) string
	PaymentHandoffKey(userID string) string
}

type redisMailbox struct {
	store KeyValueStore
}

// NewRedisMailbox builds the Redis-backed mailbox.
func NewRedisMailbox(store KeyValueStore) (Mailbox, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "mailbox store required")
	}
	return &redisMailbox{store: store}, nil
}

func (m *redisMailbox) PutOrderSummary(ctx context.Context, userID string, summary pricing.OrderSummary, ttl time.Duration) error {
	return m.put(ctx, m.store.OrderSummaryKey(userID), summary, ttl)
}

func (m *redisMailbox) GetOrderSummary(ctx context.Context, userID string) (*pricing.OrderSummary, error) {
	raw, err := m.get(ctx, m.store.OrderSummaryKey(userID))
	if err != nil || raw == "" {
		return nil, err
	}
	var summary pricing.OrderSummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "invalid order summary format")
	}
	return &summary, nil
}

func (m *redisMailbox) DeleteOrderSummary(ctx context.Context, userID string) error {
	return m.del(ctx, m.store.OrderSummaryKey(userID))
}

func (m *redisMailbox) PutPaymentHandoff(ctx context.Context, userID string, handoff PaymentHandoff, ttl time.Duration) error {
	return m.put(ctx, m.store.PaymentHandoffKey(userID), handoff, ttl)
}

func (m *redisMailbox) GetPaymentHandoff(ctx context.Context, userID string) (*PaymentHandoff, error) {
	raw, err := m.get(ctx, m.store.PaymentHandoffKey(userID))
	if err != nil || raw == "" {
		return nil, err
	}
	var handoff PaymentHandoff
	if err := json.Unmarshal([]byte(raw), &handoff); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "invalid payment hand-off format")
	}
	return &handoff, nil
}

func (m *redisMailbox) DeletePaymentHandoff(ctx context.Context, userID string) error {
	return m.del(ctx, m.store.PaymentHandoffKey(userID))
}

func (m *redisMailbox) put(ctx context.Context, key string, record any, ttl time.Duration) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode hand-off record")
	}
	if err := m.store.Set(ctx, key, string(payload), ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write hand-off record")
	}
	return nil
}

func (m *redisMailbox) get(ctx context.Context, key string) (string, error) {
	raw, err := m.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read hand-off record")
	}
	return raw, nil
}

func (m *redisMailbox) del(ctx context.Context, key string) error {
	if err := m.store.Del(ctx, key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete hand-off record")
	}
	return nil
}
