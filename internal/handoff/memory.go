package handoff

import (
	"context"
	"sync"
	"time"

	"github.com/cia-labs/nischte-app/internal/pricing"
)

// MemoryMailbox is an in-process Mailbox used in tests and local tooling.
// TTLs are accepted and ignored.
type MemoryMailbox struct {
	mu        sync.Mutex
	summaries map[string]pricing.OrderSummary
	handoffs  map[string]PaymentHandoff
}

// NewMemoryMailbox builds an empty in-memory mailbox.
func NewMemoryMailbox() *MemoryMailbox {
	return &MemoryMailbox{
		summaries: map[string]pricing.OrderSummary{},
		handoffs:  map[string]PaymentHandoff{},
	}
}

func (m *MemoryMailbox) PutOrderSummary(_ context.Context, userID string, summary pricing.OrderSummary, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries[userID] = summary
	return nil
}

func (m *MemoryMailbox) GetOrderSummary(_ context.Context, userID string) (*pricing.OrderSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	summary, ok := m.summaries[userID]
	if !ok {
		return nil, nil
	}
	return &summary, nil
}

func (m *MemoryMailbox) DeleteOrderSummary(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.summaries, userID)
	return nil
}

func (m *MemoryMailbox) PutPaymentHandoff(_ context.Context, userID string, handoff PaymentHandoff, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handoffs[userID] = handoff
	return nil
}

func (m *MemoryMailbox) GetPaymentHandoff(_ context.Context, userID string) (*PaymentHandoff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	handoff, ok := m.handoffs[userID]
	if !ok {
		return nil, nil
	}
	return &handoff, nil
}

func (m *MemoryMailbox) DeletePaymentHandoff(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.handoffs, userID)
	return nil
}
