package reconcile

import "sync"

type latchState int32

const (
	latchNotStarted latchState = iota
	latchInProgress
	latchCompleted
)

// Latch tracks per-transaction reconciliation progress inside one process.
// It guards against concurrent callbacks for the same transaction hitting a
// single instance; the cross-instance guard lives in redis.
type Latch struct {
	mu     sync.Mutex
	states map[string]latchState
}

// NewLatch builds an empty latch registry.
func NewLatch() *Latch {
	return &Latch{states: map[string]latchState{}}
}

// Begin moves a transaction to in-progress. It returns false when the
// transaction is already in flight or finished.
func (l *Latch) Begin(transactionID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.states[transactionID] != latchNotStarted {
		return false
	}
	l.states[transactionID] = latchInProgress
	return true
}

// Complete marks a transaction terminal. Later Begin calls for the same
// transaction keep failing.
func (l *Latch) Complete(transactionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states[transactionID] = latchCompleted
}

// Forget drops a transaction from the registry. Used once the durable state
// around a transaction is gone and replays are caught upstream.
func (l *Latch) Forget(transactionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.states, transactionID)
}
