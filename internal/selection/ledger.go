package selection

import (
	"context"
	"sync"
	"time"

	"github.com/andresuchdata/bookstock-insights/internal/domain"
)

// Ledger owns the selection of a single UI session. Every transition is
// applied under the lock, so two back-to-back toggles of the same id always
// see each other's result.
type Ledger struct {
	mu        sync.Mutex
	selection Selection
	touchedAt time.Time
}

func NewLedger() *Ledger {
	return &Ledger{touchedAt: time.Now()}
}

func (l *Ledger) Toggle(id string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.selection = Toggle(l.selection, id)
	l.touchedAt = time.Now()
	return l.selection.IDs()
}

func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.selection = Clear(l.selection)
	l.touchedAt = time.Now()
}

func (l *Ledger) Selected() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.selection.IDs()
}

func (l *Ledger) Contains(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.selection.Contains(id)
}

// BulkApprove clears the selection and approves what it held against byID.
// The selection is taken and cleared under the lock; approve events are
// dispatched after it is released, so reads and toggles on the session are
// not blocked by slow collaborators. A toggle arriving mid-dispatch lands on
// the cleared selection.
func (l *Ledger) BulkApprove(ctx context.Context, byID map[string]domain.OrderSuggestion, approver Approver) Batch {
	l.mu.Lock()
	taken := l.selection
	l.selection = Clear(l.selection)
	l.touchedAt = time.Now()
	l.mu.Unlock()

	_, batch := BulkApprove(ctx, taken, byID, approver)
	return batch
}

func (l *Ledger) idleSince() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.touchedAt
}
