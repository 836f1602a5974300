package selection

import (
	"sync"
	"time"

	"github.com/andresuchdata/bookstock-insights/internal/domain"
	"github.com/google/uuid"
)

// Registry maps UI session ids to their ledgers.
type Registry struct {
	mu      sync.RWMutex
	ledgers map[string]*Ledger
}

func NewRegistry() *Registry {
	return &Registry{ledgers: make(map[string]*Ledger)}
}

// Open starts a new session with an empty selection.
func (r *Registry) Open() (string, *Ledger) {
	id := uuid.NewString()
	ledger := NewLedger()

	r.mu.Lock()
	r.ledgers[id] = ledger
	r.mu.Unlock()

	return id, ledger
}

func (r *Registry) Get(sessionID string) (*Ledger, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ledger, ok := r.ledgers[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return ledger, nil
}

func (r *Registry) Close(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.ledgers[sessionID]
	delete(r.ledgers, sessionID)
	return ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.ledgers)
}

// Prune closes every session untouched for longer than maxIdle and returns
// how many were closed.
func (r *Registry) Prune(now time.Time, maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	closed := 0
	for id, ledger := range r.ledgers {
		if now.Sub(ledger.idleSince()) > maxIdle {
			delete(r.ledgers, id)
			closed++
		}
	}
	return closed
}
