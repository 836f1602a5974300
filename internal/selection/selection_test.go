package selection

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/andresuchdata/bookstock-insights/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingApprover struct {
	mu      sync.Mutex
	batches []string
	ids     []string
}

func (r *recordingApprover) ApproveOrder(_ context.Context, batchID string, s domain.OrderSuggestion) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, batchID)
	r.ids = append(r.ids, s.BookID)
}

func suggestion(id string, qty int, unitCost string) domain.OrderSuggestion {
	return domain.OrderSuggestion{
		BookID:            id,
		SuggestedQuantity: qty,
		UnitCost:          decimal.RequireFromString(unitCost),
	}
}

func TestToggleAddsThenRemoves(t *testing.T) {
	s := Toggle(Selection{}, "A")
	assert.Equal(t, []string{"A"}, s.IDs())

	s = Toggle(s, "A")
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.IDs())
}

func TestToggleKeepsInsertionOrder(t *testing.T) {
	s := Toggle(Toggle(Toggle(Selection{}, "C"), "A"), "B")
	s = Toggle(s, "A")

	assert.Equal(t, []string{"C", "B"}, s.IDs())
}

func TestToggleDoesNotMutatePrevious(t *testing.T) {
	before := NewSelection("A", "B")
	after := Toggle(before, "A")

	assert.Equal(t, []string{"A", "B"}, before.IDs())
	assert.Equal(t, []string{"B"}, after.IDs())
}

func TestNewSelectionDeduplicates(t *testing.T) {
	s := NewSelection("A", "B", "A")
	assert.Equal(t, []string{"A", "B"}, s.IDs())
}

func TestClearFromAnyState(t *testing.T) {
	assert.Equal(t, 0, Clear(Selection{}).Len())
	assert.Equal(t, 0, Clear(NewSelection("A", "B")).Len())
}

func TestBulkApproveDispatchesInOrderAndClears(t *testing.T) {
	byID := map[string]domain.OrderSuggestion{
		"A": suggestion("A", 10, "2.50"),
		"B": suggestion("B", 4, "10"),
	}
	approver := &recordingApprover{}

	next, batch := BulkApprove(context.Background(), NewSelection("A", "B"), byID, approver)

	assert.Equal(t, 0, next.Len())
	assert.Equal(t, []string{"A", "B"}, approver.ids)
	require.Len(t, batch.Approved, 2)
	assert.Empty(t, batch.Skipped)
	assert.Equal(t, 14, batch.TotalQuantity)
	assert.True(t, decimal.RequireFromString("65").Equal(batch.TotalCost), batch.TotalCost.String())

	_, err := uuid.Parse(batch.ID)
	require.NoError(t, err)
	for _, id := range approver.batches {
		assert.Equal(t, batch.ID, id)
	}
}

func TestBulkApprovePrefersSuggestionTotalCost(t *testing.T) {
	s := suggestion("A", 3, "1")
	s.TotalCost = decimal.RequireFromString("7.25")

	_, batch := BulkApprove(context.Background(), NewSelection("A"), map[string]domain.OrderSuggestion{"A": s}, &recordingApprover{})

	assert.Equal(t, "7.25", batch.TotalCost.String())
}

func TestBulkApproveSkipsMissingIDs(t *testing.T) {
	byID := map[string]domain.OrderSuggestion{"B": suggestion("B", 1, "1")}
	approver := &recordingApprover{}

	next, batch := BulkApprove(context.Background(), NewSelection("A", "B", "C"), byID, approver)

	assert.Equal(t, 0, next.Len())
	assert.Equal(t, []string{"B"}, approver.ids)
	assert.Equal(t, []string{"A", "C"}, batch.Skipped)
	require.Len(t, batch.Warnings, 2)
	assert.Contains(t, batch.Warnings[0], domain.ErrMissingReferenceOnApprove.Error())
	assert.Contains(t, batch.Warnings[0], `"A"`)
}

func TestBulkApproveEmptySelection(t *testing.T) {
	approver := &recordingApprover{}

	next, batch := BulkApprove(context.Background(), Selection{}, nil, approver)

	assert.Equal(t, 0, next.Len())
	assert.Empty(t, approver.ids)
	assert.Empty(t, batch.Approved)
	assert.True(t, batch.TotalCost.IsZero())
}

func TestLedgerSequentialToggles(t *testing.T) {
	l := NewLedger()

	assert.Equal(t, []string{"A"}, l.Toggle("A"))
	assert.Empty(t, l.Toggle("A"))
	assert.False(t, l.Contains("A"))
}

func TestLedgerConcurrentTogglesAreSerialized(t *testing.T) {
	l := NewLedger()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			l.Toggle(fmt.Sprintf("id-%d", n%10))
		}(i)
	}
	wg.Wait()

	// every id was toggled an even number of times
	assert.Empty(t, l.Selected())
}

func TestLedgerBulkApproveClearsSelection(t *testing.T) {
	l := NewLedger()
	l.Toggle("A")
	l.Toggle("B")
	approver := &recordingApprover{}

	batch := l.BulkApprove(context.Background(), map[string]domain.OrderSuggestion{
		"A": suggestion("A", 1, "1"),
		"B": suggestion("B", 2, "1"),
	}, approver)

	assert.Len(t, batch.Approved, 2)
	assert.Equal(t, []string{"A", "B"}, approver.ids)
	assert.Empty(t, l.Selected())
}

func TestLedgerBulkApproveDoesNotBlockSessionDuringDispatch(t *testing.T) {
	l := NewLedger()
	l.Toggle("A")

	var seen []string
	approver := ApproverFunc(func(ctx context.Context, batchID string, s domain.OrderSuggestion) {
		// a slow collaborator; the session must stay usable meanwhile
		seen = l.Selected()
		l.Toggle("late")
	})

	done := make(chan Batch, 1)
	go func() {
		done <- l.BulkApprove(context.Background(), map[string]domain.OrderSuggestion{
			"A": suggestion("A", 1, "1"),
		}, approver)
	}()

	select {
	case batch := <-done:
		assert.Len(t, batch.Approved, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("session lock held while dispatching approvals")
	}
	assert.Empty(t, seen)
	assert.Equal(t, []string{"late"}, l.Selected())
}

func TestLedgerClear(t *testing.T) {
	l := NewLedger()
	l.Toggle("A")
	l.Clear()
	assert.Empty(t, l.Selected())
}

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry()

	id, ledger := r.Open()
	ledger.Toggle("A")

	got, err := r.Get(id)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, got.Selected())

	assert.True(t, r.Close(id))
	assert.False(t, r.Close(id))

	_, err = r.Get(id)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRegistrySessionsAreIsolated(t *testing.T) {
	r := NewRegistry()
	_, a := r.Open()
	_, b := r.Open()

	a.Toggle("X")

	assert.Equal(t, []string{"X"}, a.Selected())
	assert.Empty(t, b.Selected())
	assert.Equal(t, 2, r.Len())
}

func TestRegistryPrune(t *testing.T) {
	r := NewRegistry()
	r.Open()
	r.Open()

	assert.Equal(t, 0, r.Prune(time.Now(), time.Hour))
	assert.Equal(t, 2, r.Prune(time.Now().Add(2*time.Hour), time.Hour))
	assert.Equal(t, 0, r.Len())
}
