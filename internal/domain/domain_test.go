package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUrgency(t *testing.T) {
	tests := []struct {
		raw  string
		want UrgencyClass
	}{
		{"immediate", UrgencyImmediate},
		{"IMMEDIATE", UrgencyImmediate},
		{"within-week", UrgencyWithinWeek},
		{" Within Month ", UrgencyWithinMonth},
		{"", UrgencyUnknown},
		{"someday", UrgencyUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseUrgency(tt.raw), tt.raw)
	}
}

func TestOrderSuggestionDecodesPartialPayload(t *testing.T) {
	payload := `{"bookId":"b-1","bookTitle":"Dune","suggestedQuantity":12,"unitCost":"4.50","totalCost":54,"urgency":"WITHIN_WEEK"}`

	var s OrderSuggestion
	require.NoError(t, json.Unmarshal([]byte(payload), &s))

	assert.Equal(t, UrgencyWithinWeek, s.Urgency)
	assert.Equal(t, "4.5", s.UnitCost.String())
	assert.Equal(t, "54", s.TotalCost.String())
	assert.Nil(t, s.DaysUntilStockout)
	assert.Nil(t, s.ExpectedROI)
}

func TestReconciliationErrorUnwraps(t *testing.T) {
	err := error(&ReconciliationError{Kind: ErrInvalidDate, Dates: []string{"not-a-date"}})

	assert.True(t, errors.Is(err, ErrInvalidDate))
	assert.Contains(t, err.Error(), `"not-a-date"`)
}

func TestSuggestionsByIDLastWins(t *testing.T) {
	byID := SuggestionsByID([]OrderSuggestion{
		{BookID: "a", SuggestedQuantity: 1},
		{BookID: "b", SuggestedQuantity: 2},
		{BookID: "a", SuggestedQuantity: 3},
	})

	assert.Len(t, byID, 2)
	assert.Equal(t, 3, byID["a"].SuggestedQuantity)
}
