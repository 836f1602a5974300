package classify

import (
	"sort"

	"github.com/andresuchdata/bookstock-insights/internal/domain"
)

var urgencyPresentations = map[domain.UrgencyClass]domain.Presentation{
	domain.UrgencyImmediate:   {Icon: "alert-triangle", Color: "#dc2626", Level: "error", SortWeight: 0},
	domain.UrgencyWithinWeek:  {Icon: "clock", Color: "#f59e0b", Level: "warning", SortWeight: 1},
	domain.UrgencyWithinMonth: {Icon: "calendar", Color: "#2563eb", Level: "info", SortWeight: 2},
}

var neutralUrgency = domain.Presentation{Icon: "info", Color: "#6b7280", Level: "info", SortWeight: 3}

// Urgency returns the display encoding for an urgency class. Unknown and
// unrecognised values get the neutral info-level presentation.
func Urgency(u domain.UrgencyClass) domain.Presentation {
	if p, ok := urgencyPresentations[u]; ok {
		return p
	}
	return neutralUrgency
}

// SortByUrgency orders suggestions most urgent first, keeping the backend order
// within the same urgency.
func SortByUrgency(suggestions []domain.OrderSuggestion) {
	sort.SliceStable(suggestions, func(i, j int) bool {
		return Urgency(suggestions[i].Urgency).SortWeight < Urgency(suggestions[j].Urgency).SortWeight
	})
}
