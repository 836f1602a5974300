// Package classify maps continuous forecast inputs onto the small, stable set of
// display buckets the dashboard colors, icons and sorts by.
package classify

import (
	"math"

	"github.com/andresuchdata/bookstock-insights/internal/domain"
)

const (
	highConfidenceThreshold   = 80.0
	mediumConfidenceThreshold = 60.0
)

var confidencePresentations = map[domain.ConfidenceClass]domain.Presentation{
	domain.ConfidenceHigh:    {Icon: "check-circle", Color: "#16a34a", Level: "success", SortWeight: 0},
	domain.ConfidenceMedium:  {Icon: "alert-circle", Color: "#f59e0b", Level: "warning", SortWeight: 1},
	domain.ConfidenceLow:     {Icon: "x-circle", Color: "#dc2626", Level: "error", SortWeight: 2},
	domain.ConfidenceUnknown: {Icon: "help-circle", Color: "#6b7280", Level: "default", SortWeight: 3},
}

// Confidence buckets a 0-100 confidence percentage. A missing or NaN value
// maps to ConfidenceUnknown.
func Confidence(pct *float64) domain.ConfidenceClass {
	if pct == nil || math.IsNaN(*pct) {
		return domain.ConfidenceUnknown
	}
	switch v := *pct; {
	case v >= highConfidenceThreshold:
		return domain.ConfidenceHigh
	case v >= mediumConfidenceThreshold:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

func ConfidencePresentation(c domain.ConfidenceClass) domain.Presentation {
	if p, ok := confidencePresentations[c]; ok {
		return p
	}
	return confidencePresentations[domain.ConfidenceUnknown]
}
