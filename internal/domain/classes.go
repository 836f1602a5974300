package domain

import "strings"

type ConfidenceClass string

const (
	ConfidenceHigh    ConfidenceClass = "high"
	ConfidenceMedium  ConfidenceClass = "medium"
	ConfidenceLow     ConfidenceClass = "low"
	ConfidenceUnknown ConfidenceClass = "unknown"
)

type UrgencyClass string

const (
	UrgencyImmediate   UrgencyClass = "immediate"
	UrgencyWithinWeek  UrgencyClass = "within_week"
	UrgencyWithinMonth UrgencyClass = "within_month"
	UrgencyUnknown     UrgencyClass = "unknown"
)

// ParseUrgency normalizes backend urgency labels ("IMMEDIATE", "within-week", " Within Month ").
// Anything unrecognised becomes UrgencyUnknown.
func ParseUrgency(raw string) UrgencyClass {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	switch UrgencyClass(normalized) {
	case UrgencyImmediate, UrgencyWithinWeek, UrgencyWithinMonth:
		return UrgencyClass(normalized)
	default:
		return UrgencyUnknown
	}
}

func (u *UrgencyClass) UnmarshalText(text []byte) error {
	*u = ParseUrgency(string(text))
	return nil
}

type ProfitabilityBand string

const (
	BandExcellent ProfitabilityBand = "excellent"
	BandGood      ProfitabilityBand = "good"
	BandAverage   ProfitabilityBand = "average"
	BandPoor      ProfitabilityBand = "poor"
	BandVeryPoor  ProfitabilityBand = "very_poor"
)

// Presentation is the display encoding the dashboard applies to a class.
type Presentation struct {
	Icon       string `json:"icon"`
	Color      string `json:"color"`
	Level      string `json:"level"`
	SortWeight int    `json:"sort_weight"`
}

// ProfitabilityCell is one classified heatmap entry.
type ProfitabilityCell struct {
	Item       ProfitabilityItem `json:"item"`
	Normalized float64           `json:"normalized"`
	Band       ProfitabilityBand `json:"band"`
	Color      string            `json:"color"`
}

// ProfitabilityHeatmap is the output of one classification pass over a data set.
type ProfitabilityHeatmap struct {
	Cells      []ProfitabilityCell `json:"cells"`
	Min        float64             `json:"min"`
	Max        float64             `json:"max"`
	Degenerate bool                `json:"degenerate"`
	Warnings   []string            `json:"warnings"`
}
