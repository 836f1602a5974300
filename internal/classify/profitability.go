package classify

import (
	"fmt"
	"math"

	"github.com/andresuchdata/bookstock-insights/internal/domain"
)

var bandColors = map[domain.ProfitabilityBand]string{
	domain.BandExcellent: "#15803d",
	domain.BandGood:      "#4ade80",
	domain.BandAverage:   "#facc15",
	domain.BandPoor:      "#fb923c",
	domain.BandVeryPoor:  "#dc2626",
}

// Band maps a normalized [0,1] margin onto its profitability band.
// Values outside the range are clamped.
func Band(normalized float64) domain.ProfitabilityBand {
	switch {
	case math.IsNaN(normalized) || normalized < 0.2:
		return domain.BandVeryPoor
	case normalized < 0.4:
		return domain.BandPoor
	case normalized < 0.6:
		return domain.BandAverage
	case normalized < 0.8:
		return domain.BandGood
	default:
		return domain.BandExcellent
	}
}

func BandColor(b domain.ProfitabilityBand) string {
	return bandColors[b]
}

// Profitability normalizes every item's margin against the min/max of the set
// and assigns a band. It runs in two linear passes.
//
// When every finite margin is equal (including a single item) the range is
// degenerate: each item is normalized to 1.0 and lands in BandExcellent, and
// the heatmap is flagged Degenerate. Non-finite margins are left out of the
// range and classified as very poor with a normalized value of 0.
func Profitability(items []domain.ProfitabilityItem) domain.ProfitabilityHeatmap {
	heatmap := domain.ProfitabilityHeatmap{
		Cells:    make([]domain.ProfitabilityCell, 0, len(items)),
		Warnings: make([]string, 0),
	}

	minMargin, maxMargin := math.Inf(1), math.Inf(-1)
	finite := 0
	for _, item := range items {
		m := item.ProfitMargin
		if math.IsNaN(m) || math.IsInf(m, 0) {
			continue
		}
		finite++
		minMargin = math.Min(minMargin, m)
		maxMargin = math.Max(maxMargin, m)
	}

	if finite == 0 {
		minMargin, maxMargin = 0, 0
	}
	heatmap.Min, heatmap.Max = minMargin, maxMargin
	heatmap.Degenerate = finite > 0 && maxMargin == minMargin
	if heatmap.Degenerate {
		heatmap.Warnings = append(heatmap.Warnings,
			fmt.Errorf("%w: every margin is %g", domain.ErrDegenerateRange, minMargin).Error())
	}
	spread := maxMargin - minMargin

	for _, item := range items {
		m := item.ProfitMargin
		var normalized float64
		switch {
		case math.IsNaN(m) || math.IsInf(m, 0):
			normalized = 0
		case heatmap.Degenerate:
			normalized = 1
		default:
			normalized = (m - minMargin) / spread
		}
		band := Band(normalized)
		heatmap.Cells = append(heatmap.Cells, domain.ProfitabilityCell{
			Item:       item,
			Normalized: normalized,
			Band:       band,
			Color:      BandColor(band),
		})
	}

	return heatmap
}
