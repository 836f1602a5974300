package forecast

import (
	"time"

	"github.com/andresuchdata/bookstock-insights/internal/domain"
)

// Window keeps the points whose date falls within [from, to]. A zero bound is
// open. A to bound at midnight covers that whole calendar day, so a date-only
// upper bound keeps timestamped points from later the same day. Points with an
// unparseable date are kept so that no data silently disappears from the chart.
func Window(points []domain.ForecastPoint, from, to time.Time) []domain.ForecastPoint {
	end := upperBound(to)
	out := make([]domain.ForecastPoint, 0, len(points))
	for _, p := range points {
		at, ok := ParseDate(p.Date)
		if !ok {
			out = append(out, p)
			continue
		}
		if !from.IsZero() && at.Before(from) {
			continue
		}
		if !end.IsZero() && !at.Before(end) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// upperBound returns the exclusive end of the window.
func upperBound(to time.Time) time.Time {
	if to.IsZero() {
		return to
	}
	if h, m, sec := to.Clock(); h == 0 && m == 0 && sec == 0 && to.Nanosecond() == 0 {
		return to.AddDate(0, 0, 1)
	}
	return to.Add(time.Nanosecond)
}

// Summarize totals a reconciled timeline for the chart legend.
func Summarize(points []domain.ForecastPoint) domain.TimelineSummary {
	summary := domain.TimelineSummary{
		Points: len(points),
		ConfidenceCounts: map[domain.ConfidenceClass]int{
			domain.ConfidenceHigh:    0,
			domain.ConfidenceMedium:  0,
			domain.ConfidenceLow:     0,
			domain.ConfidenceUnknown: 0,
		},
	}

	for _, p := range points {
		if p.PredictedDemand != nil {
			summary.TotalDemand += *p.PredictedDemand
		}
		if p.PredictedRevenue != nil {
			summary.TotalRevenue += *p.PredictedRevenue
		}
		if p.PredictedOrderCount != nil {
			summary.TotalOrderCount += *p.PredictedOrderCount
		}
		class := p.Confidence
		if class == "" {
			class = domain.ConfidenceUnknown
		}
		summary.ConfidenceCounts[class]++

		if _, ok := ParseDate(p.Date); !ok {
			summary.UnorderedDateCount++
			continue
		}
		if summary.FirstDate == "" {
			summary.FirstDate = p.Date
		}
		summary.LastDate = p.Date
	}

	return summary
}
