// Package forecast merges the demand and sales forecast streams into a single
// date-aligned timeline.
package forecast

import (
	"sort"
	"strings"
	"time"

	"github.com/andresuchdata/bookstock-insights/internal/classify"
	"github.com/andresuchdata/bookstock-insights/internal/domain"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

// ParseDate parses a forecast date key. Keys are compared verbatim for
// merging; parsing is only used for ordering.
func ParseDate(key string) (time.Time, bool) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type entry struct {
	point  *domain.ForecastPoint
	at     time.Time
	valid  bool
	seenAt int
}

// Reconcile joins demand and sales records on their exact date key and returns
// one point per distinct key, ascending by date.
//
// Demand records sharing a key collapse into one point (later values win).
// A sales record whose ForecastPeriodStart matches an existing key has its
// revenue, order count and category written onto that point, again last write
// wins; otherwise it starts a sales-only point.
//
// Keys that do not parse as dates are kept, appended after every ordered point
// in first-seen order, and reported through a *domain.ReconciliationError.
// The returned points are always usable, even when err is non-nil.
func Reconcile(demand []domain.DemandRecord, sales []domain.SalesRecord) ([]domain.ForecastPoint, error) {
	byDate := make(map[string]*entry, len(demand)+len(sales))
	order := make([]*entry, 0, len(demand)+len(sales))

	lookup := func(key string) *entry {
		if e, ok := byDate[key]; ok {
			return e
		}
		at, valid := ParseDate(key)
		e := &entry{
			point:  &domain.ForecastPoint{Date: key},
			at:     at,
			valid:  valid,
			seenAt: len(order),
		}
		byDate[key] = e
		order = append(order, e)
		return e
	}

	for _, d := range demand {
		p := lookup(d.ForecastDate).point
		if d.PredictedDemand != nil {
			p.PredictedDemand = floatPtr(*d.PredictedDemand)
		}
		if d.CurrentStock != nil {
			p.CurrentStock = floatPtr(*d.CurrentStock)
		}
		if d.ConfidenceLevel != nil {
			p.ConfidenceLevel = floatPtr(*d.ConfidenceLevel)
		}
		if d.BookTitle != "" {
			p.BookTitle = stringPtr(d.BookTitle)
		}
		if d.CategoryCode != "" {
			p.CategoryCode = stringPtr(d.CategoryCode)
		}
	}

	for _, s := range sales {
		p := lookup(s.ForecastPeriodStart).point
		if s.PredictedRevenue != nil {
			p.PredictedRevenue = floatPtr(*s.PredictedRevenue)
		}
		if s.PredictedOrderCount != nil {
			p.PredictedOrderCount = floatPtr(*s.PredictedOrderCount)
		}
		if s.CategoryName != "" {
			p.CategoryName = stringPtr(s.CategoryName)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		switch {
		case a.valid && b.valid:
			if !a.at.Equal(b.at) {
				return a.at.Before(b.at)
			}
			return a.point.Date < b.point.Date
		case a.valid != b.valid:
			return a.valid
		default:
			return a.seenAt < b.seenAt
		}
	})

	points := make([]domain.ForecastPoint, 0, len(order))
	var invalid []string
	for _, e := range order {
		e.point.Confidence = classify.Confidence(e.point.ConfidenceLevel)
		points = append(points, *e.point)
		if !e.valid {
			invalid = append(invalid, e.point.Date)
		}
	}

	if len(invalid) > 0 {
		return points, &domain.ReconciliationError{Kind: domain.ErrInvalidDate, Dates: invalid}
	}
	return points, nil
}

func stringPtr(s string) *string {
	return &s
}

func floatPtr(v float64) *float64 {
	return &v
}
