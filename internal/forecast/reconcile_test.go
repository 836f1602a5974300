package forecast

import (
	"errors"
	"testing"
	"time"

	"github.com/andresuchdata/bookstock-insights/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func dates(points []domain.ForecastPoint) []string {
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = p.Date
	}
	return out
}

func TestReconcileMergesMatchingDate(t *testing.T) {
	demand := []domain.DemandRecord{{ForecastDate: "2024-01-01", PredictedDemand: f(10)}}
	sales := []domain.SalesRecord{{ForecastPeriodStart: "2024-01-01", PredictedRevenue: f(5000)}}

	points, err := Reconcile(demand, sales)

	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "2024-01-01", points[0].Date)
	assert.Equal(t, 10.0, *points[0].PredictedDemand)
	assert.Equal(t, 5000.0, *points[0].PredictedRevenue)
	assert.True(t, points[0].HasDemand())
	assert.True(t, points[0].HasSales())
}

func TestReconcileUnionOfFields(t *testing.T) {
	demand := []domain.DemandRecord{{
		BookTitle:       "Dune",
		ForecastDate:    "2024-02-01",
		PredictedDemand: f(12),
		CurrentStock:    f(4),
		ConfidenceLevel: f(85),
		CategoryCode:    "SCI",
	}}
	sales := []domain.SalesRecord{{
		CategoryName:        "Science Fiction",
		ForecastPeriodStart: "2024-02-01",
		PredictedRevenue:    f(320.5),
		PredictedOrderCount: f(9),
	}}

	points, err := Reconcile(demand, sales)
	require.NoError(t, err)
	require.Len(t, points, 1)

	p := points[0]
	assert.Equal(t, "Dune", *p.BookTitle)
	assert.Equal(t, "SCI", *p.CategoryCode)
	assert.Equal(t, 4.0, *p.CurrentStock)
	assert.Equal(t, 85.0, *p.ConfidenceLevel)
	assert.Equal(t, domain.ConfidenceHigh, p.Confidence)
	assert.Equal(t, "Science Fiction", *p.CategoryName)
	assert.Equal(t, 320.5, *p.PredictedRevenue)
	assert.Equal(t, 9.0, *p.PredictedOrderCount)
}

func TestReconcileDisjointDatesSorted(t *testing.T) {
	demand := []domain.DemandRecord{
		{ForecastDate: "2024-03-05", PredictedDemand: f(1)},
		{ForecastDate: "2024-03-01", PredictedDemand: f(2)},
	}
	sales := []domain.SalesRecord{
		{ForecastPeriodStart: "2024-03-03", PredictedRevenue: f(3)},
		{ForecastPeriodStart: "2024-02-28", PredictedRevenue: f(4)},
	}

	points, err := Reconcile(demand, sales)

	require.NoError(t, err)
	assert.Equal(t, []string{"2024-02-28", "2024-03-01", "2024-03-03", "2024-03-05"}, dates(points))
	assert.False(t, points[0].HasDemand())
	assert.Nil(t, points[0].PredictedDemand)
	assert.False(t, points[1].HasSales())
}

func TestReconcileLengthMatchesDistinctDates(t *testing.T) {
	var demand []domain.DemandRecord
	var sales []domain.SalesRecord
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 40; i++ {
		day := start.AddDate(0, 0, i).Format("2006-01-02")
		if i%2 == 0 {
			demand = append(demand, domain.DemandRecord{ForecastDate: day, PredictedDemand: f(float64(i))})
		}
		if i%3 == 0 {
			sales = append(sales, domain.SalesRecord{ForecastPeriodStart: day, PredictedRevenue: f(float64(i))})
		}
	}
	distinct := map[string]struct{}{}
	for _, d := range demand {
		distinct[d.ForecastDate] = struct{}{}
	}
	for _, s := range sales {
		distinct[s.ForecastPeriodStart] = struct{}{}
	}

	points, err := Reconcile(demand, sales)

	require.NoError(t, err)
	assert.Len(t, points, len(distinct))
	assert.LessOrEqual(t, len(points), len(demand)+len(sales))
	for i := 1; i < len(points); i++ {
		assert.Less(t, points[i-1].Date, points[i].Date)
	}
}

func TestReconcileDuplicateSalesDateLastWriteWins(t *testing.T) {
	demand := []domain.DemandRecord{{ForecastDate: "2024-01-01", PredictedDemand: f(10)}}
	sales := []domain.SalesRecord{
		{CategoryName: "Fiction", ForecastPeriodStart: "2024-01-01", PredictedRevenue: f(100), PredictedOrderCount: f(3)},
		{CategoryName: "Poetry", ForecastPeriodStart: "2024-01-01", PredictedRevenue: f(250)},
	}

	points, err := Reconcile(demand, sales)

	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 250.0, *points[0].PredictedRevenue)
	assert.Equal(t, 3.0, *points[0].PredictedOrderCount)
	assert.Equal(t, "Poetry", *points[0].CategoryName)
}

func TestReconcileDuplicateDemandDateCollapses(t *testing.T) {
	demand := []domain.DemandRecord{
		{BookTitle: "A", ForecastDate: "2024-01-01", PredictedDemand: f(1)},
		{BookTitle: "B", ForecastDate: "2024-01-01", PredictedDemand: f(2)},
	}

	points, err := Reconcile(demand, nil)

	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "B", *points[0].BookTitle)
	assert.Equal(t, 2.0, *points[0].PredictedDemand)
}

func TestReconcileExactKeyEquality(t *testing.T) {
	demand := []domain.DemandRecord{{ForecastDate: "2024-01-01", PredictedDemand: f(1)}}
	sales := []domain.SalesRecord{{ForecastPeriodStart: "2024-01-01T00:00:00Z", PredictedRevenue: f(2)}}

	points, err := Reconcile(demand, sales)

	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-01-01T00:00:00Z"}, dates(points))
}

func TestReconcileInvalidDatesTrailAndReport(t *testing.T) {
	demand := []domain.DemandRecord{
		{ForecastDate: "soon", PredictedDemand: f(1)},
		{ForecastDate: "2024-05-02", PredictedDemand: f(2)},
		{ForecastDate: "", PredictedDemand: f(3)},
	}
	sales := []domain.SalesRecord{
		{ForecastPeriodStart: "2024-05-01", PredictedRevenue: f(4)},
		{ForecastPeriodStart: "soon", PredictedRevenue: f(5)},
	}

	points, err := Reconcile(demand, sales)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidDate))
	var recErr *domain.ReconciliationError
	require.True(t, errors.As(err, &recErr))
	assert.Equal(t, []string{"soon", ""}, recErr.Dates)

	assert.Equal(t, []string{"2024-05-01", "2024-05-02", "soon", ""}, dates(points))
	assert.Equal(t, 5.0, *points[2].PredictedRevenue)
	assert.Equal(t, 1.0, *points[2].PredictedDemand)
}

func TestReconcileEmptyInputs(t *testing.T) {
	points, err := Reconcile(nil, nil)

	require.NoError(t, err)
	assert.NotNil(t, points)
	assert.Empty(t, points)
}

func TestReconcileMissingConfidenceIsUnknown(t *testing.T) {
	points, err := Reconcile([]domain.DemandRecord{{ForecastDate: "2024-01-01"}}, nil)

	require.NoError(t, err)
	assert.Equal(t, domain.ConfidenceUnknown, points[0].Confidence)
}

func TestReconcileDoesNotAliasInputs(t *testing.T) {
	demand := []domain.DemandRecord{{ForecastDate: "2024-01-01", PredictedDemand: f(10)}}

	points, err := Reconcile(demand, nil)
	require.NoError(t, err)

	*points[0].PredictedDemand = 99
	assert.Equal(t, 10.0, *demand[0].PredictedDemand)
}

func BenchmarkReconcile(b *testing.B) {
	demand := make([]domain.DemandRecord, 5000)
	sales := make([]domain.SalesRecord, 5000)
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range demand {
		demand[i] = domain.DemandRecord{ForecastDate: start.AddDate(0, 0, i).Format("2006-01-02"), PredictedDemand: f(1)}
		sales[i] = domain.SalesRecord{ForecastPeriodStart: start.AddDate(0, 0, i*2).Format("2006-01-02"), PredictedRevenue: f(1)}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Reconcile(demand, sales); err != nil {
			b.Fatal(err)
		}
	}
}
