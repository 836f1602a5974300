// internal/domain/payloads.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DemandRecord is one row of the demand forecast stream produced by the analytics backend.
// Every numeric field is optional: the backend omits values it could not compute.
type DemandRecord struct {
	BookTitle       string   `json:"bookTitle"`
	ForecastDate    string   `json:"forecastDate"`
	PredictedDemand *float64 `json:"predictedDemand,omitempty"`
	CurrentStock    *float64 `json:"currentStock,omitempty"`
	DemandTrend     string   `json:"demandTrend,omitempty"`
	ConfidenceLevel *float64 `json:"confidenceLevel,omitempty"`
	CategoryCode    string   `json:"categoryCode,omitempty"`
}

// SalesRecord is one row of the sales forecast stream, keyed by the start of its period.
type SalesRecord struct {
	CategoryName        string   `json:"categoryName"`
	ForecastPeriodStart string   `json:"forecastPeriodStart"`
	PredictedRevenue    *float64 `json:"predictedRevenue,omitempty"`
	PredictedOrderCount *float64 `json:"predictedOrderCount,omitempty"`
}

// PredictionData bundles both forecast streams as returned by the predictions endpoint.
type PredictionData struct {
	DemandPredictions []DemandRecord `json:"demandPredictions"`
	SalesPredictions  []SalesRecord  `json:"salesPredictions"`
}

type ProfitabilityItem struct {
	ItemName     string  `json:"itemName"`
	Revenue      float64 `json:"revenue"`
	Profit       float64 `json:"profit"`
	ProfitMargin float64 `json:"profitMargin"`
	ROI          float64 `json:"roi"`
}

// OrderSuggestion is a recommended reorder action for a single book.
type OrderSuggestion struct {
	BookID            string          `json:"bookId"`
	BookTitle         string          `json:"bookTitle"`
	ISBN13            string          `json:"isbn13"`
	CurrentStock      int             `json:"currentStock"`
	SuggestedQuantity int             `json:"suggestedQuantity"`
	UnitCost          decimal.Decimal `json:"unitCost"`
	TotalCost         decimal.Decimal `json:"totalCost"`
	Reason            string          `json:"reason"`
	Urgency           UrgencyClass    `json:"urgency"`
	DaysUntilStockout *int            `json:"daysUntilStockout,omitempty"`
	ExpectedROI       *float64        `json:"expectedRoi,omitempty"`
}

// DashboardMetrics is the summary card payload. It is passed through untouched.
type DashboardMetrics struct {
	TotalBooks          int             `json:"totalBooks"`
	TotalCategories     int             `json:"totalCategories"`
	LowStockCount       int             `json:"lowStockCount"`
	OutOfStockCount     int             `json:"outOfStockCount"`
	PendingSuggestions  int             `json:"pendingSuggestions"`
	TotalInventoryValue decimal.Decimal `json:"totalInventoryValue"`
	MonthlyRevenue      decimal.Decimal `json:"monthlyRevenue"`
	LastUpdated         string          `json:"lastUpdated,omitempty"`
}

// Snapshot is one complete refresh of every upstream payload.
type Snapshot struct {
	Predictions   PredictionData      `json:"predictions"`
	Suggestions   []OrderSuggestion   `json:"suggestions"`
	Profitability []ProfitabilityItem `json:"profitability"`
	Dashboard     DashboardMetrics    `json:"dashboard"`
	FetchedAt     time.Time           `json:"fetched_at"`
}

// SuggestionsByID indexes suggestions by BookID. Later duplicates win.
func SuggestionsByID(suggestions []OrderSuggestion) map[string]OrderSuggestion {
	byID := make(map[string]OrderSuggestion, len(suggestions))
	for _, s := range suggestions {
		byID[s.BookID] = s
	}
	return byID
}
