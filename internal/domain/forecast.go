package domain

// ForecastPoint is the reconciled view of one date across the demand and sales streams.
// Fields that neither stream supplied stay nil.
type ForecastPoint struct {
	Date                string          `json:"date"`
	PredictedDemand     *float64        `json:"predictedDemand,omitempty"`
	CurrentStock        *float64        `json:"currentStock,omitempty"`
	BookTitle           *string         `json:"bookTitle,omitempty"`
	CategoryCode        *string         `json:"categoryCode,omitempty"`
	ConfidenceLevel     *float64        `json:"confidenceLevel,omitempty"`
	PredictedRevenue    *float64        `json:"predictedRevenue,omitempty"`
	PredictedOrderCount *float64        `json:"predictedOrderCount,omitempty"`
	CategoryName        *string         `json:"categoryName,omitempty"`
	Confidence          ConfidenceClass `json:"confidence"`
}

// HasDemand reports whether a demand record contributed to the point.
func (p ForecastPoint) HasDemand() bool {
	return p.PredictedDemand != nil || p.CurrentStock != nil || p.BookTitle != nil
}

// HasSales reports whether a sales record contributed to the point.
func (p ForecastPoint) HasSales() bool {
	return p.PredictedRevenue != nil || p.PredictedOrderCount != nil || p.CategoryName != nil
}

// TimelineSummary aggregates a reconciled timeline for the chart legend.
type TimelineSummary struct {
	Points             int                     `json:"points"`
	TotalDemand        float64                 `json:"total_demand"`
	TotalRevenue       float64                 `json:"total_revenue"`
	TotalOrderCount    float64                 `json:"total_order_count"`
	ConfidenceCounts   map[ConfidenceClass]int `json:"confidence_counts"`
	FirstDate          string                  `json:"first_date,omitempty"`
	LastDate           string                  `json:"last_date,omitempty"`
	UnorderedDateCount int                     `json:"unordered_date_count"`
}

// TimelineView is what the timeline endpoint returns for one window of one snapshot.
type TimelineView struct {
	Points    []ForecastPoint `json:"points"`
	Summary   TimelineSummary `json:"summary"`
	Warnings  []string        `json:"warnings"`
	FetchedAt string          `json:"fetched_at,omitempty"`
}

// TimelineWindow bounds a timeline request. Empty bounds are open.
type TimelineWindow struct {
	From string
	To   string
}
