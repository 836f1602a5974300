// Package export renders reconciled timelines and profitability heatmaps as
// CSV or XLSX and uploads them to object storage.
package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andresuchdata/bookstock-insights/internal/domain"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

func (f Format) Extension() string {
	return "." + string(f)
}

// Table is a format-neutral sheet. Cells are strings, float64 or nil; nil
// renders as an empty cell. RowFill optionally colors a whole row in XLSX.
type Table struct {
	Sheet   string
	Header  []string
	Rows    [][]any
	RowFill []string
}

// TimelineTable lays out reconciled points one row per date.
func TimelineTable(points []domain.ForecastPoint) Table {
	t := Table{
		Sheet: "Timeline",
		Header: []string{
			"date", "book_title", "category_code", "category_name",
			"predicted_demand", "current_stock", "confidence_level", "confidence",
			"predicted_revenue", "predicted_order_count",
		},
		Rows: make([][]any, 0, len(points)),
	}
	for _, p := range points {
		t.Rows = append(t.Rows, []any{
			p.Date,
			str(p.BookTitle),
			str(p.CategoryCode),
			str(p.CategoryName),
			num(p.PredictedDemand),
			num(p.CurrentStock),
			num(p.ConfidenceLevel),
			string(p.Confidence),
			num(p.PredictedRevenue),
			num(p.PredictedOrderCount),
		})
	}
	return t
}

// HeatmapTable lays out one row per classified item, filled with its band color.
func HeatmapTable(h domain.ProfitabilityHeatmap) Table {
	t := Table{
		Sheet:   "Profitability",
		Header:  []string{"item_name", "revenue", "profit", "profit_margin", "roi", "normalized", "band"},
		Rows:    make([][]any, 0, len(h.Cells)),
		RowFill: make([]string, 0, len(h.Cells)),
	}
	for _, c := range h.Cells {
		t.Rows = append(t.Rows, []any{
			c.Item.ItemName,
			c.Item.Revenue,
			c.Item.Profit,
			c.Item.ProfitMargin,
			c.Item.ROI,
			c.Normalized,
			string(c.Band),
		})
		t.RowFill = append(t.RowFill, c.Color)
	}
	return t
}

func str(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func num(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
