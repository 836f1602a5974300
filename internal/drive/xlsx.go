package drive

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/andresuchdata/bookstock-insights/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// readProfitabilityXLSX reads profitability rows from the first sheet. The
// header row names the columns; matching ignores case, spaces and underscores.
// Rows whose margin is not a number are skipped: a NaN margin cannot be
// written to the snapshot cache as JSON.
func readProfitabilityXLSX(r io.Reader) ([]domain.ProfitabilityItem, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}
	sheet := sheets[0]

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	var (
		cols  map[string]int
		items []domain.ProfitabilityItem
	)
	for rows.Next() {
		record, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read row from sheet %s: %w", sheet, err)
		}

		if cols == nil {
			cols = headerIndex(record)
			if _, ok := cols["itemname"]; !ok {
				return nil, fmt.Errorf("sheet %s: missing itemName column", sheet)
			}
			if _, ok := cols["profitmargin"]; !ok {
				return nil, fmt.Errorf("sheet %s: missing profitMargin column", sheet)
			}
			continue
		}

		name := cell(record, cols, "itemname")
		if name == "" {
			continue
		}
		margin := number(cell(record, cols, "profitmargin"), math.NaN())
		if math.IsNaN(margin) || math.IsInf(margin, 0) {
			log.Warn().Str("item", name).Str("sheet", sheet).Msg("drive: skipping row without numeric profit margin")
			continue
		}
		items = append(items, domain.ProfitabilityItem{
			ItemName:     name,
			Revenue:      number(cell(record, cols, "revenue"), 0),
			Profit:       number(cell(record, cols, "profit"), 0),
			ProfitMargin: margin,
			ROI:          number(cell(record, cols, "roi"), 0),
		})
	}

	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("error iterating rows in sheet %s: %w", sheet, err)
	}

	return items, nil
}

func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	replacer := strings.NewReplacer(" ", "", "_", "")
	for i, h := range header {
		cols[strings.ToLower(replacer.Replace(strings.TrimSpace(h)))] = i
	}
	if i, ok := cols["item"]; ok {
		if _, exists := cols["itemname"]; !exists {
			cols["itemname"] = i
		}
	}
	return cols
}

func cell(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func number(raw string, fallback float64) float64 {
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(raw, "%"), 64)
	if err != nil {
		return fallback
	}
	return v
}
