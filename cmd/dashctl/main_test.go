package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/andresuchdata/bookstock-insights/internal/domain"
	"github.com/andresuchdata/bookstock-insights/internal/drive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func writePayloads(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"predictions.json": `{
			"demandPredictions": [{"forecastDate": "2024-01-02", "predictedDemand": 4, "confidenceLevel": 90}],
			"salesPredictions": [{"forecastPeriodStart": "2024-01-01", "predictedRevenue": 100}]
		}`,
		"order-suggestions.json": `[
			{"bookId": "A", "suggestedQuantity": 1, "urgency": "within_month"},
			{"bookId": "B", "suggestedQuantity": 2, "urgency": "immediate"}
		]`,
		"profitability.json": `[{"itemName": "Dune", "profitMargin": 0.1}, {"itemName": "Emma", "profitMargin": 0.3}]`,
		"dashboard.json":     `{"totalBooks": 2}`,
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func runApp(t *testing.T, args ...string) []byte {
	t.Helper()
	var out bytes.Buffer
	app := &cli.App{
		Name:   "dashctl",
		Writer: &out,
		Flags:  []cli.Flag{newDirFlag()},
		Commands: []*cli.Command{
			{Name: "timeline", Flags: windowFlags(), Action: runTimeline},
			{Name: "heatmap", Action: runHeatmap},
			{Name: "urgency", Action: runSuggestions},
		},
	}
	require.NoError(t, app.Run(append([]string{"dashctl"}, args...)))
	return out.Bytes()
}

func TestLocalFilesListsAndDownloads(t *testing.T) {
	dir := writePayloads(t)
	files := localFiles{root: dir}
	ctx := context.Background()

	folder, err := files.FindFolderByPath(ctx, "")
	require.NoError(t, err)

	listed, err := files.ListFiles(ctx, folder)
	require.NoError(t, err)
	assert.Len(t, listed, 4)

	var target *drive.File
	for _, f := range listed {
		if f.Name == "dashboard.json" {
			target = f
		}
	}
	require.NotNil(t, target)

	var buf bytes.Buffer
	require.NoError(t, files.DownloadFile(ctx, target.ID, &buf))
	assert.JSONEq(t, `{"totalBooks": 2}`, buf.String())

	_, err = files.FindFolderByPath(ctx, "missing")
	assert.Error(t, err)
}

func TestTimelineCommand(t *testing.T) {
	dir := writePayloads(t)

	var view domain.TimelineView
	require.NoError(t, json.Unmarshal(runApp(t, "--dir", dir, "timeline"), &view))

	require.Len(t, view.Points, 2)
	assert.Equal(t, "2024-01-01", view.Points[0].Date)
	assert.Equal(t, "2024-01-02", view.Points[1].Date)
	assert.Equal(t, domain.ConfidenceHigh, view.Points[1].Confidence)
}

func TestHeatmapCommand(t *testing.T) {
	dir := writePayloads(t)

	var heatmap domain.ProfitabilityHeatmap
	require.NoError(t, json.Unmarshal(runApp(t, "--dir", dir, "heatmap"), &heatmap))

	require.Len(t, heatmap.Cells, 2)
	assert.Equal(t, domain.BandVeryPoor, heatmap.Cells[0].Band)
	assert.Equal(t, domain.BandExcellent, heatmap.Cells[1].Band)
}

func TestUrgencyCommandSortsMostUrgentFirst(t *testing.T) {
	dir := writePayloads(t)

	var suggestions []domain.OrderSuggestion
	require.NoError(t, json.Unmarshal(runApp(t, "--dir", dir, "urgency"), &suggestions))

	require.Len(t, suggestions, 2)
	assert.Equal(t, "B", suggestions[0].BookID)
}
