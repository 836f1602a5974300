package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/andresuchdata/bookstock-insights/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeFiles struct {
	mu          sync.Mutex
	folders     map[string]string
	files       []*File
	content     map[string][]byte
	folderCalls int
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{
		folders: map[string]string{"exports/daily": "folder-1"},
		content: map[string][]byte{},
	}
}

func (f *fakeFiles) add(id, name, modified string, body []byte) {
	f.files = append(f.files, &File{ID: id, Name: name, ModifiedTime: modified})
	f.content[id] = body
}

func (f *fakeFiles) FindFolderByPath(ctx context.Context, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.folderCalls++
	id, ok := f.folders[path]
	if !ok {
		return "", fmt.Errorf("folder not found: %s", path)
	}
	return id, nil
}

func (f *fakeFiles) ListFiles(ctx context.Context, folderID string) ([]*File, error) {
	return f.files, nil
}

func (f *fakeFiles) DownloadFile(ctx context.Context, fileID string, w io.Writer) error {
	body, ok := f.content[fileID]
	if !ok {
		return errors.New("no such file")
	}
	_, err := w.Write(body)
	return err
}

func seededFiles() *fakeFiles {
	files := newFakeFiles()
	files.add("p1", "predictions.json", "2024-01-01T00:00:00Z",
		[]byte(`{"demandPredictions":[{"forecastDate":"2024-01-01","predictedDemand":10}],"salesPredictions":[]}`))
	files.add("s1", "order-suggestions.json", "2024-01-01T00:00:00Z",
		[]byte(`[{"bookId":"B1","suggestedQuantity":5,"unitCost":2,"urgency":"immediate"}]`))
	files.add("r1", "profitability.json", "2024-01-01T00:00:00Z",
		[]byte(`[{"itemName":"Dune","profitMargin":0.4}]`))
	files.add("d1", "dashboard.json", "2024-01-01T00:00:00Z", []byte(`{"totalBooks":7}`))
	return files
}

func TestPayloadSourceReadsJSONExports(t *testing.T) {
	src := NewPayloadSource(seededFiles(), "/exports/daily/")
	ctx := context.Background()

	assert.Equal(t, "drive:exports/daily", src.Name())

	predictions, err := src.FetchPredictions(ctx)
	require.NoError(t, err)
	assert.Len(t, predictions.DemandPredictions, 1)

	suggestions, err := src.FetchSuggestions(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.UrgencyImmediate, suggestions[0].Urgency)

	items, err := src.FetchProfitability(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Dune", items[0].ItemName)

	metrics, err := src.FetchDashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, metrics.TotalBooks)
}

func TestPayloadSourceResolvesFolderOnce(t *testing.T) {
	files := seededFiles()
	src := NewPayloadSource(files, "exports/daily")

	_, _ = src.FetchDashboard(context.Background())
	_, _ = src.FetchSuggestions(context.Background())

	assert.Equal(t, 1, files.folderCalls)
}

func TestPayloadSourcePicksLatestFile(t *testing.T) {
	files := newFakeFiles()
	files.add("old", "dashboard.json", "2024-01-01T00:00:00Z", []byte(`{"totalBooks":1}`))
	files.add("new", "dashboard.json", "2024-03-01T00:00:00Z", []byte(`{"totalBooks":2}`))

	metrics, err := NewPayloadSource(files, "exports/daily").FetchDashboard(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, metrics.TotalBooks)
}

func TestPayloadSourceMissingFile(t *testing.T) {
	_, err := NewPayloadSource(newFakeFiles(), "exports/daily").FetchPredictions(context.Background())
	assert.ErrorIs(t, err, ErrPayloadNotFound)
}

func TestPayloadSourceReadsProfitabilityXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Item Name", "Revenue", "Profit", "Profit Margin", "ROI"},
		{"Dune", 1000, 300, 0.3, 1.2},
		{"Emma", 500, 10, "n/a", 0.1},
		{"", 1, 1, 1, 1},
	}
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellRef, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	files := newFakeFiles()
	files.add("x1", "profitability.xlsx", "2024-01-01T00:00:00Z", buf.Bytes())

	items, err := NewPayloadSource(files, "exports/daily").FetchProfitability(context.Background())

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Dune", items[0].ItemName)
	assert.Equal(t, 0.3, items[0].ProfitMargin)
	assert.Equal(t, 1000.0, items[0].Revenue)
	assert.Equal(t, 1.2, items[0].ROI)
}

func TestHeaderIndexNormalizesNames(t *testing.T) {
	cols := headerIndex([]string{" Item ", "profit_margin", "ROI"})

	assert.Equal(t, 0, cols["itemname"])
	assert.Equal(t, 1, cols["profitmargin"])
	assert.Equal(t, 2, cols["roi"])
}

func TestNumberParsing(t *testing.T) {
	assert.Equal(t, 12.5, number("12.5%", 0))
	assert.Equal(t, 3.0, number("", 3))
	assert.Equal(t, -1.0, number("abc", -1))
}
