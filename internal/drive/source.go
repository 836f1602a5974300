package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/andresuchdata/bookstock-insights/internal/domain"
)

// ErrPayloadNotFound is returned when the folder has no file for a payload.
var ErrPayloadNotFound = errors.New("payload file not found")

// Files is the part of the Drive API the payload source needs.
type Files interface {
	FindFolderByPath(ctx context.Context, path string) (string, error)
	ListFiles(ctx context.Context, folderID string) ([]*File, error)
	DownloadFile(ctx context.Context, fileID string, w io.Writer) error
}

// Payload file base names, without extension.
const (
	PredictionsFile   = "predictions"
	SuggestionsFile   = "order-suggestions"
	ProfitabilityFile = "profitability"
	DashboardFile     = "dashboard"
)

// PayloadSource reads the analytics payloads from JSON exports in a Drive
// folder. Profitability may also be supplied as an XLSX sheet.
type PayloadSource struct {
	files      Files
	folderPath string

	mu       sync.Mutex
	folderID string
}

func NewPayloadSource(files Files, folderPath string) *PayloadSource {
	return &PayloadSource{files: files, folderPath: strings.Trim(folderPath, "/")}
}

func (p *PayloadSource) Name() string {
	return "drive:" + p.folderPath
}

func (p *PayloadSource) FetchPredictions(ctx context.Context) (domain.PredictionData, error) {
	var out domain.PredictionData
	err := p.decodeJSON(ctx, PredictionsFile, &out)
	return out, err
}

func (p *PayloadSource) FetchSuggestions(ctx context.Context) ([]domain.OrderSuggestion, error) {
	var out []domain.OrderSuggestion
	err := p.decodeJSON(ctx, SuggestionsFile, &out)
	return out, err
}

func (p *PayloadSource) FetchProfitability(ctx context.Context) ([]domain.ProfitabilityItem, error) {
	file, err := p.find(ctx, ProfitabilityFile, ".json", ".xlsx")
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := p.files.DownloadFile(ctx, file.ID, &buf); err != nil {
		return nil, err
	}

	if strings.EqualFold(path.Ext(file.Name), ".xlsx") {
		return readProfitabilityXLSX(&buf)
	}

	var out []domain.ProfitabilityItem
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", file.Name, err)
	}
	return out, nil
}

func (p *PayloadSource) FetchDashboard(ctx context.Context) (domain.DashboardMetrics, error) {
	var out domain.DashboardMetrics
	err := p.decodeJSON(ctx, DashboardFile, &out)
	return out, err
}

func (p *PayloadSource) decodeJSON(ctx context.Context, base string, dst any) error {
	file, err := p.find(ctx, base, ".json")
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := p.files.DownloadFile(ctx, file.ID, &buf); err != nil {
		return err
	}
	if err := json.Unmarshal(buf.Bytes(), dst); err != nil {
		return fmt.Errorf("decode %s: %w", file.Name, err)
	}
	return nil
}

// find returns the most recently modified file named base+ext for any of the
// given extensions.
func (p *PayloadSource) find(ctx context.Context, base string, exts ...string) (*File, error) {
	folderID, err := p.resolveFolder(ctx)
	if err != nil {
		return nil, err
	}

	files, err := p.files.ListFiles(ctx, folderID)
	if err != nil {
		return nil, err
	}

	var best *File
	for _, f := range files {
		ext := strings.ToLower(path.Ext(f.Name))
		if strings.TrimSuffix(f.Name, path.Ext(f.Name)) != base || !contains(exts, ext) {
			continue
		}
		// RFC3339 timestamps from Drive compare lexically
		if best == nil || f.ModifiedTime > best.ModifiedTime {
			best = f
		}
	}

	if best == nil {
		return nil, fmt.Errorf("%w: %s in %q", ErrPayloadNotFound, base, p.folderPath)
	}
	return best, nil
}

func (p *PayloadSource) resolveFolder(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.folderID != "" {
		return p.folderID, nil
	}

	id, err := p.files.FindFolderByPath(ctx, p.folderPath)
	if err != nil {
		return "", err
	}
	p.folderID = id
	return id, nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
