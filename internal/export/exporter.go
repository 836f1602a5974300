package export

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/andresuchdata/bookstock-insights/internal/storage"
	"github.com/rs/zerolog/log"
)

var ErrUnknownExport = errors.New("unknown export")

// Result describes one uploaded export.
type Result struct {
	Key         string `json:"key"`
	Format      Format `json:"format"`
	Size        int    `json:"size"`
	DownloadURL string `json:"download_url,omitempty"`
}

type Exporter struct {
	store     storage.ObjectStorage
	prefix    string
	urlExpiry time.Duration
	now       func() time.Time
}

func NewExporter(store storage.ObjectStorage, prefix string) *Exporter {
	return &Exporter{
		store:     store,
		prefix:    prefix,
		urlExpiry: time.Hour,
		now:       time.Now,
	}
}

// Export renders t and uploads it as <prefix><name>-<timestamp>.<ext>.
func (e *Exporter) Export(ctx context.Context, name string, t Table, f Format) (*Result, error) {
	data, err := Render(t, f)
	if err != nil {
		return nil, err
	}

	key := e.key(name, f)
	if err := e.store.UploadObject(ctx, key, data, f.ContentType()); err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}

	result := &Result{Key: key, Format: f, Size: len(data)}
	if u, err := e.store.PresignedURL(ctx, key, e.urlExpiry); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("export: presign failed")
	} else {
		result.DownloadURL = u
	}

	log.Info().Str("key", key).Int("bytes", len(data)).Msg("export: uploaded")
	return result, nil
}

// List returns the uploaded exports, newest first.
func (e *Exporter) List(ctx context.Context) ([]storage.ObjectInfo, error) {
	objects, err := e.store.ListObjects(ctx, e.keyPrefix())
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	sort.SliceStable(objects, func(i, j int) bool {
		return objects[i].LastModified.After(objects[j].LastModified)
	})
	return objects, nil
}

// Download copies an uploaded export to destPath. Keys outside the export
// prefix are rejected.
func (e *Exporter) Download(ctx context.Context, key, destPath string) error {
	prefix := e.keyPrefix()
	if key == "" || !strings.HasPrefix(key, prefix) || strings.Contains(key, "..") {
		return fmt.Errorf("%w: %q", ErrUnknownExport, key)
	}
	if err := e.store.DownloadObject(ctx, key, destPath); err != nil {
		return fmt.Errorf("download %s: %w", key, err)
	}
	return nil
}

func (e *Exporter) keyPrefix() string {
	prefix := strings.TrimPrefix(e.prefix, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}

func (e *Exporter) key(name string, f Format) string {
	stamp := e.now().UTC().Format("20060102T150405Z")
	return e.keyPrefix() + path.Clean(name) + "-" + stamp + f.Extension()
}
