package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/andresuchdata/bookstock-insights/internal/drive"
)

// localFiles serves a directory of payload exports through the same interface
// the Drive-backed source reads from.
type localFiles struct {
	root string
}

var _ drive.Files = localFiles{}

func (l localFiles) FindFolderByPath(ctx context.Context, path string) (string, error) {
	dir := filepath.Join(l.root, filepath.FromSlash(path))
	info, err := os.Stat(dir)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", dir)
	}
	return dir, nil
}

func (l localFiles) ListFiles(ctx context.Context, folderID string) ([]*drive.File, error) {
	entries, err := os.ReadDir(folderID)
	if err != nil {
		return nil, err
	}

	files := make([]*drive.File, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		files = append(files, &drive.File{
			ID:           filepath.Join(folderID, entry.Name()),
			Name:         entry.Name(),
			ModifiedTime: info.ModTime().UTC().Format(time.RFC3339Nano),
			Size:         info.Size(),
		})
	}
	return files, nil
}

func (l localFiles) DownloadFile(ctx context.Context, fileID string, w io.Writer) error {
	f, err := os.Open(fileID)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}
