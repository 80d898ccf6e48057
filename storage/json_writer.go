package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/marioalfredo2411-sys/chivoferton/models"
)

// JSONWriter persists the full crawl result as one indented UTF-8 JSON
// document. Non-ASCII text stays literal — HTML escaping is disabled so
// titles and locations remain human-readable in the output file.
type JSONWriter struct {
	path string
}

// NewJSONWriter prepares a writer for the given path. Intermediate
// directories are created automatically.
func NewJSONWriter(path string) (*JSONWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("json: create output dir: %w", err)
	}
	return &JSONWriter{path: path}, nil
}

// Write serializes all listings to the output file, replacing any previous
// content. It is invoked once at the end of a run.
func (w *JSONWriter) Write(listings []*models.Listing) error {
	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("json: create file %q: %w", w.path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if listings == nil {
		listings = []*models.Listing{}
	}
	if err := enc.Encode(listings); err != nil {
		return fmt.Errorf("json: encode listings: %w", err)
	}
	return nil
}

// Close is a no-op; the file handle only lives for the duration of Write.
func (w *JSONWriter) Close() error { return nil }
