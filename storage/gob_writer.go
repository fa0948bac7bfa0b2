package storage

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"anc-co2-tracker/models"
)

// GobWriter serializes a finalized run to a binary table file, so downstream
// consumers can reload the exact schema without re-parsing CSV.
type GobWriter struct {
	mu   sync.Mutex
	path string
}

// NewGobWriter prepares a writer targeting the given path. Intermediate
// directories are created automatically.
func NewGobWriter(path string) (*GobWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("gob: create output dir: %w", err)
	}
	return &GobWriter{path: path}, nil
}

// WriteRun serializes the whole run, replacing any previous file.
func (g *GobWriter) WriteRun(out *models.RunOutput) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	f, err := os.Create(g.path)
	if err != nil {
		return fmt.Errorf("gob: create file %q: %w", g.path, err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(out); err != nil {
		return fmt.Errorf("gob: encode run: %w", err)
	}
	return nil
}

// Close is a no-op; each WriteRun owns its file handle.
func (g *GobWriter) Close() error { return nil }

// ReadRun loads a run previously serialized by a GobWriter.
func ReadRun(path string) (*models.RunOutput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gob: open file %q: %w", path, err)
	}
	defer f.Close()

	var out models.RunOutput
	if err := gob.NewDecoder(f).Decode(&out); err != nil {
		return nil, fmt.Errorf("gob: decode run: %w", err)
	}
	return &out, nil
}
