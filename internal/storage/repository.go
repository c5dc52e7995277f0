package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/guttosm/twpulse/internal/domain/models"
)

// SnapshotRepository defines the contract for persisting the snapshot artefact.
type SnapshotRepository interface {
	Save(snap *models.Snapshot) error
	Latest() (*models.Snapshot, error)
	Path() string
}

type fileRepository struct {
	path string
}

// NewSnapshotRepository stores the snapshot as one JSON file at path.
func NewSnapshotRepository(path string) SnapshotRepository {
	return &fileRepository{path: path}
}

func (r *fileRepository) Path() string { return r.path }

// Save writes the snapshot as indented UTF-8 JSON (no HTML escaping) and
// replaces the previous file atomically: readers see either the old or the
// new snapshot, never a partial one.
func (r *fileRepository) Save(snap *models.Snapshot) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	// no-op once renamed
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replace %s: %w", r.path, err)
	}
	return nil
}

// Latest reads the stored snapshot. It returns nil, nil when none exists yet.
func (r *fileRepository) Latest() (*models.Snapshot, error) {
	b, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}
	var snap models.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.path, err)
	}
	return &snap, nil
}
