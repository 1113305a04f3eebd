package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileSink writes each snapshot as a JSON file in a directory. Files are
// named <captured-at>-<id>.json so a directory listing sorts by time.
type FileSink struct {
	dir string
}

// NewFileSink creates a sink writing into dir. The directory is created on
// first emit if needed.
func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

// Emit writes the snapshot to its own file.
func (s *FileSink) Emit(ctx context.Context, snap *Snapshot) error {
	if snap == nil {
		return nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", snap.ID, err)
	}

	name := fmt.Sprintf("%s-%s.json", snap.CapturedAt.Format("20060102T150405"), snap.ID)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", snap.ID, err)
	}
	return nil
}
