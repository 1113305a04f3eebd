package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/prunekit/prunekit/types"
)

const (
	// DefaultBackupCount is how many rotated backups the file store keeps.
	DefaultBackupCount = 3

	// lockRetryInterval and lockTimeout bound the advisory lock wait.
	lockRetryInterval = 25 * time.Millisecond
	lockTimeout       = 2 * time.Second
)

// FileStore persists deletion specs in a single JSON file, keyed by
// conversation ID. Writes are atomic (temp file + rename) and guarded by an
// in-process mutex plus an advisory lock file so concurrent processes do not
// interleave writes. Up to BackupCount rotated backups are kept next to the
// store file.
type FileStore struct {
	path    string
	backups int
	mu      sync.Mutex
}

// NewFileStore creates a file store at the given path. The parent directory
// is created on first write if needed.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, backups: DefaultBackupCount}
}

// WithBackupCount sets how many rotated backups to keep. Zero disables
// backups; negative values keep the default.
func (s *FileStore) WithBackupCount(n int) *FileStore {
	if n >= 0 {
		s.backups = n
	}
	return s
}

// SaveSpec creates or replaces the spec for its conversation.
func (s *FileStore) SaveSpec(ctx context.Context, spec *types.DeletionSpec) error {
	if spec == nil || spec.ConversationID == "" {
		return fmt.Errorf("save spec: conversation_id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.acquireLock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	specs, err := s.load()
	if err != nil {
		return err
	}

	record := spec.Clone()
	now := time.Now().UTC()
	if existing, ok := specs[record.ConversationID]; ok && !existing.CreatedAt.IsZero() {
		record.CreatedAt = existing.CreatedAt
	} else if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	specs[record.ConversationID] = record

	return s.write(specs)
}

// GetSpec retrieves the spec for a conversation.
func (s *FileStore) GetSpec(ctx context.Context, conversationID string) (*types.DeletionSpec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	specs, err := s.load()
	if err != nil {
		return nil, err
	}
	spec, ok := specs[conversationID]
	if !ok {
		return nil, fmt.Errorf("conversation %s: %w", conversationID, ErrSpecNotFound)
	}
	return spec.Clone(), nil
}

// DeleteSpec removes the spec for a conversation.
func (s *FileStore) DeleteSpec(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.acquireLock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	specs, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := specs[conversationID]; !ok {
		return nil
	}
	delete(specs, conversationID)
	return s.write(specs)
}

// ListSpecs returns all stored specs.
func (s *FileStore) ListSpecs(ctx context.Context) ([]*types.DeletionSpec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	specs, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]*types.DeletionSpec, 0, len(specs))
	for _, spec := range specs {
		out = append(out, spec.Clone())
	}
	return out, nil
}

// PurgeOlderThan removes specs last updated before the cutoff.
func (s *FileStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.acquireLock(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	specs, err := s.load()
	if err != nil {
		return 0, err
	}

	removed := 0
	for id, spec := range specs {
		if spec.UpdatedAt.Before(cutoff) {
			delete(specs, id)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, s.write(specs)
}

// load reads the store file. A missing file is an empty store.
func (s *FileStore) load() (map[string]*types.DeletionSpec, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]*types.DeletionSpec{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read spec store: %w", err)
	}
	if len(data) == 0 {
		return map[string]*types.DeletionSpec{}, nil
	}

	specs := map[string]*types.DeletionSpec{}
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("decode spec store %s: %w", s.path, err)
	}
	return specs, nil
}

// write rotates backups and atomically replaces the store file.
func (s *FileStore) write(specs map[string]*types.DeletionSpec) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create spec store dir: %w", err)
	}

	s.rotateBackups()

	data, err := json.MarshalIndent(specs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode spec store: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("write spec store: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write spec store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write spec store: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace spec store: %w", err)
	}
	return nil
}

// rotateBackups shifts path.bak.1..N before a write. Best effort; a failed
// rotation never blocks the write itself.
func (s *FileStore) rotateBackups() {
	if s.backups <= 0 {
		return
	}
	if _, err := os.Stat(s.path); err != nil {
		return
	}
	for i := s.backups - 1; i >= 1; i-- {
		os.Rename(s.backupPath(i), s.backupPath(i+1))
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	os.WriteFile(s.backupPath(1), data, 0o644)
}

func (s *FileStore) backupPath(n int) string {
	return fmt.Sprintf("%s.bak.%d", s.path, n)
}

// acquireLock takes the cross-process advisory lock file, waiting up to
// lockTimeout. The returned func releases the lock.
func (s *FileStore) acquireLock(ctx context.Context) (func(), error) {
	lockPath := s.path + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create spec store dir: %w", err)
	}

	deadline := time.Now().Add(lockTimeout)
	for {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			f.Close()
			return func() { os.Remove(lockPath) }, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("acquire spec store lock: %w", err)
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("acquire spec store lock %s: timed out", lockPath)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}
