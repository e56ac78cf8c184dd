package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"
)

// Snapshot locking constants.
const (
	snapshotLockTimeout = 3 * time.Second
	snapshotLockRetries = 3
	snapshotRetryDelay  = 100 * time.Millisecond
)

// snapshotFile persists a memory store's state to a JSON file. Writes are
// atomic (temp file then rename) and guarded by a cross-process file lock so
// two processes sharing a snapshot path cannot interleave writes.
type snapshotFile struct {
	path string
	lock *flock.Flock
}

func newSnapshotFile(path string) *snapshotFile {
	return &snapshotFile{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// acquire takes the file lock with bounded retries.
func (s *snapshotFile) acquire(ctx context.Context) error {
	for i := 0; i < snapshotLockRetries; i++ {
		locked, err := s.lock.TryLockContext(ctx, snapshotRetryDelay)
		if err != nil {
			return fmt.Errorf("failed to acquire lock: %w", err)
		}
		if locked {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(snapshotRetryDelay):
		}
	}
	return fmt.Errorf("failed to acquire lock after %d attempts", snapshotLockRetries)
}

// load reads the snapshot into v. A missing or empty file is not an error;
// the store simply starts empty.
func (s *snapshotFile) load(v any) error {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotLockTimeout)
	defer cancel()
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer func() { _ = s.lock.Unlock() }()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return nil
}

// save writes v to the snapshot path atomically: marshal, write a temp file,
// rename over the target.
func (s *snapshotFile) save(v any) error {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotLockTimeout)
	defer cancel()
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer func() { _ = s.lock.Unlock() }()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to rename snapshot: %w", err)
	}
	return nil
}
