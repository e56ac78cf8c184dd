package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/recordhouse/recordhouse/record"
)

// Memory is the in-memory backend: an insertion-ordered collection guarded
// by a mutex so each operation appears atomic to its caller. No cross-request
// ordering or isolation guarantee is made beyond that.
//
// Identity assignment follows the record's identity kind: integer identities
// are strictly increasing and never reuse a deleted value within a run;
// string identities get a fresh random token.
//
// With WithSnapshot the collection is persisted to a JSON file after every
// mutation and loaded back on construction.
type Memory[T any] struct {
	name   string // resource noun used in not-found messages, e.g. "book"
	schema *record.Schema

	mu     sync.Mutex
	recs   []T
	nextID int64
	snap   *snapshotFile
}

// MemoryOption configures a Memory store at construction.
type MemoryOption func(*memoryConfig)

type memoryConfig struct {
	snapshotPath string
}

// WithSnapshot persists the collection to a JSON file at path, guarded by a
// cross-process file lock.
func WithSnapshot(path string) MemoryOption {
	return func(c *memoryConfig) { c.snapshotPath = path }
}

// NewMemory builds an empty in-memory store for T. name is the resource
// noun used in error messages.
func NewMemory[T any](name string, opts ...MemoryOption) (*Memory[T], error) {
	schema, err := record.Of[T]()
	if err != nil {
		return nil, err
	}

	var cfg memoryConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Memory[T]{name: name, schema: schema, nextID: 1}
	if cfg.snapshotPath != "" {
		s.snap = newSnapshotFile(cfg.snapshotPath)
		var state memoryState[T]
		if err := s.snap.load(&state); err != nil {
			return nil, fmt.Errorf("failed to load snapshot: %w", err)
		}
		s.recs = state.Records
		if state.NextID > s.nextID {
			s.nextID = state.NextID
		}
	}
	return s, nil
}

// memoryState is the on-disk snapshot shape. NextID is persisted so integer
// identities stay strictly increasing across restarts.
type memoryState[T any] struct {
	Records []T   `json:"records"`
	NextID  int64 `json:"next_id"`
}

func (s *Memory[T]) save() error {
	if s.snap == nil {
		return nil
	}
	return s.snap.save(memoryState[T]{Records: s.recs, NextID: s.nextID})
}

func (s *Memory[T]) List(ctx context.Context, opts ListOptions) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]T, 0, len(s.recs))
	for _, rec := range s.recs {
		ok, err := matches(s.schema, rec, opts.Filters)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *Memory[T]) Get(ctx context.Context, id any) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.recs {
		if equalValues(s.schema.ID(rec), id) {
			return rec, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%s with id %v: %w", s.name, id, record.ErrNotFound)
}

func (s *Memory[T]) First(ctx context.Context, field string, value any) (T, error) {
	var zero T
	f, ok := s.schema.FieldByName(field)
	if !ok {
		return zero, fmt.Errorf("unknown field %q", field)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.recs {
		if val, present := s.schema.Value(rec, f); present && equalValues(val, value) {
			return rec, nil
		}
	}
	return zero, fmt.Errorf("%s with %s %v: %w", s.name, field, value, record.ErrNotFound)
}

func (s *Memory[T]) Create(ctx context.Context, rec T) (T, error) {
	var zero T
	if err := s.schema.Validate(rec); err != nil {
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := rec
	switch s.schema.Identity().Kind {
	case record.String:
		if err := s.schema.SetID(&stored, uuid.New().String()); err != nil {
			return zero, err
		}
	default:
		if err := s.schema.SetID(&stored, s.nextID); err != nil {
			return zero, err
		}
		s.nextID++
	}

	s.recs = append(s.recs, stored)
	if err := s.save(); err != nil {
		// Roll the insert back so a persistence failure leaves no trace.
		s.recs = s.recs[:len(s.recs)-1]
		return zero, err
	}
	return stored, nil
}

func (s *Memory[T]) Update(ctx context.Context, m Matcher, patch any) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	i, err := s.find(m)
	if err != nil {
		return zero, err
	}

	merged, err := record.ApplyPatch(s.recs[i], patch)
	if err != nil {
		return zero, err
	}

	prev := s.recs[i]
	s.recs[i] = merged
	if err := s.save(); err != nil {
		s.recs[i] = prev
		return zero, err
	}
	return merged, nil
}

func (s *Memory[T]) Delete(ctx context.Context, m Matcher) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	i, err := s.find(m)
	if err != nil {
		return zero, err
	}

	removed := s.recs[i]
	s.recs = append(s.recs[:i], s.recs[i+1:]...)
	if err := s.save(); err != nil {
		s.recs = append(s.recs[:i], append([]T{removed}, s.recs[i:]...)...)
		return zero, err
	}
	return removed, nil
}

func (s *Memory[T]) Close() error {
	return nil
}

// find resolves a matcher to an index under s.mu.
func (s *Memory[T]) find(m Matcher) (int, error) {
	for i, rec := range s.recs {
		if m.id != nil {
			if equalValues(s.schema.ID(rec), m.id) {
				return i, nil
			}
			continue
		}
		hit := true
		for name, want := range m.fields {
			f, ok := s.schema.FieldByName(name)
			if !ok {
				return -1, fmt.Errorf("unknown field %q", name)
			}
			val, present := s.schema.Value(rec, f)
			if !present || !equalValues(val, want) {
				hit = false
				break
			}
		}
		if hit {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%s %s: %w", s.name, m.describe(), record.ErrNotFound)
}
