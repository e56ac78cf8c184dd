// Package store provides the record store: an addressable collection of
// uniquely keyed records with list, get, lookup, create, partial-update and
// delete operations. Two backends implement the same contract, an
// insertion-ordered in-memory collection and a SQLite table.
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Store is the backend-independent record store contract. T is a record
// struct carrying rec tags (see the record package).
//
// All failures are one of two kinds: record.ErrNotFound (wrapped with the
// lookup key) when a matcher resolves to nothing, and *record.ValidationError
// when input violates field constraints. Validation failures never mutate
// the store.
type Store[T any] interface {
	// List returns records in store order, narrowed by opts.
	List(ctx context.Context, opts ListOptions) ([]T, error)

	// Get returns the record whose identity equals id.
	Get(ctx context.Context, id any) (T, error)

	// First returns the first record in store order whose field equals
	// value, case-sensitively. When duplicates exist the first in store
	// order wins; that tie-break is deliberate and stable.
	First(ctx context.Context, field string, value any) (T, error)

	// Create validates rec, assigns a fresh identity (any caller-supplied
	// identity is ignored), inserts and returns the stored record.
	Create(ctx context.Context, rec T) (T, error)

	// Update merges patch into the record resolved by m and returns the
	// merged record. Only fields the patch explicitly supplies are touched;
	// the identity field never changes.
	Update(ctx context.Context, m Matcher, patch any) (T, error)

	// Delete removes the record resolved by m and returns the snapshot
	// taken before removal. Freed identities are never reused.
	Delete(ctx context.Context, m Matcher) (T, error)

	// Close releases any resources held by the store.
	Close() error
}

// Op selects how a Filter compares a field against its value.
type Op int

const (
	// Eq is case-sensitive equality.
	Eq Op = iota
	// Fold is case-insensitive equality.
	Fold
	// Contains is case-insensitive substring containment; string fields only.
	Contains
)

// Filter narrows a List to records whose field relates to Value under Op.
// Multiple filters are combined with AND.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// ListOptions configures how records are listed.
type ListOptions struct {
	Filters []Filter
}

// Matcher identifies at most one target record for update and delete:
// either by identity or by compound field equality. With compound fields
// the first record in store order wins.
type Matcher struct {
	id     any
	fields map[string]any
}

// ByID matches the record whose identity equals id.
func ByID(id any) Matcher {
	return Matcher{id: id}
}

// ByFields matches the first record whose named fields all equal the given
// values, case-sensitively.
func ByFields(fields map[string]any) Matcher {
	return Matcher{fields: fields}
}

// describe renders the matcher for not-found messages, with deterministic
// field order.
func (m Matcher) describe() string {
	if m.id != nil {
		return fmt.Sprintf("with id %v", m.id)
	}
	names := make([]string, 0, len(m.fields))
	for name := range m.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s %q", name, m.fields[name])
	}
	return "with " + strings.Join(parts, " and ")
}
