// Package seed loads fixture records from a YAML file and inserts them into
// freshly created stores.
package seed

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/recordhouse/recordhouse/books"
	"github.com/recordhouse/recordhouse/store"
	"github.com/recordhouse/recordhouse/todos"
)

// File is the on-disk fixture shape. Identities in the file are ignored;
// the stores assign their own.
type File struct {
	Books []books.Book `yaml:"books"`
	Todos []todos.Todo `yaml:"todos"`
}

// Load parses the fixture at path. Unknown keys are rejected so a typo in a
// fixture fails loudly instead of silently dropping a field.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return &f, nil
}

// Apply creates every fixture record through the normal create path, so
// seeded records are validated and identified exactly like client input.
func (f *File) Apply(ctx context.Context, bookStore store.Store[books.Book], todoStore store.Store[todos.Todo]) error {
	for _, b := range f.Books {
		if _, err := bookStore.Create(ctx, b); err != nil {
			return fmt.Errorf("failed to seed book %q: %w", b.Title, err)
		}
	}
	for _, t := range f.Todos {
		if _, err := todoStore.Create(ctx, t); err != nil {
			return fmt.Errorf("failed to seed todo %q: %w", t.Title, err)
		}
	}
	return nil
}
