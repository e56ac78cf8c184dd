package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/recordhouse/recordhouse/record"
)

// SQL is the persistent backend: one table per record type, columns derived
// from the record schema. Every operation runs inside its own short-lived
// transaction, begun on entry and committed or rolled back on every exit
// path, so a failed operation leaves the table untouched.
//
// Integer identities map to INTEGER PRIMARY KEY AUTOINCREMENT, which keeps
// them strictly increasing and never reuses a deleted value. String
// identities are random tokens generated at insert time.
type SQL[T any] struct {
	name   string
	table  string
	schema *record.Schema
	db     *sql.DB
}

// NewSQL builds a SQL-backed store for T over db, creating the table when it
// does not exist. name is the resource noun used in error messages.
func NewSQL[T any](ctx context.Context, db *sql.DB, name, table string) (*SQL[T], error) {
	schema, err := record.Of[T]()
	if err != nil {
		return nil, err
	}
	s := &SQL[T]{name: name, table: table, schema: schema, db: db}
	if _, err := db.ExecContext(ctx, s.createTableSQL()); err != nil {
		return nil, fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return s, nil
}

func (s *SQL[T]) createTableSQL() string {
	defs := make([]string, 0, len(s.schema.Fields))
	for _, f := range s.schema.Fields {
		defs = append(defs, columnDef(f))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", s.table, strings.Join(defs, ", "))
}

func columnDef(f record.Field) string {
	var typ string
	switch f.Kind {
	case record.Int, record.Bool:
		typ = "INTEGER"
	case record.Float:
		typ = "REAL"
	default:
		typ = "TEXT"
	}
	def := f.Name + " " + typ
	switch {
	case f.Identity && f.Kind == record.Int:
		def += " PRIMARY KEY AUTOINCREMENT"
	case f.Identity:
		def += " PRIMARY KEY"
	case !f.Optional:
		def += " NOT NULL"
	}
	return def
}

// withTx runs fn inside a transaction scoped to this one operation.
func (s *SQL[T]) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *SQL[T]) columns() []string {
	cols := make([]string, len(s.schema.Fields))
	for i, f := range s.schema.Fields {
		cols[i] = f.Name
	}
	return cols
}

func (s *SQL[T]) selectSQL(where string) string {
	q := fmt.Sprintf("SELECT %s FROM %s", strings.Join(s.columns(), ", "), s.table)
	if where != "" {
		q += " WHERE " + where
	}
	return q + " ORDER BY " + s.schema.Identity().Name
}

// scanRecord maps one result row back onto a record struct. NULLable
// destinations are used for optional fields so absent values round-trip.
func (s *SQL[T]) scanRecord(scan func(...any) error) (T, error) {
	var rec T
	dests := make([]any, len(s.schema.Fields))
	for i, f := range s.schema.Fields {
		if f.Optional {
			dests[i] = new(any)
		} else {
			switch f.Kind {
			case record.Int:
				dests[i] = new(int64)
			case record.Float:
				dests[i] = new(float64)
			case record.Bool:
				dests[i] = new(bool)
			default:
				dests[i] = new(string)
			}
		}
	}
	if err := scan(dests...); err != nil {
		return rec, err
	}
	for i, f := range s.schema.Fields {
		var val any
		switch d := dests[i].(type) {
		case *any:
			if *d == nil {
				continue
			}
			val = *d
		case *int64:
			val = *d
		case *float64:
			val = *d
		case *bool:
			val = *d
		case *string:
			val = *d
		}
		if err := s.schema.Set(&rec, f, val); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

// filterWhere compiles list filters to a WHERE fragment.
func filterWhere(filters []Filter) (string, []any) {
	var clauses []string
	var args []any
	for _, f := range filters {
		switch f.Op {
		case Fold:
			clauses = append(clauses, fmt.Sprintf("lower(%s) = lower(?)", f.Field))
		case Contains:
			clauses = append(clauses, fmt.Sprintf("instr(lower(%s), lower(?)) > 0", f.Field))
		default:
			clauses = append(clauses, f.Field+" = ?")
		}
		args = append(args, f.Value)
	}
	return strings.Join(clauses, " AND "), args
}

// matcherWhere compiles a matcher to a WHERE fragment with deterministic
// column order.
func (s *SQL[T]) matcherWhere(m Matcher) (string, []any) {
	if m.id != nil {
		return s.schema.Identity().Name + " = ?", []any{m.id}
	}
	names := make([]string, 0, len(m.fields))
	for name := range m.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	clauses := make([]string, len(names))
	args := make([]any, len(names))
	for i, name := range names {
		clauses[i] = name + " = ?"
		args[i] = m.fields[name]
	}
	return strings.Join(clauses, " AND "), args
}

func (s *SQL[T]) List(ctx context.Context, opts ListOptions) ([]T, error) {
	where, args := filterWhere(opts.Filters)
	var out []T
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, s.selectSQL(where), args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			rec, err := s.scanRecord(rows.Scan)
			if err != nil {
				return err
			}
			out = append(out, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func (s *SQL[T]) Get(ctx context.Context, id any) (T, error) {
	var rec T
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		rec, err = s.queryOne(ctx, tx, s.schema.Identity().Name+" = ?", []any{id})
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		var zero T
		return zero, fmt.Errorf("%s with id %v: %w", s.name, id, record.ErrNotFound)
	}
	return rec, err
}

func (s *SQL[T]) First(ctx context.Context, field string, value any) (T, error) {
	var zero T
	if _, ok := s.schema.FieldByName(field); !ok {
		return zero, fmt.Errorf("unknown field %q", field)
	}
	var rec T
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		rec, err = s.queryOne(ctx, tx, field+" = ?", []any{value})
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return zero, fmt.Errorf("%s with %s %v: %w", s.name, field, value, record.ErrNotFound)
	}
	return rec, err
}

// queryOne returns the first matching record in identity order.
func (s *SQL[T]) queryOne(ctx context.Context, tx *sql.Tx, where string, args []any) (T, error) {
	row := tx.QueryRowContext(ctx, s.selectSQL(where)+" LIMIT 1", args...)
	return s.scanRecord(row.Scan)
}

func (s *SQL[T]) Create(ctx context.Context, rec T) (T, error) {
	var zero T
	if err := s.schema.Validate(rec); err != nil {
		return zero, err
	}

	stored := rec
	tokenID := s.schema.Identity().Kind == record.String
	if tokenID {
		if err := s.schema.SetID(&stored, uuid.New().String()); err != nil {
			return zero, err
		}
	}

	var cols []string
	var args []any
	for _, f := range s.schema.Fields {
		if f.Identity && !tokenID {
			continue // assigned by AUTOINCREMENT
		}
		val, present := s.schema.Value(stored, f)
		if !present {
			val = nil
		}
		cols = append(cols, f.Name)
		args = append(args, val)
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			s.table, strings.Join(cols, ", "), placeholders(len(cols)))
		res, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return err
		}
		if !tokenID {
			id, err := res.LastInsertId()
			if err != nil {
				return err
			}
			return s.schema.SetID(&stored, id)
		}
		return nil
	})
	if err != nil {
		return zero, err
	}
	return stored, nil
}

func (s *SQL[T]) Update(ctx context.Context, m Matcher, patch any) (T, error) {
	var zero T
	var merged T
	where, args := s.matcherWhere(m)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		target, err := s.queryOne(ctx, tx, where, args)
		if err != nil {
			return err
		}
		merged, err = record.ApplyPatch(target, patch)
		if err != nil {
			return err
		}

		var sets []string
		var updArgs []any
		for _, f := range s.schema.Fields {
			if f.Identity {
				continue
			}
			val, present := s.schema.Value(merged, f)
			if !present {
				val = nil
			}
			sets = append(sets, f.Name+" = ?")
			updArgs = append(updArgs, val)
		}
		updArgs = append(updArgs, s.schema.ID(merged))
		q := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
			s.table, strings.Join(sets, ", "), s.schema.Identity().Name)
		_, err = tx.ExecContext(ctx, q, updArgs...)
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return zero, fmt.Errorf("%s %s: %w", s.name, m.describe(), record.ErrNotFound)
	}
	if err != nil {
		return zero, err
	}
	return merged, nil
}

func (s *SQL[T]) Delete(ctx context.Context, m Matcher) (T, error) {
	var zero T
	var removed T
	where, args := s.matcherWhere(m)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		removed, err = s.queryOne(ctx, tx, where, args)
		if err != nil {
			return err
		}
		q := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", s.table, s.schema.Identity().Name)
		_, err = tx.ExecContext(ctx, q, s.schema.ID(removed))
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return zero, fmt.Errorf("%s %s: %w", s.name, m.describe(), record.ErrNotFound)
	}
	if err != nil {
		return zero, err
	}
	return removed, nil
}

// Close is a no-op; the *sql.DB is owned by the caller.
func (s *SQL[T]) Close() error {
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
