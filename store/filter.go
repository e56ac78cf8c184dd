package store

import (
	"fmt"
	"strings"

	"github.com/recordhouse/recordhouse/record"
)

// matches reports whether rec satisfies every filter in opts.
func matches[T any](schema *record.Schema, rec T, filters []Filter) (bool, error) {
	for _, flt := range filters {
		f, ok := schema.FieldByName(flt.Field)
		if !ok {
			return false, fmt.Errorf("unknown filter field %q", flt.Field)
		}
		val, present := schema.Value(rec, f)
		if !present {
			return false, nil
		}
		switch flt.Op {
		case Eq:
			if !equalValues(val, flt.Value) {
				return false, nil
			}
		case Fold:
			if !strings.EqualFold(toString(val), toString(flt.Value)) {
				return false, nil
			}
		case Contains:
			if !strings.Contains(strings.ToLower(toString(val)), strings.ToLower(toString(flt.Value))) {
				return false, nil
			}
		}
	}
	return true, nil
}

// equalValues compares a stored field value with a caller-supplied one.
// Numeric values are compared by magnitude so an int literal matches an
// int64 field.
func equalValues(a, b any) bool {
	if af, aok := toFloat(a); aok {
		bf, bok := toFloat(b)
		return bok && af == bf
	}
	return a == b
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
