package record

import "encoding/json"

// Optional is a presence-aware wrapper for patch fields. Unlike a plain
// pointer it distinguishes three states: key omitted from the payload
// (Set false), key explicitly null (Set and Null true), and key carrying a
// value. Partial updates must never confuse the first two.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns an Optional carrying v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// ExplicitNull returns an Optional that was supplied as null.
func ExplicitNull[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// UnmarshalJSON is only invoked by encoding/json when the key is present in
// the payload, which is exactly what makes Set trustworthy.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
