// Package record defines the schema layer shared by every store backend:
// struct-tag driven field metadata, constraint validation, and
// presence-aware partial-update merging.
//
// A record type declares its fields with `rec` tags:
//
//	type Book struct {
//		ID     int64  `rec:"id,identity" json:"id"`
//		Title  string `rec:"title,required,min=1,max=200" json:"title"`
//		Rating *float64 `rec:"rating,gt=0,lt=6" json:"rating,omitempty"`
//	}
//
// Tag grammar: rec:"<name>[,identity][,required][,min=N][,max=N][,gt=N][,lt=N]".
// min/max bound string length in runes; gt/lt are exclusive numeric bounds.
// Pointer-typed fields are optional: a nil pointer means the field is absent.
package record

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// Kind classifies the storable shape of a field.
type Kind int

const (
	String Kind = iota
	Int
	Float
	Bool
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	}
	return "unknown"
}

// Field is the parsed metadata for one record field.
type Field struct {
	Name     string // wire and column name, from the rec tag
	Index    int    // index into the record struct
	Kind     Kind
	Optional bool // pointer-typed in the record struct
	Identity bool
	Required bool
	MinLen   int // minimum rune length, 0 means unset
	MaxLen   int // maximum rune length, 0 means unset
	GT       *float64
	LT       *float64
}

// Schema is the parsed form of a record type's rec tags. Schemas are parsed
// once per type and cached; a Schema is immutable after construction.
type Schema struct {
	Type     reflect.Type
	Fields   []Field
	identity int
}

var schemaCache sync.Map // reflect.Type -> *Schema

// Of returns the schema for T, parsing its rec tags on first use.
func Of[T any]() (*Schema, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if cached, ok := schemaCache.Load(t); ok {
		return cached.(*Schema), nil
	}
	s, err := parseSchema(t)
	if err != nil {
		return nil, err
	}
	schemaCache.Store(t, s)
	return s, nil
}

// MustOf is Of for types known to carry valid tags; it panics otherwise.
func MustOf[T any]() *Schema {
	s, err := Of[T]()
	if err != nil {
		panic(err)
	}
	return s
}

func parseSchema(t reflect.Type) (*Schema, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("record type must be a struct, got %s", t.Kind())
	}

	s := &Schema{Type: t, identity: -1}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get("rec")
		if tag == "" || tag == "-" {
			continue
		}

		f, err := parseFieldTag(sf, i, tag)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", t.Name(), sf.Name, err)
		}
		if f.Identity {
			if s.identity >= 0 {
				return nil, fmt.Errorf("field %s.%s: duplicate identity field", t.Name(), sf.Name)
			}
			s.identity = len(s.Fields)
		}
		s.Fields = append(s.Fields, f)
	}

	if s.identity < 0 {
		return nil, fmt.Errorf("record type %s has no identity field", t.Name())
	}
	return s, nil
}

func parseFieldTag(sf reflect.StructField, index int, tag string) (Field, error) {
	parts := strings.Split(tag, ",")
	f := Field{Name: strings.TrimSpace(parts[0]), Index: index}
	if f.Name == "" {
		return f, fmt.Errorf("rec tag has no field name")
	}

	ft := sf.Type
	if ft.Kind() == reflect.Pointer {
		f.Optional = true
		ft = ft.Elem()
	}
	switch ft.Kind() {
	case reflect.String:
		f.Kind = String
	case reflect.Int, reflect.Int64:
		f.Kind = Int
	case reflect.Float64:
		f.Kind = Float
	case reflect.Bool:
		f.Kind = Bool
	default:
		return f, fmt.Errorf("unsupported field type %s", sf.Type)
	}

	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		key, val, hasVal := strings.Cut(part, "=")
		switch key {
		case "identity":
			f.Identity = true
		case "required":
			f.Required = true
		case "min", "max":
			if f.Kind != String {
				return f, fmt.Errorf("%s applies to string fields only", key)
			}
			n, err := strconv.Atoi(val)
			if err != nil || !hasVal {
				return f, fmt.Errorf("invalid %s bound %q", key, val)
			}
			if key == "min" {
				f.MinLen = n
			} else {
				f.MaxLen = n
			}
		case "gt", "lt":
			if f.Kind != Int && f.Kind != Float {
				return f, fmt.Errorf("%s applies to numeric fields only", key)
			}
			n, err := strconv.ParseFloat(val, 64)
			if err != nil || !hasVal {
				return f, fmt.Errorf("invalid %s bound %q", key, val)
			}
			if key == "gt" {
				f.GT = &n
			} else {
				f.LT = &n
			}
		case "":
		default:
			return f, fmt.Errorf("unknown rec tag option %q", key)
		}
	}

	if f.Identity {
		if f.Optional {
			return f, fmt.Errorf("identity field must not be a pointer")
		}
		if f.Kind != Int && f.Kind != String {
			return f, fmt.Errorf("identity field must be an integer or a string token")
		}
	}
	return f, nil
}

// Identity returns the identity field.
func (s *Schema) Identity() Field {
	return s.Fields[s.identity]
}

// FieldByName looks up a field by its rec tag name.
func (s *Schema) FieldByName(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// ID returns the identity value of rec.
func (s *Schema) ID(rec any) any {
	v, _ := s.Value(rec, s.Identity())
	return v
}

// SetID assigns the identity field of *rec. Integer identities accept any
// integer value; token identities accept a string.
func (s *Schema) SetID(rec any, id any) error {
	rv := reflect.ValueOf(rec)
	if rv.Kind() != reflect.Pointer || rv.Elem().Type() != s.Type {
		return fmt.Errorf("SetID needs a *%s, got %T", s.Type.Name(), rec)
	}
	fv := rv.Elem().Field(s.Identity().Index)
	iv := reflect.ValueOf(id)
	if !iv.Type().ConvertibleTo(fv.Type()) {
		return fmt.Errorf("identity value %v (%T) does not fit field %s", id, id, s.Identity().Name)
	}
	fv.Set(iv.Convert(fv.Type()))
	return nil
}

// Set assigns field f of *rec. A nil val clears an optional field and is an
// error on a non-optional one.
func (s *Schema) Set(rec any, f Field, val any) error {
	rv := reflect.ValueOf(rec)
	if rv.Kind() != reflect.Pointer || rv.Elem().Type() != s.Type {
		return fmt.Errorf("Set needs a *%s, got %T", s.Type.Name(), rec)
	}
	fv := rv.Elem().Field(f.Index)
	if val == nil {
		if !f.Optional {
			return fmt.Errorf("field %s is not optional, cannot be nil", f.Name)
		}
		fv.Set(reflect.Zero(fv.Type()))
		return nil
	}

	target := fv.Type()
	if f.Optional {
		target = target.Elem()
	}
	vv := reflect.ValueOf(val)
	if !vv.Type().ConvertibleTo(target) {
		return fmt.Errorf("value %v (%T) does not fit field %s", val, val, f.Name)
	}
	vv = vv.Convert(target)
	if f.Optional {
		p := reflect.New(target)
		p.Elem().Set(vv)
		fv.Set(p)
	} else {
		fv.Set(vv)
	}
	return nil
}

// Value returns the value of field f in rec, dereferenced, along with a
// presence flag. Optional fields report false when nil.
func (s *Schema) Value(rec any, f Field) (any, bool) {
	rv := reflect.ValueOf(rec)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	fv := rv.Field(f.Index)
	if f.Optional {
		if fv.IsNil() {
			return nil, false
		}
		fv = fv.Elem()
	}
	switch f.Kind {
	case Int:
		return fv.Int(), true
	case Float:
		return fv.Float(), true
	case Bool:
		return fv.Bool(), true
	default:
		return fv.String(), true
	}
}
