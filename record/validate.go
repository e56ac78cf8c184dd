package record

import "unicode/utf8"

// Validate checks every field of rec against its declared constraints and
// returns a *ValidationError listing all violations, or nil. The identity
// field is exempt: it is owned by the store, never by the caller.
func (s *Schema) Validate(rec any) error {
	verr := &ValidationError{}
	for _, f := range s.Fields {
		if f.Identity {
			continue
		}
		val, present := s.Value(rec, f)
		if !present {
			if f.Required {
				verr.add(f.Name, "is required")
			}
			continue
		}

		switch f.Kind {
		case String:
			str := val.(string)
			n := utf8.RuneCountInString(str)
			if f.Required && n == 0 {
				verr.add(f.Name, "must not be empty")
				continue
			}
			if f.MinLen > 0 && n < f.MinLen {
				verr.add(f.Name, "must be at least %d characters", f.MinLen)
			}
			if f.MaxLen > 0 && n > f.MaxLen {
				verr.add(f.Name, "must be at most %d characters", f.MaxLen)
			}
		case Int, Float:
			var n float64
			if f.Kind == Int {
				n = float64(val.(int64))
			} else {
				n = val.(float64)
			}
			if f.GT != nil && n <= *f.GT {
				verr.add(f.Name, "must be greater than %v", *f.GT)
			}
			if f.LT != nil && n >= *f.LT {
				verr.add(f.Name, "must be less than %v", *f.LT)
			}
		}
	}
	return verr.orNil()
}
