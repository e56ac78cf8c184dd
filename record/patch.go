package record

import (
	"fmt"
	"reflect"
)

// ApplyPatch merges patch into a copy of rec and validates the result.
//
// A patch is a struct whose fields are Optional values tagged with the rec
// name of the record field they target. Only fields the caller explicitly
// supplied (Set true) are touched; omitted fields never overwrite existing
// values. An explicit null clears an optional record field and is a
// constraint violation on a required one. The identity field is never
// overwritten, even when the patch names it.
//
// On any violation the merged result is discarded and rec is returned
// unchanged alongside the *ValidationError, so a failed update leaves the
// store's state untouched.
func ApplyPatch[T any](rec T, patch any) (T, error) {
	schema, err := Of[T]()
	if err != nil {
		return rec, err
	}

	merged := rec
	mv := reflect.ValueOf(&merged).Elem()
	verr := &ValidationError{}

	pv := reflect.ValueOf(patch)
	if pv.Kind() == reflect.Pointer {
		pv = pv.Elem()
	}
	if pv.Kind() != reflect.Struct {
		return rec, fmt.Errorf("patch must be a struct, got %T", patch)
	}
	pt := pv.Type()

	for i := 0; i < pt.NumField(); i++ {
		tag := pt.Field(i).Tag.Get("rec")
		if tag == "" || tag == "-" {
			continue
		}
		opt := pv.Field(i)
		if opt.Kind() != reflect.Struct || !opt.FieldByName("Set").IsValid() {
			return rec, fmt.Errorf("patch field %q must be a record.Optional", tag)
		}
		if !opt.FieldByName("Set").Bool() {
			continue
		}
		target, ok := schema.FieldByName(tag)
		if !ok {
			return rec, fmt.Errorf("patch field %q has no counterpart in %s", tag, schema.Type.Name())
		}
		if target.Identity {
			// Identity is immutable; a patch naming it is silently ignored.
			continue
		}

		fv := mv.Field(target.Index)
		if opt.FieldByName("Null").Bool() {
			if !target.Optional {
				verr.add(target.Name, "must not be null")
				continue
			}
			fv.Set(reflect.Zero(fv.Type()))
			continue
		}

		val := opt.FieldByName("Value")
		if target.Optional {
			elem := fv.Type().Elem()
			if !val.Type().ConvertibleTo(elem) {
				return rec, fmt.Errorf("patch field %q: %s does not fit %s", tag, val.Type(), elem)
			}
			p := reflect.New(elem)
			p.Elem().Set(val.Convert(elem))
			fv.Set(p)
		} else {
			if !val.Type().ConvertibleTo(fv.Type()) {
				return rec, fmt.Errorf("patch field %q: %s does not fit %s", tag, val.Type(), fv.Type())
			}
			fv.Set(val.Convert(fv.Type()))
		}
	}

	// Constraint checks on the merged record are folded into the same
	// ValidationError as any explicit-null violations above.
	if err := schema.Validate(merged); err != nil {
		verr.Fields = append(verr.Fields, err.(*ValidationError).Fields...)
	}
	if err := verr.orNil(); err != nil {
		return rec, err
	}
	return merged, nil
}
