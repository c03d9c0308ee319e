package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// Field records whether a key was present in a JSON payload alongside its
// decoded value. A key given as null is present with Null set.
type Field[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Some returns a present field holding v.
func Some[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		f.Value = zero
		f.Null = true
		return nil
	}
	f.Null = false
	return json.Unmarshal(data, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set || f.Null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Assignment is a single column update produced by a patch.
type Assignment struct {
	Column string
	Value  any
}

func appendIfSet[T any](dst []Assignment, column string, f Field[T]) []Assignment {
	if !f.Set {
		return dst
	}
	return append(dst, Assignment{Column: column, Value: columnValue(f.Value)})
}

// columnValue unwraps nil-able pointers so drivers receive either nil or a
// plain value.
func columnValue(v any) any {
	switch x := v.(type) {
	case *time.Time:
		if x == nil {
			return nil
		}
		return x.UTC()
	case *string:
		if x == nil {
			return nil
		}
		return *x
	default:
		return v
	}
}
