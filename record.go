package exhibit

import (
	"cmp"
	"fmt"
	"slices"
)

// Record holds one value per field of its schema.  A nil value is null.
// Values are accessed by offset only; callers resolve offsets against the
// schema up front.
type Record struct {
	Schema *Schema
	Values []any
}

func NewRecord(s *Schema) *Record {
	return &Record{Schema: s, Values: make([]any, s.Len())}
}

func (r *Record) At(i int) any { return r.Values[i] }

func (r *Record) Set(i int, v any) { r.Values[i] = v }

func (r *Record) Copy() *Record {
	return &Record{Schema: r.Schema, Values: slices.Clone(r.Values)}
}

// Equal reports whether the two records have equal values field by field.
// Both records must share a structurally equal schema.
func (r *Record) Equal(other *Record) bool {
	if other == nil || len(r.Values) != len(other.Values) {
		return false
	}
	for i := range r.Values {
		if CompareValues(r.Values[i], other.Values[i]) != 0 {
			return false
		}
	}
	return true
}

func (r *Record) String() string {
	return fmt.Sprintf("%s%v", r.Schema.Name, r.Values)
}

// CompareValues orders two scalar values of the same type, with null
// ordered before any non-null value.
func CompareValues(a, b any) int {
	if a == nil {
		if b == nil {
			return 0
		}
		return -1
	}
	if b == nil {
		return 1
	}
	switch av := a.(type) {
	case bool:
		bv := b.(bool)
		if av == bv {
			return 0
		}
		if !av {
			return -1
		}
		return 1
	case int64:
		return cmp.Compare(av, b.(int64))
	case float64:
		return cmp.Compare(av, b.(float64))
	case string:
		return cmp.Compare(av, b.(string))
	}
	panic(fmt.Sprintf("compare: unsupported value type %T", a))
}

// CompareRecords orders two records of the same schema field by field.
func CompareRecords(a, b *Record) int {
	for i := range a.Values {
		if c := CompareValues(a.Values[i], b.Values[i]); c != 0 {
			return c
		}
	}
	return 0
}
