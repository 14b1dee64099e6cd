package exhibit

import (
	"fmt"
	"strings"
)

// Type enumerates the scalar types a field may hold.  The set is closed:
// every stage of the engine resolves a field's type once and switches on it
// rather than inspecting values at runtime.
type Type int

const (
	TypeBool Type = iota
	TypeInt64
	TypeFloat64
	TypeString
)

func (t Type) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt64:
		return "int64"
	case TypeFloat64:
		return "float64"
	case TypeString:
		return "string"
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// ParseType returns the Type named by s as it appears in configuration.
func ParseType(s string) (Type, error) {
	switch s {
	case "bool":
		return TypeBool, nil
	case "int64", "int":
		return TypeInt64, nil
	case "float64", "float":
		return TypeFloat64, nil
	case "string":
		return TypeString, nil
	}
	return 0, fmt.Errorf("unknown type: %q", s)
}

type Field struct {
	Name string
	Type Type
}

func NewField(name string, typ Type) Field {
	return Field{Name: name, Type: typ}
}

// Schema is an ordered sequence of named, typed fields.  The name-to-offset
// index is built once at construction so record access never looks up fields
// by name after planning.
type Schema struct {
	Name   string
	fields []Field
	index  map[string]int
}

func NewSchema(name string, fields []Field) *Schema {
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		index[f.Name] = i
	}
	return &Schema{Name: name, fields: fields, index: index}
}

func (s *Schema) Fields() []Field { return s.fields }

func (s *Schema) Len() int { return len(s.fields) }

func (s *Schema) Field(i int) Field { return s.fields[i] }

// IndexOf returns the offset of the field called name, or -1 if the schema
// has no such field.
func (s *Schema) IndexOf(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}

// Equal reports structural equality: same fields with the same names and
// types in the same order.  The schema's own name does not participate.
func (s *Schema) Equal(t *Schema) bool {
	if s == t {
		return true
	}
	if t == nil || len(s.fields) != len(t.fields) {
		return false
	}
	for i, f := range s.fields {
		if f != t.fields[i] {
			return false
		}
	}
	return true
}

func (s *Schema) String() string {
	var b strings.Builder
	b.WriteString(s.Name)
	b.WriteByte('{')
	for i, f := range s.fields {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%s:%s", f.Name, f.Type)
	}
	b.WriteByte('}')
	return b.String()
}
