// Package jsonio reads and writes records as line-delimited JSON objects.
package jsonio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/exhibitdata/exhibit"
)

type Reader struct {
	scanner *bufio.Scanner
	schema  *exhibit.Schema
	line    int
}

// NewReader returns a Reader that decodes one JSON object per line into a
// record of the given schema.  Fields absent from an object are null;
// fields not in the schema are ignored.
func NewReader(r io.Reader, schema *exhibit.Schema) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, 25*1024*1024)
	return &Reader{scanner: scanner, schema: schema}
}

func (r *Reader) Read() (*exhibit.Record, error) {
	for r.scanner.Scan() {
		r.line++
		b := r.scanner.Bytes()
		if len(b) == 0 {
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(b, &obj); err != nil {
			return nil, fmt.Errorf("line %d: %w", r.line, err)
		}
		rec := exhibit.NewRecord(r.schema)
		for i, f := range r.schema.Fields() {
			v, ok := obj[f.Name]
			if !ok || v == nil {
				continue
			}
			cv, err := coerce(v, f.Type)
			if err != nil {
				return nil, fmt.Errorf("line %d: field %q: %w", r.line, f.Name, err)
			}
			rec.Set(i, cv)
		}
		return rec, nil
	}
	return nil, r.scanner.Err()
}

// coerce converts a decoded JSON value to the field's declared type.  JSON
// numbers arrive as float64 and are narrowed to int64 where declared.
func coerce(v any, typ exhibit.Type) (any, error) {
	switch typ {
	case exhibit.TypeBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case exhibit.TypeInt64:
		if f, ok := v.(float64); ok {
			// JSON numbers decode as float64; only integral values may
			// narrow to int64.
			if i := int64(f); float64(i) == f {
				return i, nil
			}
			return nil, fmt.Errorf("non-integral value %v", f)
		}
	case exhibit.TypeFloat64:
		if f, ok := v.(float64); ok {
			return f, nil
		}
	case exhibit.TypeString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	}
	return nil, fmt.Errorf("cannot read %T as %s", v, typ)
}
