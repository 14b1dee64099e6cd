package tbl

import (
	"fmt"

	"github.com/exhibitdata/exhibit"
	"github.com/exhibitdata/exhibit/pkg/anymath"
)

// mathTbl folds a polymorphic binary kernel (min or max) over the target
// field.  A null partial means no value has been seen.
type mathTbl struct {
	id       int
	kind     string
	function *anymath.Function
	frame    string
	field    string
	as       string
}

func newMathTbl(kind string, id int, frame, field, as string) *mathTbl {
	fn := anymath.Min
	if kind == "max" {
		fn = anymath.Max
	}
	return &mathTbl{id: id, kind: kind, function: fn, frame: frame, field: field, as: as}
}

func (m *mathTbl) ID() int { return m.id }

func (m *mathTbl) Bind(ed exhibit.Descriptor) (Bound, error) {
	off, typ, err := resolveField(ed, m.frame, m.field)
	if err != nil {
		return nil, err
	}
	if typ == exhibit.TypeBool {
		return nil, fmt.Errorf("%s: field %q has unordered type %s", m.kind, m.field, typ)
	}
	schema := exhibit.NewSchema(m.kind+"_"+m.as, []exhibit.Field{exhibit.NewField(m.as, typ)})
	return &boundMath{
		function: m.function,
		frame:    m.frame,
		off:      off,
		typ:      typ,
		schema:   schema,
	}, nil
}

type boundMath struct {
	function *anymath.Function
	frame    string
	off      int
	typ      exhibit.Type
	schema   *exhibit.Schema
}

func (b *boundMath) IntermediateSchema() *exhibit.Schema { return b.schema }

func (b *boundMath) OutputSchema() *exhibit.Schema { return b.schema }

func (b *boundMath) Extract(e exhibit.Exhibit) *exhibit.Record {
	rec := exhibit.NewRecord(b.schema)
	var acc any
	for _, obs := range e[b.frame].Records {
		acc = b.fold(acc, obs.At(b.off))
	}
	rec.Set(0, acc)
	return rec
}

func (b *boundMath) Merge(cur, next *exhibit.Record) *exhibit.Record {
	out := exhibit.NewRecord(b.schema)
	out.Set(0, b.fold(cur.At(0), next.At(0)))
	return out
}

func (b *boundMath) Finalize(cur *exhibit.Record) *exhibit.Record {
	return cur.Copy()
}

func (b *boundMath) fold(a, v any) any {
	if a == nil {
		return v
	}
	if v == nil {
		return a
	}
	switch b.typ {
	case exhibit.TypeInt64:
		return b.function.Int64(a.(int64), v.(int64))
	case exhibit.TypeFloat64:
		return b.function.Float64(a.(float64), v.(float64))
	default:
		return b.function.String(a.(string), v.(string))
	}
}
