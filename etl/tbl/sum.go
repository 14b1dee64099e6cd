package tbl

import (
	"fmt"

	"github.com/exhibitdata/exhibit"
	"github.com/exhibitdata/exhibit/pkg/anymath"
)

type sumTbl struct {
	id    int
	frame string
	field string
	as    string
}

func (s *sumTbl) ID() int { return s.id }

func (s *sumTbl) Bind(ed exhibit.Descriptor) (Bound, error) {
	off, typ, err := resolveField(ed, s.frame, s.field)
	if err != nil {
		return nil, err
	}
	if typ != exhibit.TypeInt64 && typ != exhibit.TypeFloat64 {
		return nil, fmt.Errorf("sum: field %q has non-numeric type %s", s.field, typ)
	}
	schema := exhibit.NewSchema("sum_"+s.as, []exhibit.Field{exhibit.NewField(s.as, typ)})
	return &boundSum{frame: s.frame, off: off, typ: typ, schema: schema}, nil
}

type boundSum struct {
	frame  string
	off    int
	typ    exhibit.Type
	schema *exhibit.Schema
}

func (b *boundSum) IntermediateSchema() *exhibit.Schema { return b.schema }

// The finalized column is the running sum itself.
func (b *boundSum) OutputSchema() *exhibit.Schema { return b.schema }

func (b *boundSum) Extract(e exhibit.Exhibit) *exhibit.Record {
	rec := exhibit.NewRecord(b.schema)
	var acc any
	for _, obs := range e[b.frame].Records {
		acc = addValues(b.typ, acc, obs.At(b.off))
	}
	rec.Set(0, acc)
	return rec
}

func (b *boundSum) Merge(cur, next *exhibit.Record) *exhibit.Record {
	out := exhibit.NewRecord(b.schema)
	out.Set(0, addValues(b.typ, cur.At(0), next.At(0)))
	return out
}

func (b *boundSum) Finalize(cur *exhibit.Record) *exhibit.Record {
	return cur.Copy()
}

// addValues adds two possibly null values of the given numeric type; null
// is the additive identity so a null partial never perturbs a merge.
func addValues(typ exhibit.Type, a, b any) any {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if typ == exhibit.TypeInt64 {
		return anymath.Add.Int64(a.(int64), b.(int64))
	}
	return anymath.Add.Float64(a.(float64), b.(float64))
}
