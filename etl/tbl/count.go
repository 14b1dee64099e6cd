package tbl

import (
	"github.com/exhibitdata/exhibit"
)

// countTbl counts observations, or non-null values of a field when one is
// configured.
type countTbl struct {
	id    int
	frame string
	field string
	as    string
}

func (c *countTbl) ID() int { return c.id }

func (c *countTbl) Bind(ed exhibit.Descriptor) (Bound, error) {
	off := -1
	if c.field != "" {
		var err error
		if off, _, err = resolveField(ed, c.frame, c.field); err != nil {
			return nil, err
		}
	}
	schema := exhibit.NewSchema("count_"+c.as, []exhibit.Field{exhibit.NewField(c.as, exhibit.TypeInt64)})
	return &boundCount{frame: c.frame, off: off, schema: schema}, nil
}

type boundCount struct {
	frame  string
	off    int
	schema *exhibit.Schema
}

func (b *boundCount) IntermediateSchema() *exhibit.Schema { return b.schema }

func (b *boundCount) OutputSchema() *exhibit.Schema { return b.schema }

func (b *boundCount) Extract(e exhibit.Exhibit) *exhibit.Record {
	var n int64
	for _, obs := range e[b.frame].Records {
		if b.off < 0 || obs.At(b.off) != nil {
			n++
		}
	}
	rec := exhibit.NewRecord(b.schema)
	rec.Set(0, n)
	return rec
}

func (b *boundCount) Merge(cur, next *exhibit.Record) *exhibit.Record {
	out := exhibit.NewRecord(b.schema)
	out.Set(0, cur.At(0).(int64)+next.At(0).(int64))
	return out
}

func (b *boundCount) Finalize(cur *exhibit.Record) *exhibit.Record {
	return cur.Copy()
}
