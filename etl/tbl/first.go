package tbl

import (
	"github.com/exhibitdata/exhibit"
)

// firstTbl passes through one observed value per group, favoring non-null
// values so a group that ever saw a value reports it.
type firstTbl struct {
	id    int
	frame string
	field string
	as    string
}

func (f *firstTbl) ID() int { return f.id }

func (f *firstTbl) Bind(ed exhibit.Descriptor) (Bound, error) {
	off, typ, err := resolveField(ed, f.frame, f.field)
	if err != nil {
		return nil, err
	}
	schema := exhibit.NewSchema("first_"+f.as, []exhibit.Field{exhibit.NewField(f.as, typ)})
	return &boundFirst{frame: f.frame, off: off, schema: schema}, nil
}

type boundFirst struct {
	frame  string
	off    int
	schema *exhibit.Schema
}

func (b *boundFirst) IntermediateSchema() *exhibit.Schema { return b.schema }

func (b *boundFirst) OutputSchema() *exhibit.Schema { return b.schema }

func (b *boundFirst) Extract(e exhibit.Exhibit) *exhibit.Record {
	rec := exhibit.NewRecord(b.schema)
	for _, obs := range e[b.frame].Records {
		if v := obs.At(b.off); v != nil {
			rec.Set(0, v)
			break
		}
	}
	return rec
}

func (b *boundFirst) Merge(cur, next *exhibit.Record) *exhibit.Record {
	if cur.At(0) != nil {
		return cur
	}
	return next
}

func (b *boundFirst) Finalize(cur *exhibit.Record) *exhibit.Record {
	return cur.Copy()
}
