package tbl

import (
	"fmt"

	"github.com/exhibitdata/exhibit"
)

// avgTbl keeps a running sum and count as its partial state and divides at
// finalize time.
type avgTbl struct {
	id    int
	frame string
	field string
	as    string
}

const (
	sumField   = "sum"
	countField = "count"
)

func (a *avgTbl) ID() int { return a.id }

func (a *avgTbl) Bind(ed exhibit.Descriptor) (Bound, error) {
	off, typ, err := resolveField(ed, a.frame, a.field)
	if err != nil {
		return nil, err
	}
	if typ != exhibit.TypeInt64 && typ != exhibit.TypeFloat64 {
		return nil, fmt.Errorf("avg: field %q has non-numeric type %s", a.field, typ)
	}
	inter := exhibit.NewSchema("avg_"+a.as, []exhibit.Field{
		exhibit.NewField(sumField, exhibit.TypeFloat64),
		exhibit.NewField(countField, exhibit.TypeInt64),
	})
	out := exhibit.NewSchema("avg_out_"+a.as, []exhibit.Field{
		exhibit.NewField(a.as, exhibit.TypeFloat64),
	})
	return &boundAvg{frame: a.frame, off: off, typ: typ, inter: inter, out: out}, nil
}

type boundAvg struct {
	frame string
	off   int
	typ   exhibit.Type
	inter *exhibit.Schema
	out   *exhibit.Schema
}

func (b *boundAvg) IntermediateSchema() *exhibit.Schema { return b.inter }

func (b *boundAvg) OutputSchema() *exhibit.Schema { return b.out }

func (b *boundAvg) Extract(e exhibit.Exhibit) *exhibit.Record {
	var sum float64
	var count int64
	for _, obs := range e[b.frame].Records {
		v := obs.At(b.off)
		if v == nil {
			continue
		}
		if b.typ == exhibit.TypeInt64 {
			sum += float64(v.(int64))
		} else {
			sum += v.(float64)
		}
		count++
	}
	rec := exhibit.NewRecord(b.inter)
	rec.Set(0, sum)
	rec.Set(1, count)
	return rec
}

func (b *boundAvg) Merge(cur, next *exhibit.Record) *exhibit.Record {
	out := exhibit.NewRecord(b.inter)
	out.Set(0, cur.At(0).(float64)+next.At(0).(float64))
	out.Set(1, cur.At(1).(int64)+next.At(1).(int64))
	return out
}

func (b *boundAvg) Finalize(cur *exhibit.Record) *exhibit.Record {
	rec := exhibit.NewRecord(b.out)
	if count := cur.At(1).(int64); count > 0 {
		rec.Set(0, cur.At(0).(float64)/float64(count))
	}
	return rec
}
