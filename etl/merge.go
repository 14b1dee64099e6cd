package etl

import (
	"github.com/exhibitdata/exhibit"
	"github.com/exhibitdata/exhibit/etl/tbl"
)

// Merger is the final merge/finalize stage: a state machine over a stream
// grouped by tagged key.  While a key is open it accumulates one partial
// state per aggregate, merging when an aggregate arrives more than once, so
// the stream is correct whether the combiner ran zero or many times.  On
// key change or stream end the partials are finalized and copied into one
// output record by resolved offset, key fields first, and the record is
// emitted tagged with its table index.
//
// All field offsets are resolved once at construction so the per-record
// path never looks up a field by name.
type Merger struct {
	plan  *Plan
	bound [][]tbl.Bound
	// keyTo[i][k] is the output offset of table i's k-th key field.
	keyTo [][]int
	// outTo[i][j][f] is the output offset of the f-th output field of
	// table i's j-th aggregate.
	outTo [][][]int
	emit  func(TaggedRow) error

	open     bool
	curKey   TaggedKey
	partials []*exhibit.Record

	// Emitted counts rows emitted per table.
	Emitted []int64
}

func NewMerger(plan *Plan, emit func(TaggedRow) error) (*Merger, error) {
	m := &Merger{
		plan:    plan,
		bound:   make([][]tbl.Bound, len(plan.Tables)),
		keyTo:   make([][]int, len(plan.Tables)),
		outTo:   make([][][]int, len(plan.Tables)),
		emit:    emit,
		Emitted: make([]int64, len(plan.Tables)),
	}
	for i, tp := range plan.Tables {
		for _, f := range tp.KeySchema.Fields() {
			m.keyTo[i] = append(m.keyTo[i], tp.OutputSchema.IndexOf(f.Name))
		}
		for _, t := range tp.Tbls {
			bound, err := t.Bind(plan.Descriptor)
			if err != nil {
				return nil, err
			}
			m.bound[i] = append(m.bound[i], bound)
			var offs []int
			for _, f := range bound.OutputSchema().Fields() {
				offs = append(offs, tp.OutputSchema.IndexOf(f.Name))
			}
			m.outTo[i] = append(m.outTo[i], offs)
		}
	}
	return m, nil
}

// Write consumes the next grouped emission.  The input stream must be
// ordered so all emissions for one tagged key are contiguous.
func (m *Merger) Write(kv KV) error {
	if !m.open || !m.curKey.Equal(kv.Key) {
		if m.open {
			if err := m.flush(); err != nil {
				return err
			}
		}
		m.openGroup(kv.Key)
	}
	if j := kv.Value.Agg; j >= 0 {
		if cur := m.partials[j]; cur != nil {
			m.partials[j] = m.bound[kv.Key.Index][j].Merge(cur, kv.Value.Partial)
		} else {
			m.partials[j] = kv.Value.Partial
		}
	}
	return nil
}

// Close flushes the group left open at stream end.
func (m *Merger) Close() error {
	if m.open {
		return m.flush()
	}
	return nil
}

func (m *Merger) openGroup(key TaggedKey) {
	m.open = true
	m.curKey = key
	m.partials = make([]*exhibit.Record, len(m.bound[key.Index]))
}

func (m *Merger) flush() error {
	i := m.curKey.Index
	row := exhibit.NewRecord(m.plan.Tables[i].OutputSchema)
	for k, off := range m.keyTo[i] {
		row.Set(off, m.curKey.Key.At(k))
	}
	// Aggregates are finalized in declaration order so a later aggregate
	// writing the same output column wins the slot.
	for j, partial := range m.partials {
		if partial == nil {
			continue
		}
		finalized := m.bound[i][j].Finalize(partial)
		for f, off := range m.outTo[i][j] {
			row.Set(off, finalized.At(f))
		}
	}
	m.Emitted[i]++
	rowsEmitted.WithLabelValues(m.plan.Tables[i].Name).Inc()
	m.open = false
	m.partials = nil
	return m.emit(TaggedRow{Index: i, Row: row})
}
