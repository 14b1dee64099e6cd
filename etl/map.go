package etl

import (
	"fmt"

	"github.com/exhibitdata/exhibit"
	"github.com/exhibitdata/exhibit/etl/tbl"
)

// KeyExtractionError reports an observation whose grouping key could not be
// produced.  Such records are skipped and counted, not fatal.
type KeyExtractionError struct {
	Table string
	Field string
}

func (e *KeyExtractionError) Error() string {
	return fmt.Sprintf("output %q: null or missing key field %q", e.Table, e.Field)
}

// Mapper is the tagging map stage.  For each (output table, aggregate)
// pair it wraps the table's grouping key as (table index, key) and the
// aggregate's extracted partial state as (aggregate index, partial),
// emitting one KV per pair per exhibit.  A Mapper binds its aggregate specs
// at construction and is not shared across workers; each worker constructs
// its own.
type Mapper struct {
	plan    *Plan
	bound   [][]tbl.Bound
	keyOffs [][]int

	// Skipped counts exhibits dropped per table due to key extraction
	// failure.
	Skipped []int64
}

func NewMapper(plan *Plan) (*Mapper, error) {
	source, err := plan.Descriptor.Frame(plan.Frame)
	if err != nil {
		return nil, err
	}
	m := &Mapper{
		plan:    plan,
		bound:   make([][]tbl.Bound, len(plan.Tables)),
		keyOffs: make([][]int, len(plan.Tables)),
		Skipped: make([]int64, len(plan.Tables)),
	}
	for i, tp := range plan.Tables {
		for _, name := range tp.Keys {
			m.keyOffs[i] = append(m.keyOffs[i], source.IndexOf(name))
		}
		for _, t := range tp.Tbls {
			bound, err := t.Bind(plan.Descriptor)
			if err != nil {
				return nil, err
			}
			m.bound[i] = append(m.bound[i], bound)
		}
	}
	return m, nil
}

// Map emits the tagged emissions for one exhibit.  Emission order is
// irrelevant; the shuffle orders everything downstream.
func (m *Mapper) Map(e exhibit.Exhibit, emit func(KV)) {
	for i, tp := range m.plan.Tables {
		key, err := m.extractKey(i, e)
		if err != nil {
			m.Skipped[i]++
			keysSkipped.WithLabelValues(tp.Name).Inc()
			continue
		}
		tagged := TaggedKey{Index: i, Key: key}
		if len(m.bound[i]) == 0 {
			// A table with no aggregates still emits its keys so the
			// merge stage produces key-only rows.
			emit(KV{Key: tagged, Value: TaggedValue{Agg: -1}})
			continue
		}
		for j, bound := range m.bound[i] {
			emit(KV{
				Key:   tagged,
				Value: TaggedValue{Agg: j, Partial: bound.Extract(e)},
			})
		}
	}
}

func (m *Mapper) extractKey(i int, e exhibit.Exhibit) (*exhibit.Record, error) {
	tp := m.plan.Tables[i]
	frame := e[m.plan.Frame]
	if frame == nil || len(frame.Records) == 0 {
		return nil, &KeyExtractionError{Table: tp.Name, Field: tp.Keys[0]}
	}
	obs := frame.Records[0]
	key := exhibit.NewRecord(tp.KeySchema)
	for k, off := range m.keyOffs[i] {
		v := obs.At(off)
		if v == nil {
			return nil, &KeyExtractionError{Table: tp.Name, Field: tp.Keys[k]}
		}
		key.Set(k, v)
	}
	return key, nil
}
