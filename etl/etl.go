// Package etl implements the tagged multi-output aggregation engine.
//
// Heterogeneous output tables share one grouped shuffle: the map stage tags
// each emission with its output-table index and aggregate index, the
// combiner opportunistically merges partial aggregate states that share a
// tagged key, and the final merge stage assembles and finalizes all of a
// key's aggregate columns into one output record before the stream is
// demultiplexed back into per-table outputs.
package etl

import (
	"encoding/binary"
	"math"

	"github.com/exhibitdata/exhibit"
	"github.com/zeebo/xxh3"
)

// TaggedKey pairs an output table index with that table's grouping key.
// Two tagged keys are equal iff the index and every key field are equal.
type TaggedKey struct {
	Index int
	Key   *exhibit.Record
}

func (k TaggedKey) Equal(other TaggedKey) bool {
	return k.Index == other.Index && k.Key.Equal(other.Key)
}

// Hash routes all emissions for one tagged key to one partition.
func (k TaggedKey) Hash() uint64 {
	return xxh3.Hash(k.appendEncoding(nil))
}

// appendEncoding appends a canonical byte encoding of the tagged key.  The
// encoding only needs to be injective, not ordered; ordering comes from
// CompareKV.
func (k TaggedKey) appendEncoding(b []byte) []byte {
	b = binary.AppendVarint(b, int64(k.Index))
	for _, v := range k.Key.Values {
		switch v := v.(type) {
		case nil:
			b = append(b, 0)
		case bool:
			b = append(b, 1)
			if v {
				b = append(b, 1)
			} else {
				b = append(b, 0)
			}
		case int64:
			b = append(b, 2)
			b = binary.AppendVarint(b, v)
		case float64:
			b = append(b, 3)
			b = binary.LittleEndian.AppendUint64(b, math.Float64bits(v))
		case string:
			b = append(b, 4)
			b = binary.AppendUvarint(b, uint64(len(v)))
			b = append(b, v...)
		}
	}
	return b
}

// TaggedValue pairs an aggregate's table-relative index with its partial
// state.  Agg is -1 for the key-only emissions of tables configured with no
// aggregates.
type TaggedValue struct {
	Agg     int
	Partial *exhibit.Record
}

// KV is one map-stage emission headed into the grouped shuffle.
type KV struct {
	Key   TaggedKey
	Value TaggedValue
}

// TaggedRow is one finalized output record tagged with its table index.
type TaggedRow struct {
	Index int
	Row   *exhibit.Record
}

// CompareKV is the composite comparator the shuffle sorts with: primary is
// the tagged key (table index, then key fields), secondary the aggregate
// index, so one logical row's aggregate states arrive contiguously at the
// final merge stage.
func CompareKV(a, b KV) int {
	if c := a.Key.Index - b.Key.Index; c != 0 {
		return c
	}
	if c := exhibit.CompareRecords(a.Key.Key, b.Key.Key); c != 0 {
		return c
	}
	return a.Value.Agg - b.Value.Agg
}
