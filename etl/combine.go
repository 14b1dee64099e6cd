package etl

import (
	"github.com/exhibitdata/exhibit/etl/tbl"
)

// Combiner folds partial aggregate states that share a tagged key and
// aggregate index.  It is an optimization applied before the final grouped
// pass: because every aggregate's Merge is associative and null-neutral,
// the combiner may run zero or many times over arbitrary contiguous
// sub-ranges of a group without changing the finalized result.
type Combiner struct {
	bound [][]tbl.Bound
}

func NewCombiner(plan *Plan) (*Combiner, error) {
	c := &Combiner{bound: make([][]tbl.Bound, len(plan.Tables))}
	for i, tp := range plan.Tables {
		for _, t := range tp.Tbls {
			bound, err := t.Bind(plan.Descriptor)
			if err != nil {
				return nil, err
			}
			c.bound[i] = append(c.bound[i], bound)
		}
	}
	return c, nil
}

// Combine reduces a run of emissions sorted by CompareKV, merging adjacent
// emissions with equal tagged key and aggregate index into one.  It emits
// one KV per distinct (key, aggregate) pair observed and never finalizes.
func (c *Combiner) Combine(kvs []KV) []KV {
	out := kvs[:0]
	for _, kv := range kvs {
		if n := len(out); n > 0 {
			last := &out[n-1]
			if last.Key.Equal(kv.Key) && last.Value.Agg == kv.Value.Agg {
				if kv.Value.Agg >= 0 {
					bound := c.bound[kv.Key.Index][kv.Value.Agg]
					last.Value.Partial = bound.Merge(last.Value.Partial, kv.Value.Partial)
				}
				continue
			}
		}
		out = append(out, kv)
	}
	return out
}
