package etl

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/exhibitdata/exhibit"
	"github.com/exhibitdata/exhibit/etl/config"
	"github.com/exhibitdata/exhibit/etl/shuffle"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// buildKV is one keyed emission of the build pipeline: a record tagged with
// the index of the source it came from.
type buildKV struct {
	key *exhibit.Record
	src int
	rec *exhibit.Record
}

// buildPlan resolves the schemas and offsets of a build config: the common
// key schema, the merged output schema, and per-source copy offsets.
type buildPlan struct {
	keySchema *exhibit.Schema
	outSchema *exhibit.Schema
	schemas   []*exhibit.Schema
	// keyOffs[i][k] is the offset of the k-th key field in source i.
	keyOffs [][]int
	// copyTo[i][f] is the output offset of source i's f-th field.
	copyTo [][]int
	keyTo  []int
}

func newBuildPlan(cfg *config.Build) (*buildPlan, error) {
	p := &buildPlan{
		schemas: make([]*exhibit.Schema, len(cfg.Sources)),
		keyOffs: make([][]int, len(cfg.Sources)),
		copyTo:  make([][]int, len(cfg.Sources)),
	}
	var keyFields []exhibit.Field
	for i := range cfg.Sources {
		schema, err := cfg.Sources[i].Schema()
		if err != nil {
			return nil, err
		}
		p.schemas[i] = schema
		for k, name := range cfg.Keys {
			off := schema.IndexOf(name)
			if off < 0 {
				return nil, fmt.Errorf("build: source %s: no key field %q", cfg.Sources[i].URI, name)
			}
			f := schema.Field(off)
			if i == 0 {
				keyFields = append(keyFields, f)
			} else if keyFields[k].Type != f.Type {
				return nil, fmt.Errorf("build: key field %q is %s in source %s but %s in source %s",
					name, keyFields[k].Type, cfg.Sources[0].URI, f.Type, cfg.Sources[i].URI)
			}
			p.keyOffs[i] = append(p.keyOffs[i], off)
		}
	}
	p.keySchema = exhibit.NewSchema(cfg.Name+"_key", keyFields)
	// The merged record carries the key fields once, then every other
	// field of every source.  Duplicate names share a slot; the last
	// record seen for a key wins that slot.
	outFields := make([]exhibit.Field, len(keyFields))
	copy(outFields, keyFields)
	seen := make(map[string]bool)
	for _, f := range keyFields {
		seen[f.Name] = true
	}
	for _, schema := range p.schemas {
		for _, f := range schema.Fields() {
			if !seen[f.Name] {
				seen[f.Name] = true
				outFields = append(outFields, f)
			}
		}
	}
	p.outSchema = exhibit.NewSchema(cfg.Name, outFields)
	for i, schema := range p.schemas {
		for _, f := range schema.Fields() {
			p.copyTo[i] = append(p.copyTo[i], p.outSchema.IndexOf(f.Name))
		}
	}
	for _, f := range keyFields {
		p.keyTo = append(p.keyTo, p.outSchema.IndexOf(f.Name))
	}
	return p, nil
}

// RunBuild unions heterogeneous sources into one merged record per key.
// It shares the compute pipeline's grouped shuffle but performs no
// aggregation: within a group, each source's columns are filled from the
// records seen, last writer per column.
func RunBuild(ctx context.Context, cfg *config.Build, logger *zap.Logger) (*Stats, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Parallelism < 1 {
		cfg.Parallelism = 1
	}
	plan, err := newBuildPlan(cfg)
	if err != nil {
		return nil, err
	}
	sh := shuffle.New(cfg.Parallelism,
		func(kv buildKV) uint64 { return TaggedKey{Key: kv.key}.Hash() },
		func(a, b buildKV) int {
			if c := exhibit.CompareRecords(a.key, b.key); c != 0 {
				return c
			}
			return a.src - b.src
		})
	stats := &Stats{}
	var skipped, total atomic.Int64
	group, gctx := errgroup.WithContext(ctx)
	for i := range cfg.Sources {
		group.Go(func() error {
			recs, err := readSource(gctx, &cfg.Sources[i])
			if err != nil {
				return err
			}
			total.Add(int64(len(recs)))
			var out []buildKV
			for _, rec := range recs {
				key, ok := extractBuildKey(plan, i, rec)
				if !ok {
					skipped.Add(1)
					continue
				}
				out = append(out, buildKV{key: key, src: i, rec: rec})
			}
			sh.Scatter(out)
			logger.Info("source read",
				zap.String("uri", cfg.Sources[i].URI),
				zap.Int("records", len(recs)))
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	stats.InputRecords = int(total.Load())
	stats.KeysSkipped = skipped.Load()
	merged := make([][]*exhibit.Record, cfg.Parallelism)
	var mu sync.Mutex
	err = sh.Each(ctx, func(part int, kvs []buildKV) error {
		out := mergeByKey(plan, kvs)
		mu.Lock()
		merged[part] = out
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	writer, err := openOutput(ctx, cfg.Path, cfg.Mode, cfg.Format, plan.outSchema)
	if err != nil {
		return nil, err
	}
	var rows int64
	for _, part := range merged {
		for _, rec := range part {
			if err := writer.Write(rec); err != nil {
				writer.Close()
				return nil, err
			}
			rows++
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	logger.Info("merged dataset written",
		zap.String("path", cfg.Path),
		zap.Int64("rows", rows))
	stats.Tables = []TableStats{{Table: cfg.Name, Rows: rows}}
	return stats, nil
}

func extractBuildKey(plan *buildPlan, src int, rec *exhibit.Record) (*exhibit.Record, bool) {
	key := exhibit.NewRecord(plan.keySchema)
	for k, off := range plan.keyOffs[src] {
		v := rec.At(off)
		if v == nil {
			return nil, false
		}
		key.Set(k, v)
	}
	return key, true
}

// mergeByKey folds a sorted run of keyed records into one merged record per
// distinct key.
func mergeByKey(plan *buildPlan, kvs []buildKV) []*exhibit.Record {
	var out []*exhibit.Record
	var cur *exhibit.Record
	var curKey *exhibit.Record
	for _, kv := range kvs {
		if curKey == nil || !curKey.Equal(kv.key) {
			cur = exhibit.NewRecord(plan.outSchema)
			for k, off := range plan.keyTo {
				cur.Set(off, kv.key.At(k))
			}
			out = append(out, cur)
			curKey = kv.key
		}
		for f, off := range plan.copyTo[kv.src] {
			if v := kv.rec.At(f); v != nil {
				cur.Set(off, v)
			}
		}
	}
	return out
}
