package etl

import (
	"context"
	"slices"
	"sync"

	"github.com/exhibitdata/exhibit"
	"github.com/exhibitdata/exhibit/eio"
	"github.com/exhibitdata/exhibit/eio/anyio"
	"github.com/exhibitdata/exhibit/etl/config"
	"github.com/exhibitdata/exhibit/etl/shuffle"
	"github.com/exhibitdata/exhibit/pkg/storage"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type TableStats struct {
	Table string
	Rows  int64
}

type Stats struct {
	InputRecords int
	KeysSkipped  int64
	Tables       []TableStats
}

// RunCompute runs the multi-output aggregation pipeline: plan, tag, grouped
// shuffle with opportunistic combining, merge/finalize, demux, persist.
func RunCompute(ctx context.Context, cfg *config.Compute, logger *zap.Logger) (*Stats, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Parallelism < 1 {
		cfg.Parallelism = 1
	}
	plan, err := NewPlan(cfg)
	if err != nil {
		return nil, err
	}
	recs, err := readSource(ctx, &cfg.Source)
	if err != nil {
		return nil, err
	}
	logger.Info("source read",
		zap.String("uri", cfg.Source.URI),
		zap.Int("records", len(recs)))
	stats := &Stats{InputRecords: len(recs)}
	sh := shuffle.New(cfg.Parallelism,
		func(kv KV) uint64 { return kv.Key.Hash() },
		CompareKV)
	if err := runMap(ctx, plan, cfg, recs, sh, stats); err != nil {
		return nil, err
	}
	rows := make([][]TaggedRow, cfg.Parallelism)
	err = sh.Each(ctx, func(part int, kvs []KV) error {
		if !cfg.NoCombine {
			combiner, err := NewCombiner(plan)
			if err != nil {
				return err
			}
			kvs = combiner.Combine(kvs)
		}
		merger, err := NewMerger(plan, func(row TaggedRow) error {
			rows[part] = append(rows[part], row)
			return nil
		})
		if err != nil {
			return err
		}
		for _, kv := range kvs {
			if err := merger.Write(kv); err != nil {
				return err
			}
		}
		return merger.Close()
	})
	if err != nil {
		return nil, err
	}
	for _, tp := range plan.Tables {
		n, err := writeTable(ctx, tp, rows)
		if err != nil {
			return nil, err
		}
		logger.Info("output table written",
			zap.String("table", tp.Name),
			zap.String("path", tp.Path),
			zap.Int64("rows", n))
		stats.Tables = append(stats.Tables, TableStats{Table: tp.Name, Rows: n})
	}
	return stats, nil
}

// runMap fans the input over parallel workers.  Each worker constructs its
// own Mapper so aggregate specs are bound per worker, never shared.
func runMap(ctx context.Context, plan *Plan, cfg *config.Compute, recs []*exhibit.Record, sh *shuffle.Shuffle[KV], stats *Stats) error {
	chunkSize := (len(recs) + cfg.Parallelism - 1) / cfg.Parallelism
	if chunkSize == 0 {
		chunkSize = 1
	}
	var mu sync.Mutex
	group, ctx := errgroup.WithContext(ctx)
	for chunk := range slices.Chunk(recs, chunkSize) {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			mapper, err := NewMapper(plan)
			if err != nil {
				return err
			}
			var out []KV
			for _, rec := range chunk {
				e := exhibit.Exhibit{
					plan.Frame: &exhibit.Frame{Schema: rec.Schema, Records: []*exhibit.Record{rec}},
				}
				mapper.Map(e, func(kv KV) { out = append(out, kv) })
			}
			sh.Scatter(out)
			mu.Lock()
			for _, n := range mapper.Skipped {
				stats.KeysSkipped += n
			}
			mu.Unlock()
			return nil
		})
	}
	return group.Wait()
}

func readSource(ctx context.Context, src *config.Source) ([]*exhibit.Record, error) {
	uri, err := storage.ParseURI(src.URI)
	if err != nil {
		return nil, err
	}
	engine, err := storage.NewEngine(uri)
	if err != nil {
		return nil, err
	}
	rc, err := engine.Get(ctx, uri)
	if err != nil {
		return nil, err
	}
	schema, err := src.Schema()
	if err != nil {
		rc.Close()
		return nil, err
	}
	reader, err := anyio.NewReader(rc, schema, sourceFormat(src.Format, uri))
	if err != nil {
		rc.Close()
		return nil, err
	}
	defer reader.Close()
	var recs []*exhibit.Record
	for {
		rec, err := reader.Read()
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return recs, nil
		}
		recs = append(recs, rec)
	}
}

func sourceFormat(format string, uri *storage.URI) string {
	if format != "" {
		return format
	}
	if f := eio.FormatFromPath(uri.Path); f != "" {
		return f
	}
	return "json"
}

// writeTable demultiplexes one table's rows out of the tagged stream and
// persists them per the table's write mode.
func writeTable(ctx context.Context, tp *TablePlan, rows [][]TaggedRow) (int64, error) {
	writer, err := openOutput(ctx, tp.Path, tp.Mode, tp.Format, tp.OutputSchema)
	if err != nil {
		return 0, err
	}
	demux := NewDemux(tp.Index, writer)
	var n int64
	for _, part := range rows {
		for _, row := range part {
			if row.Index == tp.Index {
				n++
			}
			if err := demux.Write(row); err != nil {
				writer.Close()
				return 0, err
			}
		}
	}
	return n, writer.Close()
}

// openOutput opens the destination per the write mode: OVERWRITE deletes an
// existing target and recreates it; APPEND adds a uniquely named part file
// under the target path.
func openOutput(ctx context.Context, path, mode, format string, schema *exhibit.Schema) (eio.WriteCloser, error) {
	uri, err := storage.ParseURI(path)
	if err != nil {
		return nil, err
	}
	engine, err := storage.NewEngine(uri)
	if err != nil {
		return nil, err
	}
	if format == "" {
		format = sourceFormat("", uri)
	}
	target := uri
	switch mode {
	case config.ModeAppend:
		target = uri.JoinPath("part-" + ksuid.New().String() + eio.Extension(format))
	default:
		// The target may be a part-file directory left by earlier append
		// runs, so delete the whole dataset, not one object.  Deleting a
		// missing target is a no-op.
		if err := engine.DeleteByPrefix(ctx, uri); err != nil {
			return nil, err
		}
	}
	w, err := engine.Put(ctx, target)
	if err != nil {
		return nil, err
	}
	return anyio.NewWriter(w, schema, format)
}
