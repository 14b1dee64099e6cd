// Package shuffle is the local grouped-shuffle substrate.  Emissions are
// hash-partitioned so everything sharing a key lands in one partition, then
// each partition is sorted with the caller's composite comparator so that
// records sharing a key are contiguous when the partition is reduced.
// Partitions are reduced in parallel; each reduction sees its partition's
// records strictly in sorted order.
package shuffle

import (
	"context"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
)

type Shuffle[T any] struct {
	hash func(T) uint64
	cmp  func(a, b T) int

	mu    sync.Mutex
	parts [][]T
}

// New returns a shuffle with nparts partitions.  hash must route all values
// of one key to the same partition; cmp must make equal keys adjacent.
func New[T any](nparts int, hash func(T) uint64, cmp func(a, b T) int) *Shuffle[T] {
	if nparts < 1 {
		nparts = 1
	}
	return &Shuffle[T]{
		hash:  hash,
		cmp:   cmp,
		parts: make([][]T, nparts),
	}
}

// Scatter routes a batch of emissions to their partitions.  It is safe for
// concurrent use by parallel map workers.
func (s *Shuffle[T]) Scatter(vals []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := uint64(len(s.parts))
	for _, v := range vals {
		p := s.hash(v) % n
		s.parts[p] = append(s.parts[p], v)
	}
}

// Each sorts every partition and calls fn once per partition, in parallel.
// fn owns the sorted slice it is handed.
func (s *Shuffle[T]) Each(ctx context.Context, fn func(part int, vals []T) error) error {
	group, ctx := errgroup.WithContext(ctx)
	for i := range s.parts {
		vals := s.parts[i]
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			slices.SortStableFunc(vals, s.cmp)
			return fn(i, vals)
		})
	}
	return group.Wait()
}
