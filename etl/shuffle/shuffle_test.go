package shuffle_test

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"testing"

	"github.com/exhibitdata/exhibit/etl/shuffle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShuffleGroupsAndSorts(t *testing.T) {
	sh := shuffle.New(4,
		func(v int) uint64 { return uint64(v) },
		cmp.Compare[int])
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var batch []int
			for i := range 100 {
				batch = append(batch, i%10)
			}
			sh.Scatter(batch)
		}()
	}
	wg.Wait()
	var mu sync.Mutex
	var got []int
	seen := map[int]int{}
	err := sh.Each(context.Background(), func(part int, vals []int) error {
		assert.True(t, slices.IsSorted(vals), "partition %d not sorted", part)
		mu.Lock()
		defer mu.Unlock()
		for _, v := range vals {
			// Equal values must all land in one partition.
			if p, ok := seen[v]; ok {
				assert.Equal(t, p, part, "value %d split across partitions", v)
			}
			seen[v] = part
		}
		got = append(got, vals...)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, got, 800)
}

func TestShuffleSinglePartition(t *testing.T) {
	// A partition count below one clamps to one.
	sh := shuffle.New(0,
		func(v string) uint64 { return uint64(len(v)) },
		cmp.Compare[string])
	sh.Scatter([]string{"c", "a", "b"})
	var calls int
	err := sh.Each(context.Background(), func(part int, vals []string) error {
		calls++
		assert.Equal(t, []string{"a", "b", "c"}, vals)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestShuffleEachError(t *testing.T) {
	sh := shuffle.New(2,
		func(v int) uint64 { return uint64(v) },
		cmp.Compare[int])
	sh.Scatter([]int{1, 2, 3, 4})
	err := sh.Each(context.Background(), func(part int, vals []int) error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
}
