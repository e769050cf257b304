package goid

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrent_NonZero(t *testing.T) {
	require.NotZero(t, Current())
}

func TestCurrent_StableWithinGoroutine(t *testing.T) {
	a := Current()
	b := Current()
	require.Equal(t, a, b)
}

func TestCurrent_DistinctAcrossGoroutines(t *testing.T) {
	const n = 32
	ids := make([]int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = Current()
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool, n+1)
	seen[Current()] = true
	for _, id := range ids {
		assert.NotZero(t, id)
		assert.False(t, seen[id], "duplicate goroutine id %d", id)
		seen[id] = true
	}
}

func TestParse_Malformed(t *testing.T) {
	assert.Zero(t, parse(nil))
	assert.Zero(t, parse([]byte("gortn 12")))
	assert.Zero(t, parse([]byte("goroutine x")))
	assert.Equal(t, int64(42), parse([]byte("goroutine 42 [running]:")))
}
