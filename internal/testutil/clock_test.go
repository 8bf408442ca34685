package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/irkit/internal/trace"
)

var _ trace.Sequencer = (*DeterministicClock)(nil)

func TestDeterministicClock(t *testing.T) {
	c := NewDeterministicClock()
	assert.Empty(t, c.Issued())

	for want := int64(1); want <= 3; want++ {
		assert.Equal(t, want, c.Next())
	}
	assert.Equal(t, []int64{1, 2, 3}, c.Issued())

	c.Reset()
	assert.Empty(t, c.Issued())
	assert.Equal(t, int64(1), c.Next(), "numbering restarts after Reset")
}

func TestDeterministicClock_Concurrent(t *testing.T) {
	c := NewDeterministicClock()
	const workers, calls = 20, 50

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[int64]bool)
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range calls {
				v := c.Next()
				mu.Lock()
				seen[v] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, workers*calls)
	require.Len(t, c.Issued(), workers*calls)
	for v := int64(1); v <= workers*calls; v++ {
		assert.True(t, seen[v], "missing %d", v)
	}
}
