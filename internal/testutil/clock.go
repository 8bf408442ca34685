package testutil

import (
	"slices"
	"sync"
)

// DeterministicClock is a logical clock for tests that remembers every
// stamp it has issued. It satisfies trace.Sequencer; a fresh clock per run
// gives identical seq values across runs of the same scenario.
type DeterministicClock struct {
	mu     sync.Mutex
	issued []int64
}

// NewDeterministicClock creates a clock whose first Next returns 1.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

// Next issues the next stamp.
func (c *DeterministicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := int64(len(c.issued)) + 1
	c.issued = append(c.issued, n)
	return n
}

// Issued returns the stamps handed out so far, in issue order.
func (c *DeterministicClock) Issued() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.issued)
}

// Reset forgets every issued stamp.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	c.issued = nil
	c.mu.Unlock()
}
