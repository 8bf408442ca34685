package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// testType is a minimal attribute used as a value type in this package's tests.
type testType string

func (t testType) Equal(other Attribute) bool {
	o, ok := other.(testType)
	return ok && o == t
}

func (t testType) String() string { return string(t) }

const (
	tyA testType = "a"
	tyB testType = "b"
)

// newOp builds a detached op with single-value slots.
func newOp(t *testing.T, name string, operands []*Value, results ...Attribute) *Operation {
	t.Helper()
	op, err := NewOperation(OperationState{
		Name:        name,
		Operands:    operands,
		ResultTypes: results,
	})
	require.NoError(t, err)
	return op
}

// attach appends op to b.
func attach(t *testing.T, b *Block, ops ...*Operation) {
	t.Helper()
	for _, op := range ops {
		require.NoError(t, b.AppendOperation(op))
	}
}
