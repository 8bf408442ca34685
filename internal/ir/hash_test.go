package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpFingerprintStable(t *testing.T) {
	b := NewBlock(tyA, tyA)
	mk := func(x *Value) *Operation {
		op, err := NewOperation(OperationState{
			Name:        "test.fp",
			Operands:    []*Value{x},
			ResultTypes: []Attribute{tyB},
			Attributes:  map[string]Attribute{"k": IntAttr(1)},
		})
		require.NoError(t, err)
		return op
	}

	// Operand identity does not matter, only operand types.
	fp1 := MustOpFingerprint(mk(b.Arg(0)))
	fp2 := MustOpFingerprint(mk(b.Arg(1)))
	assert.Equal(t, fp1, fp2)
	assert.Len(t, fp1, 64)
}

func TestOpFingerprintDiffers(t *testing.T) {
	base := newOp(t, "test.fp", nil, tyA)
	other := newOp(t, "test.fp", nil, tyB)
	renamed := newOp(t, "test.other", nil, tyA)

	attributed := newOp(t, "test.fp", nil, tyA)
	attributed.SetAttr("k", BoolAttr(true))

	fp := MustOpFingerprint(base)
	assert.NotEqual(t, fp, MustOpFingerprint(other))
	assert.NotEqual(t, fp, MustOpFingerprint(renamed))
	assert.NotEqual(t, fp, MustOpFingerprint(attributed))
}

func TestAttrFingerprintDomainSeparated(t *testing.T) {
	a, err := AttrFingerprint(StringAttr("x"))
	require.NoError(t, err)

	// Same bytes under a different domain must not collide.
	assert.NotEqual(t, hashWithDomain(DomainOperation, []byte(`"x"`)), a)
	assert.Equal(t, hashWithDomain(DomainAttribute, []byte(`"x"`)), a)
}
