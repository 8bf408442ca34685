package irdl

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/irkit/internal/ir"
)

// Tests use string attributes as stand-in types.
var (
	i32 = ir.StringAttr("i32")
	f32 = ir.StringAttr("f32")
)

func addDef(opts ...OpOption) *OpDef {
	base := []OpOption{
		WithOperands(
			OperandDef{Name: "lhs", Constraint: Eq(i32)},
			OperandDef{Name: "rhs", Constraint: Eq(i32)},
		),
		WithResults(ResultDef{Name: "res", Constraint: Eq(i32)}),
	}
	return NewOpDef("test.add", append(base, opts...)...)
}

func concatDef() *OpDef {
	return NewOpDef("test.concat",
		WithOperands(
			OperandDef{Name: "head"},
			OperandDef{Name: "rest", Variadic: true},
		),
		WithResults(ResultDef{Name: "out"}),
		WithAttributes(
			AttrDef{Name: "label", Constraint: Base[ir.StringAttr]("string")},
			AttrDef{Name: "weight", Constraint: Base[ir.IntAttr]("int"), Optional: true},
		),
	)
}

func TestBuildSlotShapes(t *testing.T) {
	blk := ir.NewBlock(i32, i32, i32)
	a, b, c := blk.Arg(0), blk.Arg(1), blk.Arg(2)

	tests := []struct {
		name     string
		operands []OperandArg
		results  []ResultArg
		wantSlot string
	}{
		{
			name:     "variadic empty",
			operands: []OperandArg{Single(a), Variadic()},
			results:  []ResultArg{Type(i32)},
		},
		{
			name:     "variadic many",
			operands: []OperandArg{Single(a), Variadic(b, c)},
			results:  []ResultArg{Type(i32)},
		},
		{
			name:     "single slot given two",
			operands: []OperandArg{Variadic(a, b), Variadic()},
			results:  []ResultArg{Type(i32)},
			wantSlot: "operand head",
		},
		{
			name:     "missing slot",
			operands: []OperandArg{Single(a)},
			results:  []ResultArg{Type(i32)},
			wantSlot: "operands",
		},
		{
			name:     "single result given none",
			operands: []OperandArg{Single(a), Variadic()},
			results:  []ResultArg{Types()},
			wantSlot: "result out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := concatDef().Build(tt.operands, tt.results, map[string]ir.Attribute{"label": ir.StringAttr("x")})
			if tt.wantSlot == "" {
				require.NoError(t, err)
				assert.Equal(t, "test.concat", op.Name())
				assert.Nil(t, op.Parent())
				return
			}
			require.Error(t, err)
			assert.True(t, IsSchemaArity(err))
			var se *SchemaArityError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.wantSlot, se.Slot)
			assert.Equal(t, "test.concat", se.Kind)
		})
	}
}

func TestBuildRecordsUsesAndSegments(t *testing.T) {
	blk := ir.NewBlock(i32, i32, i32)
	a, b, c := blk.Arg(0), blk.Arg(1), blk.Arg(2)

	def := concatDef()
	op, err := def.Build([]OperandArg{Single(a), Variadic(b, c)}, []ResultArg{Type(i32)}, nil)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, op.OperandSegmentSizes())
	assert.Equal(t, a, def.Operand(op, "head"))
	assert.Equal(t, []*ir.Value{b, c}, def.OperandGroup(op, "rest"))
	assert.Equal(t, op.Result(0), def.Result(op, "out"))
	assert.Equal(t, 1, b.NumUses())
	assert.Equal(t, []ir.Use{{Op: op, Index: 1}}, b.Uses())
}

func TestBuildAcceptsSingleResultOperation(t *testing.T) {
	blk := ir.NewBlock(i32, i32)
	def := addDef()

	first, err := def.Build([]OperandArg{Single(blk.Arg(0)), Single(blk.Arg(1))}, []ResultArg{Type(i32)}, nil)
	require.NoError(t, err)

	second, err := def.Build([]OperandArg{Single(first), Single(blk.Arg(1))}, []ResultArg{Type(i32)}, nil)
	require.NoError(t, err)
	assert.Equal(t, first.Result(0), second.Operand(0))
}

func TestBuildRejectsMultiResultProducer(t *testing.T) {
	two := NewOpDef("test.pair", WithResults(ResultDef{Name: "a"}, ResultDef{Name: "b"}))
	pair, err := two.Build(nil, []ResultArg{Type(i32), Type(i32)}, nil)
	require.NoError(t, err)

	blk := ir.NewBlock(i32)
	_, err = addDef().Build([]OperandArg{Single(pair), Single(blk.Arg(0))}, []ResultArg{Type(i32)}, nil)
	require.Error(t, err)
	assert.True(t, IsSchemaArity(err))
	assert.ErrorIs(t, err, ir.ErrNotSingleResult)
}

func TestBuildDoesNotVerify(t *testing.T) {
	blk := ir.NewBlock(f32, f32)
	op, err := addDef().Build([]OperandArg{Single(blk.Arg(0)), Single(blk.Arg(1))}, []ResultArg{Type(f32)}, nil)
	require.NoError(t, err)
	require.NotNil(t, op)

	err = addDef().Verify(op)
	require.Error(t, err)
}

func TestVerifyGenericChecks(t *testing.T) {
	blk := ir.NewBlock(i32, f32)
	i, f := blk.Arg(0), blk.Arg(1)

	tests := []struct {
		name    string
		build   func(t *testing.T) *ir.Operation
		def     *OpDef
		wantMsg string
	}{
		{
			name: "valid",
			def:  addDef(),
			build: func(t *testing.T) *ir.Operation {
				op, err := addDef().Build([]OperandArg{Single(i), Single(i)}, []ResultArg{Type(i32)}, nil)
				require.NoError(t, err)
				return op
			},
		},
		{
			name: "operand constraint",
			def:  addDef(),
			build: func(t *testing.T) *ir.Operation {
				op, err := addDef().Build([]OperandArg{Single(i), Single(f)}, []ResultArg{Type(i32)}, nil)
				require.NoError(t, err)
				return op
			},
			wantMsg: `operand "rhs" #0: expected "i32", got "f32"`,
		},
		{
			name: "result constraint",
			def:  addDef(),
			build: func(t *testing.T) *ir.Operation {
				op, err := addDef().Build([]OperandArg{Single(i), Single(i)}, []ResultArg{Type(f32)}, nil)
				require.NoError(t, err)
				return op
			},
			wantMsg: `result "res" #0: expected "i32", got "f32"`,
		},
		{
			name: "kind mismatch",
			def:  addDef(),
			build: func(t *testing.T) *ir.Operation {
				op, err := ir.NewOperation(ir.OperationState{Name: "test.other"})
				require.NoError(t, err)
				return op
			},
			wantMsg: "operation kind test.other does not match schema test.add",
		},
		{
			name: "segment layout",
			def:  addDef(),
			build: func(t *testing.T) *ir.Operation {
				op, err := ir.NewOperation(ir.OperationState{
					Name:        "test.add",
					Operands:    []*ir.Value{i},
					ResultTypes: []ir.Attribute{i32},
				})
				require.NoError(t, err)
				return op
			},
			wantMsg: "expected 2 operand slots, got 1",
		},
		{
			name: "missing attribute",
			def:  concatDef(),
			build: func(t *testing.T) *ir.Operation {
				op, err := concatDef().Build([]OperandArg{Single(i), Variadic()}, []ResultArg{Type(i32)}, nil)
				require.NoError(t, err)
				return op
			},
			wantMsg: `missing required attribute "label"`,
		},
		{
			name: "attribute constraint",
			def:  concatDef(),
			build: func(t *testing.T) *ir.Operation {
				op, err := concatDef().Build([]OperandArg{Single(i), Variadic()}, []ResultArg{Type(i32)},
					map[string]ir.Attribute{"label": ir.StringAttr("x"), "weight": ir.BoolAttr(true)})
				require.NoError(t, err)
				return op
			},
			wantMsg: `attribute "weight": expected int, got true`,
		},
		{
			name: "region count",
			def:  addDef(WithRegions(1)),
			build: func(t *testing.T) *ir.Operation {
				op, err := addDef().Build([]OperandArg{Single(i), Single(i)}, []ResultArg{Type(i32)}, nil)
				require.NoError(t, err)
				return op
			},
			wantMsg: "expected 1 regions, got 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := tt.build(t)
			err := tt.def.Verify(op)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			ve, ok := AsVerifyError(err)
			require.True(t, ok, "want *VerifyError, got %v", err)
			assert.Equal(t, tt.wantMsg, ve.Message)
			assert.Same(t, op, ve.Op)
		})
	}
}

func TestVerifyRunsHookAfterGenericChecks(t *testing.T) {
	called := 0
	def := addDef(WithVerifier(func(op *ir.Operation) error {
		called++
		return fmt.Errorf("lhs must differ from rhs")
	}))

	blk := ir.NewBlock(i32, f32)
	bad, err := def.Build([]OperandArg{Single(blk.Arg(1)), Single(blk.Arg(0))}, []ResultArg{Type(i32)}, nil)
	require.NoError(t, err)
	require.Error(t, def.Verify(bad))
	assert.Equal(t, 0, called, "hook must not run on a malformed op")

	good, err := def.Build([]OperandArg{Single(blk.Arg(0)), Single(blk.Arg(0))}, []ResultArg{Type(i32)}, nil)
	require.NoError(t, err)
	err = def.Verify(good)
	assert.Equal(t, 1, called)

	ve, ok := AsVerifyError(err)
	require.True(t, ok)
	assert.Equal(t, "lhs must differ from rhs", ve.Message)
	assert.Equal(t, "test.add: lhs must differ from rhs", ve.Error())
	assert.Same(t, good, ve.Op)
}

func TestVerifyHookVerifyErrorPassesThrough(t *testing.T) {
	def := addDef(WithVerifier(func(op *ir.Operation) error {
		return &VerifyError{Message: "custom"}
	}))
	blk := ir.NewBlock(i32)
	op, err := def.Build([]OperandArg{Single(blk.Arg(0)), Single(blk.Arg(0))}, []ResultArg{Type(i32)}, nil)
	require.NoError(t, err)

	ve, ok := AsVerifyError(def.Verify(op))
	require.True(t, ok)
	assert.Equal(t, "custom", ve.Message)
	assert.Same(t, op, ve.Op)
}

func TestSlotAccessorsPanicOnUnknownName(t *testing.T) {
	def := addDef()
	blk := ir.NewBlock(i32)
	op, err := def.Build([]OperandArg{Single(blk.Arg(0)), Single(blk.Arg(0))}, []ResultArg{Type(i32)}, nil)
	require.NoError(t, err)

	assert.Panics(t, func() { def.Operand(op, "nope") })
	assert.Panics(t, func() { def.Result(op, "nope") })
}

func TestConstraints(t *testing.T) {
	tests := []struct {
		name string
		c    Constraint
		in   ir.Attribute
		ok   bool
	}{
		{"any accepts", AnyAttr(), i32, true},
		{"any rejects nil", AnyAttr(), nil, false},
		{"base accepts kind", Base[ir.StringAttr]("string"), f32, true},
		{"base rejects other kind", Base[ir.StringAttr]("string"), ir.IntAttr(1), false},
		{"eq accepts equal", Eq(i32), ir.StringAttr("i32"), true},
		{"eq rejects", Eq(i32), f32, false},
		{"anyof accepts second", AnyOf(Eq(i32), Eq(f32)), f32, true},
		{"anyof rejects", AnyOf(Eq(i32), Eq(f32)), ir.StringAttr("i1"), false},
		{"predicate", Predicate("positive", func(a ir.Attribute) bool {
			v, ok := a.(ir.IntAttr)
			return ok && v > 0
		}), ir.IntAttr(3), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Verify(tt.in)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}

	assert.Equal(t, `one of ["i32", "f32"]`, AnyOf(Eq(i32), Eq(f32)).String())
}

func TestTraits(t *testing.T) {
	blk := ir.NewBlock(i32, f32)
	i, f := blk.Arg(0), blk.Arg(1)

	same := NewOpDef("test.same",
		WithOperands(OperandDef{Name: "a"}, OperandDef{Name: "b"}),
		WithResults(ResultDef{Name: "r"}),
		WithTraits(SameOperandsAndResultType()),
	)

	ok, err := same.Build([]OperandArg{Single(i), Single(i)}, []ResultArg{Type(i32)}, nil)
	require.NoError(t, err)
	assert.NoError(t, same.Verify(ok))

	bad, err := same.Build([]OperandArg{Single(i), Single(f)}, []ResultArg{Type(i32)}, nil)
	require.NoError(t, err)
	ve, isVE := AsVerifyError(same.Verify(bad))
	require.True(t, isVE)
	assert.Contains(t, ve.Message, "SameOperandsAndResultType")

	tr, found := TraitByName("SameOperandsElementType")
	require.True(t, found)
	assert.Equal(t, "SameOperandsElementType", tr.Name())
	_, found = TraitByName("NoSuchTrait")
	assert.False(t, found)
}

func testDialect() Dialect {
	return Dialect{
		Name: "test",
		Ops:  []*OpDef{addDef(), concatDef()},
		Types: []TypeDef{
			{Name: "test.str", Constraint: Base[ir.StringAttr]("string")},
		},
	}
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterDialect(testDialect()))
	r.Freeze()

	def, err := r.LookupOp("test.add")
	require.NoError(t, err)
	assert.Equal(t, "test.add", def.Name())
	assert.Equal(t, "test", def.Dialect())

	td, err := r.LookupType("test.str")
	require.NoError(t, err)
	assert.NoError(t, td.Constraint.Verify(i32))

	_, err = r.LookupOp("test.missing")
	require.Error(t, err)
	assert.True(t, IsUnknownKind(err))
	assert.EqualError(t, err, `unknown kind "test.missing"`)

	_, err = r.LookupType("other.t")
	assert.True(t, IsUnknownKind(err))

	assert.Equal(t, []string{"test"}, r.Dialects())
	ops := r.Ops()
	require.Len(t, ops, 2)
	assert.Equal(t, "test.add", ops[0].Name())
	assert.Equal(t, "test.concat", ops[1].Name())
}

func TestRegistryRejects(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(r *Registry)
		dialect Dialect
		wantErr error
	}{
		{
			name:    "duplicate dialect",
			setup:   func(r *Registry) { require.NoError(t, r.RegisterDialect(testDialect())) },
			dialect: Dialect{Name: "test"},
			wantErr: ErrDuplicateKind,
		},
		{
			name:    "duplicate op within dialect",
			dialect: Dialect{Name: "test", Ops: []*OpDef{addDef(), addDef()}},
			wantErr: ErrDuplicateKind,
		},
		{
			name:    "unqualified op name",
			dialect: Dialect{Name: "test", Ops: []*OpDef{NewOpDef("add")}},
			wantErr: ErrInvalidKindName,
		},
		{
			name:    "op in foreign dialect",
			dialect: Dialect{Name: "test", Ops: []*OpDef{NewOpDef("other.add")}},
			wantErr: ErrInvalidKindName,
		},
		{
			name:    "empty dialect name",
			dialect: Dialect{},
			wantErr: ErrInvalidKindName,
		},
		{
			name:    "frozen",
			setup:   func(r *Registry) { r.Freeze() },
			dialect: testDialect(),
			wantErr: ErrRegistryFrozen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			if tt.setup != nil {
				tt.setup(r)
			}
			err := r.RegisterDialect(tt.dialect)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRegistryRegistrationIsAtomic(t *testing.T) {
	r := NewRegistry()
	err := r.RegisterDialect(Dialect{
		Name: "test",
		Ops:  []*OpDef{addDef(), NewOpDef("bad")},
	})
	require.Error(t, err)

	_, err = r.LookupOp("test.add")
	assert.True(t, IsUnknownKind(err))
	assert.Empty(t, r.Dialects())
}

func TestRegistryBuildAndVerify(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterDialect(testDialect()))
	r.Freeze()
	assert.True(t, r.Frozen())

	blk := ir.NewBlock(i32)
	op, err := r.Build("test.add", []OperandArg{Single(blk.Arg(0)), Single(blk.Arg(0))}, []ResultArg{Type(i32)}, nil)
	require.NoError(t, err)
	assert.NoError(t, r.Verify(op))

	_, err = r.Build("test.nope", nil, nil, nil)
	assert.True(t, IsUnknownKind(err))

	stray, err := ir.NewOperation(ir.OperationState{Name: "test.nope"})
	require.NoError(t, err)
	err = r.Verify(stray)
	assert.True(t, IsUnknownKind(err))
	_, isVE := AsVerifyError(err)
	assert.False(t, isVE)
}
