package ir

import (
	"fmt"
	"slices"
)

// Block owns an ordered sequence of operations and a list of typed block
// arguments. The body order is the only record of relative position; every
// operation in the body points back at this block and carries its current
// index.
type Block struct {
	args   []*Value
	ops    []*Operation
	parent *Region
}

// NewBlock creates a detached block with one argument per type.
func NewBlock(argTypes ...Attribute) *Block {
	b := &Block{}
	for _, t := range argTypes {
		b.AddArg(t)
	}
	return b
}

// AddArg appends a new block argument of type t.
func (b *Block) AddArg(t Attribute) *Value {
	v := defineArgument(b, len(b.args), t)
	b.args = append(b.args, v)
	return v
}

// NumArgs returns the number of block arguments.
func (b *Block) NumArgs() int {
	return len(b.args)
}

// Arg returns block argument i.
func (b *Block) Arg(i int) *Value {
	return b.args[i]
}

// Args returns a copy of the block arguments.
func (b *Block) Args() []*Value {
	return slices.Clone(b.args)
}

// Len returns the number of operations in the body.
func (b *Block) Len() int {
	return len(b.ops)
}

// Operation returns the operation at index i.
func (b *Block) Operation(i int) *Operation {
	return b.ops[i]
}

// Operations returns a copy of the body.
func (b *Block) Operations() []*Operation {
	return slices.Clone(b.ops)
}

// Parent returns the region owning b, or nil.
func (b *Block) Parent() *Region {
	return b.parent
}

// ParentOp returns the operation owning b's region, or nil.
func (b *Block) ParentOp() *Operation {
	if b.parent == nil {
		return nil
	}
	return b.parent.parent
}

// InsertOperation inserts the detached op at index, shifting later
// operations back by one.
func (b *Block) InsertOperation(index int, op *Operation) error {
	if index < 0 || index > len(b.ops) {
		return fmt.Errorf("%w: insert at %d, block has %d operations", ErrIndexOutOfRange, index, len(b.ops))
	}
	if op.parent != nil {
		return fmt.Errorf("%w: %s already belongs to a block", ErrAlreadyAttached, op.name)
	}
	if op.containsBlock(b) {
		return fmt.Errorf("%w: %s would contain its own parent block", ErrAlreadyAttached, op.name)
	}

	b.ops = slices.Insert(b.ops, index, op)
	op.parent = b
	b.renumber(index)
	return nil
}

// AppendOperation inserts op at the end of the body.
func (b *Block) AppendOperation(op *Operation) error {
	return b.InsertOperation(len(b.ops), op)
}

// EraseOperation removes the operation at index and returns it detached.
// Its operands and results are left untouched.
func (b *Block) EraseOperation(index int) (*Operation, error) {
	if index < 0 || index >= len(b.ops) {
		return nil, fmt.Errorf("%w: erase at %d, block has %d operations", ErrIndexOutOfRange, index, len(b.ops))
	}
	op := b.ops[index]
	b.ops = slices.Delete(b.ops, index, index+1)
	op.parent = nil
	op.index = -1
	b.renumber(index)
	return op, nil
}

// IndexOf returns the position of op in this block.
func (b *Block) IndexOf(op *Operation) (int, error) {
	if op == nil || op.parent != b {
		return -1, &NotFoundError{Op: op}
	}
	return op.index, nil
}

func (b *Block) renumber(from int) {
	for i := from; i < len(b.ops); i++ {
		b.ops[i].index = i
	}
}

// containsBlock reports whether b is nested somewhere inside op.
func (op *Operation) containsBlock(b *Block) bool {
	for cur := b.ParentOp(); cur != nil; cur = cur.ParentOp() {
		if cur == op {
			return true
		}
	}
	return false
}

// Region owns an ordered sequence of blocks and belongs to an operation.
type Region struct {
	blocks []*Block
	parent *Operation
}

// NewRegion creates a detached region holding blocks.
// It panics if any block already belongs to a region.
func NewRegion(blocks ...*Block) *Region {
	r := &Region{}
	for _, b := range blocks {
		if err := r.AddBlock(b); err != nil {
			panic(err)
		}
	}
	return r
}

// AddBlock appends a detached block.
func (r *Region) AddBlock(b *Block) error {
	if b.parent != nil {
		return fmt.Errorf("%w: block already belongs to a region", ErrAlreadyAttached)
	}
	b.parent = r
	r.blocks = append(r.blocks, b)
	return nil
}

// Len returns the number of blocks.
func (r *Region) Len() int {
	return len(r.blocks)
}

// Block returns block i.
func (r *Region) Block(i int) *Block {
	return r.blocks[i]
}

// Blocks returns a copy of the block list.
func (r *Region) Blocks() []*Block {
	return slices.Clone(r.blocks)
}

// Parent returns the operation owning r, or nil.
func (r *Region) Parent() *Operation {
	return r.parent
}
