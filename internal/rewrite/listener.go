package rewrite

import "github.com/roach88/irkit/internal/ir"

// EraseEvent describes a completed EraseOp.
type EraseEvent struct {
	Op     *ir.Operation
	Block  *ir.Block
	Index  int
	Unsafe bool
}

// ReplaceEvent describes a completed ReplaceOp. NewOps occupy
// Block[Index : Index+len(NewOps)].
type ReplaceEvent struct {
	Op     *ir.Operation
	NewOps []*ir.Operation
	Block  *ir.Block
	Index  int
	Unsafe bool
}

// Listener observes successful mutations. Failed calls are not reported.
// Callbacks run synchronously after the graph has been updated.
type Listener interface {
	OperationErased(ev EraseEvent)
	OperationReplaced(ev ReplaceEvent)
}

// Listeners fans events out to several listeners in order.
type Listeners []Listener

func (ls Listeners) OperationErased(ev EraseEvent) {
	for _, l := range ls {
		l.OperationErased(ev)
	}
}

func (ls Listeners) OperationReplaced(ev ReplaceEvent) {
	for _, l := range ls {
		l.OperationReplaced(ev)
	}
}
