package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/irkit/internal/compiler"
	"github.com/roach88/irkit/internal/dialects"
	"github.com/roach88/irkit/internal/ir"
	"github.com/roach88/irkit/internal/irdl"
	"github.com/roach88/irkit/internal/rewrite"
	"github.com/roach88/irkit/internal/store"
	"github.com/roach88/irkit/internal/testutil"
	"github.com/roach88/irkit/internal/trace"
	"github.com/roach88/irkit/internal/verify"
)

// stepErrors classifies the structural errors a step may expect.
var stepErrors = map[string]func(error) bool{
	StepErrNoParent:        func(err error) bool { return errors.Is(err, rewrite.ErrNoParent) },
	StepErrDanglingUse:     rewrite.IsDanglingUse,
	StepErrArityMismatch:   rewrite.IsArityMismatch,
	StepErrInvalidReplace:  func(err error) bool { return errors.Is(err, rewrite.ErrInvalidReplacement) },
	StepErrAlreadyAttached: func(err error) bool { return errors.Is(err, ir.ErrAlreadyAttached) },
	StepErrUnknownKind:     irdl.IsUnknownKind,
	StepErrSchemaArity:     irdl.IsSchemaArity,
}

// Harness runs one scenario. Every run gets a fresh registry, a fresh
// in-memory journal and a deterministic clock, so repeated runs produce
// identical traces.
type Harness struct {
	prog     *program
	rewriter *rewrite.Rewriter
	recorder *trace.Recorder
	logger   *slog.Logger
}

// Option configures Run.
type Option func(*config)

type config struct {
	logger  *slog.Logger
	journal string
}

// WithLogger sets the logger. Default: logs are discarded.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithJournal records the trace into the SQLite journal at path instead of
// a private in-memory one.
func WithJournal(path string) Option {
	return func(c *config) { c.journal = path }
}

// Run executes a scenario and returns its result. The error is non-nil
// only when the scenario cannot be set up: its dialects fail to load or
// its initial operations fail to build. Step and assertion failures are
// reported in the Result.
func Run(ctx context.Context, sc *Scenario, opts ...Option) (*Result, error) {
	cfg := config{logger: testutil.DiscardLogger(), journal: ":memory:"}
	for _, opt := range opts {
		opt(&cfg)
	}

	var specs []*compiler.DialectSpec
	for _, path := range sc.Dialects {
		loaded, err := compiler.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load dialects %s: %w", path, err)
		}
		specs = append(specs, loaded...)
	}
	reg, err := dialects.NewRegistry(specs, irdl.WithRegistryLogger(cfg.logger))
	if err != nil {
		return nil, fmt.Errorf("register dialects: %w", err)
	}

	prog, err := newProgram(reg, sc.Args)
	if err != nil {
		return nil, err
	}
	for i, d := range sc.Ops {
		op, err := prog.build(d)
		if err != nil {
			return nil, fmt.Errorf("ops[%d]: %w", i, err)
		}
		if err := prog.block.AppendOperation(op); err != nil {
			return nil, fmt.Errorf("ops[%d]: %w", i, err)
		}
	}

	rec := trace.NewRecorder(sc.Name,
		trace.WithClock(testutil.NewDeterministicClock()),
		trace.WithIDGenerator(testutil.NewFixedSessionGenerator(sc.Session)),
		trace.WithLogger(cfg.logger))
	h := &Harness{
		prog:     prog,
		rewriter: rewrite.New(rewrite.WithLogger(cfg.logger), rewrite.WithListener(rec)),
		recorder: rec,
		logger:   cfg.logger,
	}

	result := NewResult()
	result.Session = rec.Session().ID
	for i, step := range sc.Steps {
		if err := h.runStep(step); err != nil {
			result.AddError(fmt.Sprintf("steps[%d]: %v", i, err))
		}
	}
	result.Order = prog.order()

	diags, err := verify.Run(ctx, reg, prog.module, verify.WithLogger(cfg.logger))
	if err != nil {
		return nil, err
	}
	for _, d := range diags {
		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			Op:      prog.name(d.Op),
			Kind:    d.Op.Name(),
			Message: d.Message,
		})
	}

	if result.Trace, err = h.journal(ctx, cfg.journal); err != nil {
		return nil, err
	}

	for _, msg := range h.evaluate(result, sc.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// runStep applies one step. A step that expects an error must fail with
// that error and leave the block untouched.
func (h *Harness) runStep(step Step) error {
	before := h.prog.block.Operations()

	err := h.apply(step)
	switch {
	case step.Error == "" && err != nil:
		return err
	case step.Error == "":
		return nil
	case err == nil:
		return fmt.Errorf("expected %s error, got success", step.Error)
	}
	if is, ok := stepErrors[step.Error]; !ok || !is(err) {
		return fmt.Errorf("expected %s error, got: %v", step.Error, err)
	}

	if after := h.prog.block.Operations(); !slices.Equal(before, after) {
		return fmt.Errorf("failed step changed the block: %v", h.prog.order())
	}
	h.logger.Debug("step failed as expected", "error", err)
	return nil
}

func (h *Harness) apply(step Step) error {
	if step.Erase != "" {
		var opts []rewrite.EraseOption
		if step.Unsafe {
			opts = append(opts, rewrite.Unsafe())
		}
		op, err := h.op(step.Erase)
		if err != nil {
			return err
		}
		return h.rewriter.EraseOp(op, opts...)
	}

	target, err := h.op(step.Replace)
	if err != nil {
		return err
	}

	var built []*ir.Operation
	newOps := make([]*ir.Operation, 0, len(step.With))
	for _, d := range step.With {
		if d.Kind == "" {
			op, err := h.op(d.ID)
			if err != nil {
				h.forget(built)
				return err
			}
			newOps = append(newOps, op)
			continue
		}
		op, err := h.prog.build(d)
		if err != nil {
			h.forget(built)
			return err
		}
		built = append(built, op)
		newOps = append(newOps, op)
	}

	var opts []rewrite.ReplaceOption
	if step.Unsafe {
		opts = append(opts, rewrite.UnsafeErase())
	}
	if step.Results != nil {
		vals := make([]*ir.Value, len(step.Results))
		for i, ref := range step.Results {
			if ref == nil {
				continue
			}
			v, err := h.prog.value(*ref)
			if err != nil {
				h.forget(built)
				return err
			}
			vals[i] = v
		}
		opts = append(opts, rewrite.WithNewResults(vals...))
	}

	if err := h.rewriter.ReplaceOp(target, newOps, opts...); err != nil {
		h.forget(built)
		return err
	}
	return nil
}

func (h *Harness) op(id string) (*ir.Operation, error) {
	op, ok := h.prog.ops[id]
	if !ok {
		return nil, fmt.Errorf("op %q does not exist", id)
	}
	return op, nil
}

func (h *Harness) forget(ops []*ir.Operation) {
	for _, op := range ops {
		h.prog.forget(op)
	}
}

// journal flushes the recorder into the SQLite journal at path and reads
// the session back.
func (h *Harness) journal(ctx context.Context, path string) ([]TraceEvent, error) {
	st, err := store.Open(path, store.WithLogger(h.logger))
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer st.Close()

	if err := h.recorder.Flush(ctx, st); err != nil {
		return nil, fmt.Errorf("flush journal: %w", err)
	}
	events, err := st.ReadEvents(ctx, h.recorder.Session().ID)
	if err != nil {
		return nil, err
	}

	out := make([]TraceEvent, len(events))
	for i, ev := range events {
		newOps := make([]string, len(ev.NewOps))
		for j, n := range ev.NewOps {
			newOps[j] = n.Name
		}
		out[i] = TraceEvent{
			Seq:    ev.Seq,
			Kind:   string(ev.Kind),
			Op:     ev.Op.Name,
			Index:  ev.Index,
			NewOps: newOps,
			Unsafe: ev.Unsafe,
		}
	}
	return out, nil
}
