// Package verify runs kind verification over a whole operation tree.
package verify

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/irkit/internal/ir"
	"github.com/roach88/irkit/internal/irdl"
)

// errStop cancels the remaining work once fail-fast has a diagnostic.
var errStop = errors.New("verify: stop")

type config struct {
	failFast    bool
	concurrency int
	logger      *slog.Logger
}

// Option configures Run.
type Option func(*config)

// WithFailFast stops at the first failing operation.
func WithFailFast() Option {
	return func(c *config) { c.failFast = true }
}

// WithConcurrency verifies the subtrees of the root's top-level operations
// on up to n goroutines. n <= 1 verifies sequentially, and so does
// WithFailFast, which must report the first failure in pre-order.
func WithConcurrency(n int) Option {
	return func(c *config) { c.concurrency = n }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// Run verifies root and every operation nested in it against reg and
// returns one diagnostic per failing operation, in pre-order. An operation
// whose kind is not registered yields a diagnostic wrapping
// *irdl.UnknownKindError.
//
// Verification only reads the graph, so concurrent subtrees are safe as
// long as nothing mutates the graph during the call. The returned error is
// non-nil only when ctx is done; the diagnostics found so far are returned
// alongside it.
func Run(ctx context.Context, reg *irdl.Registry, root *ir.Operation, opts ...Option) ([]*irdl.VerifyError, error) {
	cfg := config{concurrency: 1, logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	w := walker{reg: reg, failFast: cfg.failFast}

	var diags []*irdl.VerifyError
	if err := w.check(ctx, root, &diags); err != nil {
		return finish(cfg, diags, err)
	}

	var tops []*ir.Operation
	for _, r := range root.Regions() {
		for _, b := range r.Blocks() {
			tops = append(tops, b.Operations()...)
		}
	}

	if cfg.concurrency <= 1 || cfg.failFast {
		for _, op := range tops {
			if err := w.walk(ctx, op, &diags); err != nil {
				return finish(cfg, diags, err)
			}
		}
		return finish(cfg, diags, nil)
	}

	perOp := make([][]*irdl.VerifyError, len(tops))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.concurrency)
	for i, op := range tops {
		g.Go(func() error {
			return w.walk(gctx, op, &perOp[i])
		})
	}
	err := g.Wait()
	for _, d := range perOp {
		diags = append(diags, d...)
	}
	return finish(cfg, diags, err)
}

func finish(cfg config, diags []*irdl.VerifyError, err error) ([]*irdl.VerifyError, error) {
	if cfg.failFast && len(diags) > 1 {
		diags = diags[:1]
	}
	if errors.Is(err, errStop) {
		err = nil
	}
	cfg.logger.Debug("verification finished",
		"diagnostics", len(diags),
		"fail_fast", cfg.failFast,
		"concurrency", cfg.concurrency)
	return diags, err
}

type walker struct {
	reg      *irdl.Registry
	failFast bool
}

// walk verifies op and its nested operations in pre-order.
func (w walker) walk(ctx context.Context, op *ir.Operation, out *[]*irdl.VerifyError) error {
	if err := w.check(ctx, op, out); err != nil {
		return err
	}
	for _, r := range op.Regions() {
		for _, b := range r.Blocks() {
			for _, nested := range b.Operations() {
				if err := w.walk(ctx, nested, out); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (w walker) check(ctx context.Context, op *ir.Operation, out *[]*irdl.VerifyError) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := w.reg.Verify(op); err != nil {
		*out = append(*out, irdl.ToVerifyError(op, err))
		if w.failFast {
			return errStop
		}
	}
	return nil
}
