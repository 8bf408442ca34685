package trace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/roach88/irkit/internal/ir"
	"github.com/roach88/irkit/internal/rewrite"
	"github.com/roach88/irkit/internal/store"
)

// Journal is the write side of the rewrite journal. *store.Store
// implements it.
type Journal interface {
	WriteSession(ctx context.Context, sess store.Session) error
	WriteEvent(ctx context.Context, ev store.Event) error
}

// Recorder is a rewrite.Listener that turns rewrite events into journal
// rows. Events are buffered in memory and written by Flush, so listener
// callbacks never block on I/O.
type Recorder struct {
	clock   Sequencer
	logger  *slog.Logger
	session store.Session

	mu      sync.Mutex
	events  []store.Event
	flushed int
	opened  bool
	err     error
}

var _ rewrite.Listener = (*Recorder)(nil)

// Option configures a Recorder.
type Option func(*recorderConfig)

type recorderConfig struct {
	clock  Sequencer
	ids    IDGenerator
	logger *slog.Logger
}

// WithClock sets the seq source. Sharing one clock between recorders gives
// sessions recorded in the same process disjoint seq ranges.
func WithClock(c Sequencer) Option {
	return func(cfg *recorderConfig) { cfg.clock = c }
}

// WithIDGenerator overrides the UUIDv7 session id generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(cfg *recorderConfig) { cfg.ids = g }
}

// WithLogger sets the logger for recorded events.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *recorderConfig) { cfg.logger = l }
}

// NewRecorder opens a session labelled label. The session id is taken from
// the id generator and its seq from the clock.
func NewRecorder(label string, opts ...Option) *Recorder {
	cfg := recorderConfig{
		ids:    UUIDv7Generator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.clock == nil {
		cfg.clock = NewClock()
	}

	return &Recorder{
		clock:  cfg.clock,
		logger: cfg.logger,
		session: store.Session{
			ID:    cfg.ids.Generate(),
			Label: label,
			Seq:   cfg.clock.Next(),
		},
	}
}

// Session returns the recorded session.
func (r *Recorder) Session() store.Session { return r.session }

// Events returns a copy of every event recorded so far.
func (r *Recorder) Events() []store.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// OperationErased records an erase event.
func (r *Recorder) OperationErased(ev rewrite.EraseEvent) {
	r.record(store.EventErase, ev.Op, nil, ev.Index, ev.Unsafe)
}

// OperationReplaced records a replace event.
func (r *Recorder) OperationReplaced(ev rewrite.ReplaceEvent) {
	r.record(store.EventReplace, ev.Op, ev.NewOps, ev.Index, ev.Unsafe)
}

func (r *Recorder) record(kind store.EventKind, op *ir.Operation, newOps []*ir.Operation, index int, unsafe bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ev := store.Event{
		SessionID: r.session.ID,
		Seq:       r.clock.Next(),
		Kind:      kind,
		Op:        r.opRecord(op),
		Index:     index,
		NewOps:    make([]store.OpRecord, len(newOps)),
		Unsafe:    unsafe,
	}
	for i, n := range newOps {
		ev.NewOps[i] = r.opRecord(n)
	}
	r.events = append(r.events, ev)

	r.logger.Debug("rewrite recorded",
		"session", ev.SessionID,
		"seq", ev.Seq,
		"kind", kind,
		"op", op.Name(),
		"index", index)
}

// opRecord fingerprints op. A fingerprint failure is kept as the
// recorder's error and the row is stored with an empty fingerprint.
// Callers hold r.mu.
func (r *Recorder) opRecord(op *ir.Operation) store.OpRecord {
	fp, err := ir.OpFingerprint(op)
	if err != nil {
		r.err = errors.Join(r.err, err)
	}
	return store.OpRecord{Name: op.Name(), Fingerprint: fp}
}

// Flush writes the session, on first call, and every event recorded since
// the previous Flush. It returns any fingerprinting error seen while
// recording, joined with the first write error.
func (r *Recorder) Flush(ctx context.Context, j Journal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.opened {
		if err := j.WriteSession(ctx, r.session); err != nil {
			return fmt.Errorf("flush session %s: %w", r.session.ID, err)
		}
		r.opened = true
	}
	for r.flushed < len(r.events) {
		if err := ctx.Err(); err != nil {
			return err
		}
		ev := r.events[r.flushed]
		if err := j.WriteEvent(ctx, ev); err != nil {
			return errors.Join(r.err, fmt.Errorf("flush event %d: %w", ev.Seq, err))
		}
		r.flushed++
	}
	return r.err
}
