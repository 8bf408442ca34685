package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/irkit/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string
	Kind     string // optional - filter to erase or replace events
}

// TraceEvent is one rewrite in the journal timeline.
type TraceEvent struct {
	Seq         int64    `json:"seq"`
	Kind        string   `json:"kind"`
	Op          string   `json:"op"`
	Fingerprint string   `json:"fingerprint"`
	Index       int      `json:"index"`
	NewOps      []string `json:"new_ops"`
	Unsafe      bool     `json:"unsafe"`
}

// TraceStats holds summary statistics for a session.
type TraceStats struct {
	TotalEvents int `json:"total_events"`
	Erasures    int `json:"erasures"`
	Replaces    int `json:"replaces"`
	Unsafe      int `json:"unsafe"`
}

// TraceResult holds the complete trace output for one session.
type TraceResult struct {
	Session  store.Session `json:"session"`
	Timeline []TraceEvent  `json:"timeline"`
	Stats    TraceStats    `json:"stats"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the rewrite journal",
		Long: `Show the rewrites recorded in a journal database.

Without --session every recorded session is listed. With --session the
timeline of that session is shown in logical clock order.

Examples:
  irkit trace --db ./rewrites.db
  irkit trace --db ./rewrites.db --session fold-fma
  irkit trace --db ./rewrites.db --session fold-fma --kind erase --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session id to show")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "filter to erase or replace events")

	return cmd
}

func runTrace(ctx context.Context, opts *TraceOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	switch store.EventKind(opts.Kind) {
	case "", store.EventErase, store.EventReplace:
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid kind %q: must be erase or replace", opts.Kind))
	}

	st, err := store.Open(opts.Database, store.WithLogger(opts.Logger()))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer st.Close()

	if opts.Session == "" {
		sessions, err := st.ListSessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
		if formatter.Format == "json" {
			return formatter.Success(sessions)
		}
		return outputSessionsText(formatter.Writer, sessions)
	}

	sess, err := st.ReadSession(ctx, opts.Session)
	if errors.Is(err, store.ErrSessionNotFound) {
		_ = formatter.Error("E201", fmt.Sprintf("session not found: %s", opts.Session), nil)
		return WrapExitError(ExitFailure, "session not found", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read session", err)
	}

	events, err := st.ReadEvents(ctx, opts.Session)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}

	counts, err := st.CountEvents(ctx, opts.Session)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to count events", err)
	}

	result := TraceResult{
		Session:  sess,
		Timeline: buildTimeline(events, store.EventKind(opts.Kind)),
		Stats:    traceStats(counts, events),
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return outputTraceText(formatter.Writer, result, opts.Verbose)
}

// buildTimeline converts journal rows to timeline events, keeping only
// kind when it is set.
func buildTimeline(events []store.Event, kind store.EventKind) []TraceEvent {
	timeline := []TraceEvent{}
	for _, ev := range events {
		if kind != "" && ev.Kind != kind {
			continue
		}
		newOps := make([]string, len(ev.NewOps))
		for i, n := range ev.NewOps {
			newOps[i] = n.Name
		}
		timeline = append(timeline, TraceEvent{
			Seq:         ev.Seq,
			Kind:        string(ev.Kind),
			Op:          ev.Op.Name,
			Fingerprint: ev.Op.Fingerprint,
			Index:       ev.Index,
			NewOps:      newOps,
			Unsafe:      ev.Unsafe,
		})
	}
	return timeline
}

func traceStats(counts map[store.EventKind]int, events []store.Event) TraceStats {
	stats := TraceStats{
		TotalEvents: len(events),
		Erasures:    counts[store.EventErase],
		Replaces:    counts[store.EventReplace],
	}
	for _, ev := range events {
		if ev.Unsafe {
			stats.Unsafe++
		}
	}
	return stats
}

func outputSessionsText(w io.Writer, sessions []store.Session) error {
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions recorded.")
		return nil
	}
	for _, s := range sessions {
		fmt.Fprintf(w, "  [%d] %s  %s\n", s.Seq, s.ID, s.Label)
	}
	return nil
}

// outputTraceText outputs the trace result as text.
func outputTraceText(w io.Writer, result TraceResult, verbose bool) error {
	fmt.Fprintf(w, "Trace for Session: %s\n", result.Session.ID)
	if result.Session.Label != "" {
		fmt.Fprintf(w, "Label: %s\n", result.Session.Label)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no events)")
	}
	for _, ev := range result.Timeline {
		formatTimelineEvent(w, ev, verbose)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Total Events: %d\n", result.Stats.TotalEvents)
	fmt.Fprintf(w, "  Erasures:     %d\n", result.Stats.Erasures)
	fmt.Fprintf(w, "  Replaces:     %d\n", result.Stats.Replaces)
	fmt.Fprintf(w, "  Unsafe:       %d\n", result.Stats.Unsafe)
	return nil
}

// formatTimelineEvent formats a single timeline event for text output.
func formatTimelineEvent(w io.Writer, ev TraceEvent, verbose bool) {
	flag := ""
	if ev.Unsafe {
		flag = " (unsafe)"
	}
	switch store.EventKind(ev.Kind) {
	case store.EventErase:
		fmt.Fprintf(w, "  [%d] ERASE %s @%d%s\n", ev.Seq, ev.Op, ev.Index, flag)
	case store.EventReplace:
		fmt.Fprintf(w, "  [%d] REPLACE %s @%d -> [%s]\n", ev.Seq, ev.Op, ev.Index, strings.Join(ev.NewOps, ", "))
	}
	if verbose {
		fmt.Fprintf(w, "       Fingerprint: %s\n", truncateID(ev.Fingerprint))
	}
}

// truncateID truncates a long fingerprint for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}
