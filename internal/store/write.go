package store

import (
	"context"
	"fmt"
)

// WriteSession records a session. Uses ON CONFLICT(id) DO NOTHING, so
// writing the same session twice is a no-op.
func (s *Store) WriteSession(ctx context.Context, sess Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, label, seq)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, sess.ID, sess.Label, sess.Seq)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	s.logger.Debug("journal session opened", "session", sess.ID, "label", sess.Label)
	return nil
}

// WriteEvent appends an event. The session must already exist (foreign key
// constraint). A second event with the same (session, seq) is silently
// ignored.
func (s *Store) WriteEvent(ctx context.Context, ev Event) error {
	if ev.Kind != EventErase && ev.Kind != EventReplace {
		return fmt.Errorf("write event: unknown kind %q", ev.Kind)
	}
	newOps, err := marshalOpRecords(ev.NewOps)
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events
		(session_id, seq, kind, op_name, op_fingerprint, block_index, new_ops, unsafe)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		ev.SessionID,
		ev.Seq,
		string(ev.Kind),
		ev.Op.Name,
		ev.Op.Fingerprint,
		ev.Index,
		newOps,
		ev.Unsafe,
	)
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}

	s.logger.Debug("journal event",
		"session", ev.SessionID,
		"seq", ev.Seq,
		"kind", ev.Kind,
		"op", ev.Op.Name)
	return nil
}
