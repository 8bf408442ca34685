package store

import (
	"path/filepath"
	"testing"
)

// createTestStore opens a fresh file-backed journal in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testSession(id string, seq int64) Session {
	return Session{ID: id, Label: "test", Seq: seq}
}

func testEvent(sessionID string, seq int64, kind EventKind, name string) Event {
	return Event{
		SessionID: sessionID,
		Seq:       seq,
		Kind:      kind,
		Op:        OpRecord{Name: name, Fingerprint: "fp-" + name},
		Index:     0,
		NewOps:    []OpRecord{},
	}
}
