package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/irkit/internal/store"
)

// recordJournal runs the fold_fma scenario into a fresh journal.
func recordJournal(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "journal.db")
	_, err := execute(t, "text", NewTestCommand, scenariosDir, "--filter", "fold_*", "--journal", db)
	require.NoError(t, err)
	return db
}

func TestTrace_ListSessions(t *testing.T) {
	db := recordJournal(t)

	out, err := execute(t, "text", NewTraceCommand, "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "  [1] fold-fma  fold_fma\n", out)

	out, err = execute(t, "json", NewTraceCommand, "--db", db)
	require.NoError(t, err)
	var sessions []store.Session
	decode(t, out, &sessions)
	assert.Equal(t, []store.Session{{ID: "fold-fma", Label: "fold_fma", Seq: 1}}, sessions)
}

func TestTrace_Session(t *testing.T) {
	db := recordJournal(t)

	out, err := execute(t, "text", NewTraceCommand, "--db", db, "--session", "fold-fma")
	require.NoError(t, err)
	assert.Contains(t, out, "Trace for Session: fold-fma")
	assert.Contains(t, out, "[2] ERASE vector.print @2")
	assert.Contains(t, out, "[3] REPLACE vector.fma @1 -> [vector.broadcast]")
	assert.Contains(t, out, "Total Events: 2")
}

func TestTrace_SessionJSONFiltered(t *testing.T) {
	db := recordJournal(t)

	out, err := execute(t, "json", NewTraceCommand, "--db", db, "--session", "fold-fma", "--kind", "replace")
	require.NoError(t, err)

	var result TraceResult
	resp := decode(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "fold_fma", result.Session.Label)
	require.Len(t, result.Timeline, 1)
	assert.Equal(t, "vector.fma", result.Timeline[0].Op)
	assert.Equal(t, []string{"vector.broadcast"}, result.Timeline[0].NewOps)
	assert.Len(t, result.Timeline[0].Fingerprint, 64)
	assert.Equal(t, TraceStats{TotalEvents: 2, Erasures: 1, Replaces: 1}, result.Stats)
}

func TestTrace_Errors(t *testing.T) {
	db := recordJournal(t)

	out, err := execute(t, "text", NewTraceCommand, "--db", db, "--session", "missing")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "session not found: missing")

	_, err = execute(t, "text", NewTraceCommand, "--db", db, "--kind", "move")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, "text", NewTraceCommand)
	require.Error(t, err)
}

func TestTrace_EmptyJournal(t *testing.T) {
	db := filepath.Join(t.TempDir(), "empty.db")
	out, err := execute(t, "text", NewTraceCommand, "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "No sessions recorded.\n", out)
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "short", truncateID("short"))
	assert.Equal(t, "01234567...89abcdef", truncateID("0123456789abcdef0123456789abcdef"))
}
