package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eraseScenario = `
name: erase_print
description: "erase a dead print"
session: SESSION
args: [{name: s, type: f32}]
ops:
  - {id: b, kind: vector.broadcast, operands: [s], results: ["vector<2xf32>"]}
  - {id: p, kind: vector.print, operands: [b]}
steps:
  - erase: p
assertions:
  - {type: op_order, ops: [b]}
  - {type: trace_count, event: erase, count: 1}
`

const failingScenario = `
name: wrong_order
description: "asserts the wrong order"
args: [{name: s, type: f32}]
ops:
  - {id: b, kind: vector.broadcast, operands: [s], results: ["vector<2xf32>"]}
assertions:
  - {type: op_order, ops: [p]}
`

func scenario(session string) string {
	return strings.ReplaceAll(eraseScenario, "SESSION", session)
}

func TestTest_HarnessScenarios(t *testing.T) {
	out, err := execute(t, "text", NewTestCommand, scenariosDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ fold_fma")
	assert.Contains(t, out, "✓ declared_dialect")
	assert.Contains(t, out, "✓ atomic_failures")
	assert.Contains(t, out, "Test Summary: 3 passed, 0 failed, 3 total")
}

func TestTest_JSONWithFilter(t *testing.T) {
	out, err := execute(t, "json", NewTestCommand, scenariosDir, "--filter", "fold_*")
	require.NoError(t, err)

	var result TestResult
	resp := decode(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, result.Total)
	require.Len(t, result.Scenarios, 1)
	assert.Equal(t, ScenarioResult{Name: "fold_fma", Session: "fold-fma", Pass: true}, result.Scenarios[0])
}

func TestTest_Failure(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"ok.yaml":  scenario("s1"),
		"bad.yaml": failingScenario,
	})

	out, err := execute(t, "json", NewTestCommand, dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var result TestResult
	resp := decode(t, out, &result)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, "wrong_order", result.Scenarios[0].Name)
	assert.Contains(t, result.Scenarios[0].Errors[0], "Assertion failed: op_order")
}

func TestTest_GoldenUpdateAndCompare(t *testing.T) {
	dir := writeFiles(t, map[string]string{"erase.yaml": scenario("golden")})

	out, err := execute(t, "text", NewTestCommand, dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ erase_print (golden updated)")

	golden, err := os.ReadFile(filepath.Join(dir, "golden", "erase.golden"))
	require.NoError(t, err)
	assert.Equal(t,
		`{"scenario_name":"erase_print","session":"golden","trace":[{"index":1,"kind":"erase","new_ops":[],"op":"vector.print","seq":2,"unsafe":false}]}`,
		string(golden))

	_, err = execute(t, "text", NewTestCommand, dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "erase.golden"), []byte(`{}`), 0o644))
	out, err = execute(t, "text", NewTestCommand, dir)
	require.Error(t, err)
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTest_JournalSessionsMustBeDistinct(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.yaml": scenario("shared"),
		"b.yaml": scenario("shared"),
	})
	db := filepath.Join(t.TempDir(), "journal.db")

	out, err := execute(t, "text", NewTestCommand, dir, "--journal", db)
	require.Error(t, err)
	assert.Contains(t, out, `session "shared" already recorded by scenario erase_print`)
}

func TestTest_EmptyAndMissing(t *testing.T) {
	out, err := execute(t, "text", NewTestCommand, t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")

	_, err = execute(t, "text", NewTestCommand, "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, "text", NewTestCommand, scenariosDir, "--filter", "[")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestFindScenarioFiles_SkipsGolden(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.yaml":        "",
		"nested/b.yml":  "",
		"golden/c.yaml": "",
		"notes.txt":     "",
	})

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yaml"),
		filepath.Join(dir, "nested", "b.yml"),
	}, files)
}
