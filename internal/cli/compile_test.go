package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/irkit/internal/compiler"
)

func TestCompile_Text(t *testing.T) {
	out, err := execute(t, "text", NewCompileCommand, dialectsDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Compiled 2 dialect(s)")
	assert.Contains(t, out, "arith: 2 op(s)")
	assert.Contains(t, out, "mem: 1 op(s)")
}

func TestCompile_JSON(t *testing.T) {
	out, err := execute(t, "json", NewCompileCommand, dialectsDir)
	require.NoError(t, err)

	var result CompilationResult
	resp := decode(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, result.Dialects, 2)
	assert.Equal(t, "arith", result.Dialects[0].Name)
	assert.Equal(t, "addi", result.Dialects[0].Ops[0].Name)
}

func TestCompile_OutputIsCanonical(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.json")
	second := filepath.Join(dir, "second.json")

	_, err := execute(t, "text", NewCompileCommand, dialectsDir, "-o", first)
	require.NoError(t, err)
	_, err = execute(t, "text", NewCompileCommand, dialectsDir, "--output", second)
	require.NoError(t, err)

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Contains(t, string(a), `{"dialects":[{"name":"arith","ops":[{"attributes":[],"name":"addi"`)
}

func TestMarshalDialects(t *testing.T) {
	data, err := MarshalDialects([]*compiler.DialectSpec{{
		Name: "t",
		Ops: []compiler.OpSpec{{
			Name:       "f",
			Operands:   []compiler.SlotSpec{{Name: "xs", Type: "index", Variadic: true}},
			Attributes: []compiler.AttrSpec{{Name: "tag", Type: "string", Optional: true}},
		}},
	}})
	require.NoError(t, err)
	assert.Equal(t,
		`{"dialects":[{"name":"t","ops":[{"attributes":[{"name":"tag","optional":true,"type":"string"}],`+
			`"name":"f","operands":[{"name":"xs","type":"index","variadic":true}],"regions":0,"results":[],`+
			`"summary":"","traits":[]}],"summary":""}]}`,
		string(data))
}

func TestCompile_Failures(t *testing.T) {
	_, err := execute(t, "text", NewCompileCommand, "/nonexistent")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, err := execute(t, "text", NewCompileCommand, brokenDir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "compilation failed with 1 error(s)")
	assert.Contains(t, out, "✗ Validation failed")
}
