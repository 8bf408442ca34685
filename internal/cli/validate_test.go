package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/irkit/internal/compiler"
)

func TestValidate_ValidDialects(t *testing.T) {
	out, err := execute(t, "text", NewValidateCommand, dialectsDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All dialects valid (2 dialect(s), 3 op(s))")
}

func TestValidate_ValidDialectsJSON(t *testing.T) {
	out, err := execute(t, "json", NewValidateCommand, dialectsDir)
	require.NoError(t, err)

	var result ValidationResult
	resp := decode(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, result.Valid)
	assert.Equal(t, []string{"arith", "mem"}, result.Dialects)
}

func TestValidate_LoadFailures(t *testing.T) {
	tests := []struct {
		name string
		dir  func(t *testing.T) string
		code string
	}{
		{"missing directory", func(*testing.T) string { return "/nonexistent/directory/path" }, compiler.ErrCodeNotFound},
		{"empty directory", func(t *testing.T) string { return t.TempDir() }, compiler.ErrCodeNoFiles},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "text", NewValidateCommand, tt.dir(t))
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.code)
			assert.Contains(t, out, "Error ["+tt.code+"]")
		})
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		code  string
		field string
	}{
		{
			name:  "dialect without ops",
			files: map[string]string{"d.cue": "package d\ndialect: empty: {summary: \"x\"}\n"},
			code:  compiler.ErrCodeCompile,
			field: "load",
		},
		{
			name:  "unresolved slot type",
			files: map[string]string{"d.cue": "package d\ndialect: t: op: f: operands: {a: \"tensor\"}\n"},
			code:  compiler.ErrInvalidSlotType,
			field: "dialect.t.",
		},
		{
			name:  "unknown trait",
			files: map[string]string{"d.cue": "package d\ndialect: t: op: f: traits: [\"Pure\"]\n"},
			code:  compiler.ErrUnknownTrait,
			field: "dialect.t.",
		},
		{
			name:  "dialect name taken",
			files: map[string]string{"d.cue": "package d\ndialect: vector: op: extra: {}\n"},
			code:  ErrCodeRegister,
			field: "dialect.vector",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "json", NewValidateCommand, writeFiles(t, tt.files))
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))

			var result ValidationResult
			resp := decode(t, out, &result)
			assert.Equal(t, "error", resp.Status)
			assert.False(t, result.Valid)
			require.NotEmpty(t, result.Errors)
			assert.Equal(t, tt.code, result.Errors[0].Code)
			assert.Contains(t, result.Errors[0].Field, tt.field)
		})
	}
}

func TestValidate_BrokenDirText(t *testing.T) {
	out, err := execute(t, "text", NewValidateCommand, brokenDir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "at least one op is required")
}
