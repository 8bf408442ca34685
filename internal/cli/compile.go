package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/irkit/internal/compiler"
	"github.com/roach88/irkit/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string
}

// CompilationResult holds the compiled dialect declarations.
type CompilationResult struct {
	Dialects []*compiler.DialectSpec `json:"dialects"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <dialects-dir>",
		Short: "Compile CUE dialect declarations to canonical JSON",
		Long: `Compile CUE dialect declarations to canonical JSON.

The declarations are validated exactly as by validate. With --output the
canonical form is written to a file; identical declarations always
produce identical bytes.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	specs, errs, err := loadAndCheck(dir, opts.Logger())
	if err != nil {
		return outputLoadError(formatter, err)
	}
	if len(errs) > 0 {
		names := make([]string, len(specs))
		for i, spec := range specs {
			names[i] = spec.Name
		}
		_ = outputValidationErrors(formatter, names, errs)
		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	if opts.Output != "" {
		data, err := MarshalDialects(specs)
		if err != nil {
			_ = formatter.Error(compiler.ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "encoding dialects", err)
		}
		if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
			_ = formatter.Error(compiler.ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "writing output file", err)
		}
		opts.Logger().Debug("wrote compiled dialects", "path", opts.Output, "bytes", len(data))
	}

	if formatter.Format == "json" {
		return formatter.Success(CompilationResult{Dialects: specs})
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %d dialect(s)\n\n", len(specs))
	for _, spec := range specs {
		fmt.Fprintf(formatter.Writer, "  %s: %d op(s)\n", spec.Name, len(spec.Ops))
	}
	if opts.Output != "" {
		fmt.Fprintf(formatter.Writer, "\nWrote canonical JSON to %s\n", opts.Output)
	}
	return nil
}

// MarshalDialects returns the canonical JSON of specs, in load order.
func MarshalDialects(specs []*compiler.DialectSpec) ([]byte, error) {
	out := make([]any, len(specs))
	for i, spec := range specs {
		out[i] = dialectMap(spec)
	}
	return ir.MarshalCanonical(map[string]any{"dialects": out})
}

func dialectMap(spec *compiler.DialectSpec) map[string]any {
	ops := make([]any, len(spec.Ops))
	for i, op := range spec.Ops {
		traits := make([]any, len(op.Traits))
		for j, t := range op.Traits {
			traits[j] = t
		}
		attrs := make([]any, len(op.Attributes))
		for j, a := range op.Attributes {
			attrs[j] = map[string]any{"name": a.Name, "type": a.Type, "optional": a.Optional}
		}
		ops[i] = map[string]any{
			"name":       op.Name,
			"summary":    op.Summary,
			"operands":   slotList(op.Operands),
			"results":    slotList(op.Results),
			"attributes": attrs,
			"regions":    op.Regions,
			"traits":     traits,
		}
	}
	return map[string]any{
		"name":    spec.Name,
		"summary": spec.Summary,
		"ops":     ops,
	}
}

func slotList(slots []compiler.SlotSpec) []any {
	out := make([]any, len(slots))
	for i, s := range slots {
		out[i] = map[string]any{"name": s.Name, "type": s.Type, "variadic": s.Variadic}
	}
	return out
}
