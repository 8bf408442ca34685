package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/irkit/internal/compiler"
	"github.com/roach88/irkit/internal/dialects"
	"github.com/roach88/irkit/internal/irdl"
)

// DialectsOptions holds flags for the dialects command.
type DialectsOptions struct {
	*RootOptions
	Dir string
}

// OpInfo describes one registered operation kind.
type OpInfo struct {
	Name       string   `json:"name"`
	Summary    string   `json:"summary,omitempty"`
	Operands   []string `json:"operands"`
	Results    []string `json:"results"`
	Attributes []string `json:"attributes"`
	Regions    int      `json:"regions"`
	Traits     []string `json:"traits"`
}

// DialectInfo describes one registered dialect.
type DialectInfo struct {
	Name  string   `json:"name"`
	Ops   []OpInfo `json:"ops"`
	Types []string `json:"types"`
}

// NewDialectsCommand creates the dialects command.
func NewDialectsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DialectsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dialects",
		Short: "List registered dialects and their operation kinds",
		Long: `List the dialects compiled into irkit, plus any declared in CUE.

Examples:
  irkit dialects
  irkit dialects --dir ./dialects --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDialects(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", "", "directory of CUE dialect declarations to register")

	return cmd
}

func runDialects(opts *DialectsOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	var declared []*compiler.DialectSpec
	if opts.Dir != "" {
		result, errs := compiler.LoadDir(opts.Dir, compiler.LoadModeFailFast)
		if len(errs) > 0 {
			return outputLoadError(formatter, errs[0])
		}
		declared = result.Dialects
	}

	reg, err := dialects.NewRegistry(declared, irdl.WithRegistryLogger(opts.Logger()))
	if err != nil {
		_ = formatter.Error(ErrCodeRegister, err.Error(), nil)
		return WrapExitError(ExitFailure, "registering dialects", err)
	}

	infos, err := describeRegistry(reg)
	if err != nil {
		return WrapExitError(ExitCommandError, "describing registry", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(infos)
	}

	for _, d := range infos {
		fmt.Fprintf(formatter.Writer, "%s (%d op(s))\n", d.Name, len(d.Ops))
		for _, op := range d.Ops {
			fmt.Fprintf(formatter.Writer, "  %s(%s) -> (%s)", op.Name,
				strings.Join(op.Operands, ", "), strings.Join(op.Results, ", "))
			if op.Summary != "" {
				fmt.Fprintf(formatter.Writer, "  # %s", op.Summary)
			}
			fmt.Fprintln(formatter.Writer)
		}
		if len(d.Types) > 0 {
			fmt.Fprintf(formatter.Writer, "  types: %s\n", strings.Join(d.Types, ", "))
		}
	}
	return nil
}

func describeRegistry(reg *irdl.Registry) ([]DialectInfo, error) {
	names := reg.Dialects()
	infos := make([]DialectInfo, 0, len(names))
	for _, name := range names {
		d, err := reg.LookupDialect(name)
		if err != nil {
			return nil, err
		}
		info := DialectInfo{Name: name, Ops: make([]OpInfo, len(d.Ops)), Types: make([]string, len(d.Types))}
		for i, op := range d.Ops {
			info.Ops[i] = describeOp(op)
		}
		for i, td := range d.Types {
			info.Types[i] = td.Name
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func describeOp(def *irdl.OpDef) OpInfo {
	info := OpInfo{
		Name:       def.Name(),
		Summary:    def.Summary(),
		Operands:   []string{},
		Results:    []string{},
		Attributes: []string{},
		Regions:    def.NumRegions(),
		Traits:     []string{},
	}
	for _, o := range def.Operands() {
		info.Operands = append(info.Operands, slotString(o.Name, o.Constraint, o.Variadic))
	}
	for _, r := range def.Results() {
		info.Results = append(info.Results, slotString(r.Name, r.Constraint, r.Variadic))
	}
	for _, a := range def.Attributes() {
		s := a.Name + ": " + a.Constraint.String()
		if a.Optional {
			s += "?"
		}
		info.Attributes = append(info.Attributes, s)
	}
	for _, t := range def.Traits() {
		info.Traits = append(info.Traits, t.Name())
	}
	return info
}

func slotString(name string, c irdl.Constraint, variadic bool) string {
	s := name + ": " + c.String()
	if variadic {
		s += "..."
	}
	return s
}
