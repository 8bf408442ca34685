package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/irkit/internal/compiler"
	"github.com/roach88/irkit/internal/dialects"
	"github.com/roach88/irkit/internal/irdl"
)

// ErrCodeRegister marks a dialect that validated but could not be
// registered, usually because its name is already taken.
const ErrCodeRegister = "E110"

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Dialects []string                   `json:"dialects"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <dialects-dir>",
		Short: "Validate CUE dialect declarations",
		Long: `Validate the CUE dialect declarations in a directory.

Each dialect is checked for naming, slot and trait errors and then
registered on top of the builtin and vector dialects, so a declaration
may refer to the type kinds of any dialect listed before it.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	specs, errs, err := loadAndCheck(dir, opts.Logger())
	if err != nil {
		return outputLoadError(formatter, err)
	}

	names := make([]string, len(specs))
	for i, spec := range specs {
		names[i] = spec.Name
	}

	if len(errs) > 0 {
		return outputValidationErrors(formatter, names, errs)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Dialects: names})
	}
	fmt.Fprintf(formatter.Writer, "✓ All dialects valid (%d dialect(s), %d op(s))\n", len(specs), countOps(specs))
	return nil
}

// loadAndCheck loads every dialect under dir and validates each against
// the kinds registered before it. err is set only when nothing could be
// loaded at all.
func loadAndCheck(dir string, logger *slog.Logger) ([]*compiler.DialectSpec, []compiler.ValidationError, error) {
	result, loadErrs := compiler.LoadDir(dir, compiler.LoadModeCollectAll)
	if result == nil {
		return nil, nil, loadErrs[0]
	}
	logger.Debug("loaded dialect declarations",
		"dir", dir,
		"files", result.FileCount,
		"dialects", len(result.Dialects))

	var errs []compiler.ValidationError
	for _, err := range loadErrs {
		errs = append(errs, loadValidationError(err))
	}

	checkErrs := checkDialects(result.Dialects, logger)
	return result.Dialects, append(errs, checkErrs...), nil
}

// checkDialects registers the standard dialects and then each declared
// dialect that validates, collecting every failure.
func checkDialects(specs []*compiler.DialectSpec, logger *slog.Logger) []compiler.ValidationError {
	reg := irdl.NewRegistry(irdl.WithRegistryLogger(logger))
	for _, d := range dialects.Standard() {
		if err := reg.RegisterDialect(d); err != nil {
			return []compiler.ValidationError{{Field: d.Name, Message: err.Error(), Code: ErrCodeRegister}}
		}
	}

	var errs []compiler.ValidationError
	res := compiler.NewResolver(reg)
	for _, spec := range specs {
		logger.Debug("validating dialect", "dialect", spec.Name, "ops", len(spec.Ops))

		specErrs := compiler.ValidateWith(spec, res)
		for _, e := range specErrs {
			e.Field = "dialect." + spec.Name + "." + e.Field
			errs = append(errs, e)
		}
		if len(specErrs) > 0 {
			continue
		}

		d, err := compiler.ToDialect(spec, res)
		if err == nil {
			err = reg.RegisterDialect(d)
		}
		if err != nil {
			errs = append(errs, compiler.ValidationError{
				Field:   "dialect." + spec.Name,
				Message: err.Error(),
				Code:    ErrCodeRegister,
			})
		}
	}
	return errs
}

func loadValidationError(err error) compiler.ValidationError {
	var le *compiler.LoadError
	if errors.As(err, &le) {
		line := 0
		if le.Pos.IsValid() {
			line = le.Pos.Line()
		}
		return compiler.ValidationError{Field: "load", Message: le.Message, Code: le.Code, Line: line}
	}
	return compiler.ValidationError{Field: "load", Message: err.Error(), Code: compiler.ErrCodeGeneric}
}

func countOps(specs []*compiler.DialectSpec) int {
	n := 0
	for _, spec := range specs {
		n += len(spec.Ops)
	}
	return n
}

// outputLoadError reports a directory that could not be loaded at all.
func outputLoadError(formatter *OutputFormatter, err error) error {
	code, message := compiler.ErrCodeGeneric, err.Error()
	var le *compiler.LoadError
	if errors.As(err, &le) {
		code, message = le.Code, le.Message
	}
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

func outputValidationErrors(formatter *OutputFormatter, names []string, errs []compiler.ValidationError) error {
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if formatter.Format == "json" {
		result := ValidationResult{Valid: false, Dialects: names, Errors: errs}
		if err := formatter.Failure(errs[0].Code, errs[0].Message, result); err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}
	return exitErr
}
