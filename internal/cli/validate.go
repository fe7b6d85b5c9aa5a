package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pipecut/pipecut/internal/capture"
	"github.com/pipecut/pipecut/internal/split"
)

// Diagnostic is one validation finding with its stable error code.
type Diagnostic struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Node    string `json:"node,omitempty"`
	Pos     string `json:"pos,omitempty"` // file:line:col for capture errors
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid        bool         `json:"valid"`
	Program      string       `json:"program,omitempty"`
	Instructions int          `json:"instructions,omitempty"`
	Markers      int          `json:"markers,omitempty"`
	Errors       []Diagnostic `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <program.cue>",
		Short: "Check a capture program without partitioning",
		Long: `Check a capture program without partitioning it.

Runs the capture schema checks, the structural graph rules (reference
resolution, single terminal output, topological order), and the split
marker arity rule. Reports every finding with a stable error code and,
for capture errors, the source position.

Exit codes:
  0 - Program is valid
  1 - Program is invalid
  2 - Command error (missing file)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true, // we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, programPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if _, err := os.Stat(programPath); os.IsNotExist(err) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("program file not found: %s", programPath), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("program file not found: %s", programPath))
	}

	g, err := capture.LoadProgram(programPath)
	if err != nil {
		// Unparseable input is a validation finding, not a command error.
		return outputValidationErrors(formatter, ValidationResult{
			Valid:  false,
			Errors: []Diagnostic{captureDiagnostic(err)},
		})
	}
	formatter.VerboseLog("Loaded program %s: %d instruction(s)", g.Name, len(g.Nodes))

	result := ValidationResult{
		Valid:        true,
		Program:      g.Name,
		Instructions: len(g.Nodes),
	}

	if err := split.ValidateGraph(g); err != nil {
		result.Errors = append(result.Errors, splitDiagnostic(err))
	}

	markers, err := split.ScanMarkers(g)
	if err != nil {
		result.Errors = append(result.Errors, splitDiagnostic(err))
	} else {
		result.Markers = len(markers)
	}

	if len(result.Errors) > 0 {
		result.Valid = false
		return outputValidationErrors(formatter, result)
	}

	return outputValidateSuccess(formatter, result)
}

// captureDiagnostic converts a capture loading error to a diagnostic.
func captureDiagnostic(err error) Diagnostic {
	var ce *capture.CompileError
	if !errors.As(err, &ce) {
		return Diagnostic{Code: ErrCodeProgram, Message: err.Error()}
	}
	d := Diagnostic{
		Code:    ErrCodeProgram,
		Message: fmt.Sprintf("%s: %s", ce.Field, ce.Message),
	}
	if ce.Pos.IsValid() {
		d.Pos = fmt.Sprintf("%s:%d:%d", ce.Pos.Filename(), ce.Pos.Line(), ce.Pos.Column())
	}
	return d
}

// splitDiagnostic converts a structural or marker error to a diagnostic.
func splitDiagnostic(err error) Diagnostic {
	var se *split.Error
	if !errors.As(err, &se) {
		return Diagnostic{Code: ErrCodeGeneric, Message: err.Error()}
	}
	return Diagnostic{
		Code:    MapSplitError(se.Code),
		Message: se.Message,
		Node:    se.Node,
	}
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ %s valid: %d instruction(s), %d split marker(s), %d stage(s)\n",
		result.Program, result.Instructions, result.Markers, result.Markers+1)
	return nil
}

// outputValidationErrors outputs validation findings and maps them to exit
// code 1: the command ran fine, the program did not pass.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    result.Errors[0].Code,
				Message: result.Errors[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, d := range result.Errors {
		if d.Pos != "" {
			fmt.Fprintln(formatter.Writer, d.Pos)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s", d.Code, d.Message)
		if d.Node != "" {
			fmt.Fprintf(formatter.Writer, " (node %s)", d.Node)
		}
		fmt.Fprintln(formatter.Writer)
		fmt.Fprintln(formatter.Writer)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
}
