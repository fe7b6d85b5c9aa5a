package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pipecut/pipecut/internal/capture"
	"github.com/pipecut/pipecut/internal/split"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	Policy PolicyFlags
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect <program.cue>",
		Short: "Partition and print the pipe in full",
		Long: `Partition a capture program and print the complete result.

Text output is the rendered pipe: the orchestration graph, each stage
module with its signature and body, the cross-stage edges, and the
replication record. JSON output is the pipe's canonical JSON, the same
bytes split -o writes.

Examples:
  pipecut inspect model.cue
  pipecut inspect model.cue --replicate shared.weight
  pipecut inspect model.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true, // we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts, args[0], cmd)
		},
	}

	addPolicyFlags(cmd, &opts.Policy)

	return cmd
}

func runInspect(opts *InspectOptions, programPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if _, err := os.Stat(programPath); os.IsNotExist(err) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("program file not found: %s", programPath), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("program file not found: %s", programPath))
	}

	g, err := capture.LoadProgram(programPath)
	if err != nil {
		return outputLoadError(formatter, ErrCodeProgram, err)
	}

	cfg, err := opts.Policy.BuildConfig()
	if err != nil {
		return outputLoadError(formatter, ErrCodePolicy, err)
	}

	result, err := split.Split(g, cfg)
	if err != nil {
		return outputSplitError(formatter, err)
	}

	if formatter.Format == "json" {
		data, err := result.CanonicalJSON()
		if err != nil {
			_ = formatter.Error(ErrCodeGeneric, fmt.Sprintf("marshaling pipe: %v", err), nil)
			return WrapExitError(ExitCommandError, "marshaling pipe", err)
		}
		return formatter.Success(json.RawMessage(data))
	}

	result.WriteRender(formatter.Writer)
	return nil
}
