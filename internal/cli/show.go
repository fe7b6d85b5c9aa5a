package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pipecut/pipecut/internal/store"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Database string
}

// RunDetail is the show command's success payload: one cached run with its
// full pipe body.
type RunDetail struct {
	ID         string          `json:"id"`
	Program    string          `json:"program"`
	Stages     int             `json:"stages"`
	GraphHash  string          `json:"graph_hash"`
	PolicyHash string          `json:"policy_hash"`
	PipeHash   string          `json:"pipe_hash"`
	Pipe       json.RawMessage `json:"pipe"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print one cached partitioning run",
		Long: `Print one cached partitioning run: its provenance hashes and the
stored canonical pipe JSON.

Examples:
  pipecut show 01924f0a-... --db cache.db
  pipecut show 01924f0a-... --db cache.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true, // we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the cache database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runShow(opts *ShowOptions, runID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if _, err := os.Stat(opts.Database); os.IsNotExist(err) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.Database), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", opts.Database))
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, fmt.Sprintf("opening database: %v", err), nil)
		return WrapExitError(ExitCommandError, "opening database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rec, err := st.Get(ctx, runID)
	if errors.Is(err, store.ErrNotFound) {
		_ = formatter.Error(ErrCodeRunNotFound, fmt.Sprintf("run %s not found", runID), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("run %s not found", runID))
	}
	if err != nil {
		_ = formatter.Error(ErrCodeStore, fmt.Sprintf("reading run: %v", err), nil)
		return WrapExitError(ExitCommandError, "reading run", err)
	}

	detail := RunDetail{
		ID:         rec.ID,
		Program:    rec.Program,
		Stages:     rec.StageCount,
		GraphHash:  rec.GraphHash,
		PolicyHash: rec.PolicyHash,
		PipeHash:   rec.PipeHash,
		Pipe:       json.RawMessage(rec.PipeJSON),
	}

	if formatter.Format == "json" {
		return formatter.Success(detail)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Run %s\n", detail.ID)
	fmt.Fprintf(w, "Program:     %s\n", detail.Program)
	fmt.Fprintf(w, "Stages:      %d\n", detail.Stages)
	fmt.Fprintf(w, "Graph hash:  %s\n", detail.GraphHash)
	fmt.Fprintf(w, "Policy hash: %s\n", detail.PolicyHash)
	fmt.Fprintf(w, "Pipe hash:   %s\n", detail.PipeHash)
	fmt.Fprintln(w)
	fmt.Fprintln(w, rec.PipeJSON)

	return nil
}
