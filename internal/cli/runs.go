package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pipecut/pipecut/internal/store"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	Database string
}

// RunSummary is one cached run in a listing.
type RunSummary struct {
	ID         string `json:"id"`
	Program    string `json:"program"`
	Stages     int    `json:"stages"`
	GraphHash  string `json:"graph_hash"`
	PolicyHash string `json:"policy_hash"`
	PipeHash   string `json:"pipe_hash"`
}

// RunsList is the runs command's success payload.
type RunsList struct {
	Runs  []RunSummary `json:"runs"`
	Total int          `json:"total"`
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List cached partitioning runs",
		Long: `List every cached partitioning run in the cache database.

Runs are listed in creation order (run ids are time-sortable), so the
listing is stable across invocations.

Examples:
  pipecut runs --db cache.db
  pipecut runs --db cache.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true, // we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the cache database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runRuns(opts *RunsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	// Opening would create an empty database; a listing must not.
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

	records, err := st.List(ctx)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, fmt.Sprintf("listing runs: %v", err), nil)
		return WrapExitError(ExitCommandError, "listing runs", err)
	}

	list := RunsList{Runs: make([]RunSummary, 0, len(records)), Total: len(records)}
	for _, rec := range records {
		list.Runs = append(list.Runs, RunSummary{
			ID:         rec.ID,
			Program:    rec.Program,
			Stages:     rec.StageCount,
			GraphHash:  rec.GraphHash,
			PolicyHash: rec.PolicyHash,
			PipeHash:   rec.PipeHash,
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(list)
	}

	w := formatter.Writer
	if list.Total == 0 {
		fmt.Fprintln(w, "No cached runs.")
		return nil
	}

	fmt.Fprintf(w, "%d cached run(s)\n\n", list.Total)
	for _, r := range list.Runs {
		fmt.Fprintf(w, "  %s  %s  %d stage(s)  pipe %s\n",
			r.ID, r.Program, r.Stages, truncateHash(r.PipeHash))
	}

	return nil
}
