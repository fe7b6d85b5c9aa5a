package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pipecut/pipecut/internal/capture"
	"github.com/pipecut/pipecut/internal/graph"
	"github.com/pipecut/pipecut/internal/pipe"
	"github.com/pipecut/pipecut/internal/split"
	"github.com/pipecut/pipecut/internal/store"
)

// SplitOptions holds flags for the split command.
type SplitOptions struct {
	*RootOptions
	Policy   PolicyFlags
	Output   string // canonical JSON destination
	Database string // cache database path
}

// SplitSummary is the split command's success payload.
type SplitSummary struct {
	Program    string   `json:"program"`
	Stages     int      `json:"stages"`
	Edges      int      `json:"edges"`
	Replicated []string `json:"replicated,omitempty"`
	PipeHash   string   `json:"pipe_hash"`
	RunID      string   `json:"run_id,omitempty"`
	Cached     bool     `json:"cached,omitempty"`
	Output     string   `json:"output,omitempty"`
}

// NewSplitCommand creates the split command.
func NewSplitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SplitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "split <program.cue>",
		Short: "Partition a capture program into pipeline stages",
		Long: `Partition a capture program at its split markers.

Cuts the instruction graph into contiguous stages, resolves cross-stage
data dependencies (materializing pass-throughs for values that skip
stages), applies the multi-use parameter policy, and assembles the
orchestration graph.

Policy flags win over the --policy file. The result can be written as
canonical JSON with -o and cached with --db; re-partitioning an identical
(program, policy) pair reports the existing cached run.

Examples:
  pipecut split model.cue
  pipecut split model.cue --policy policy.cue -o pipe.json
  pipecut split model.cue --default replicate --transmit emb.weight
  pipecut split model.cue --db cache.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true, // we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(opts, args[0], cmd)
		},
	}

	addPolicyFlags(cmd, &opts.Policy)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the pipe as canonical JSON to this file")
	cmd.Flags().StringVar(&opts.Database, "db", "", "cache the run in this SQLite database")

	return cmd
}

func runSplit(opts *SplitOptions, programPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if _, err := os.Stat(programPath); os.IsNotExist(err) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("program file not found: %s", programPath), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("program file not found: %s", programPath))
	}

	g, err := capture.LoadProgram(programPath)
	if err != nil {
		return outputLoadError(formatter, ErrCodeProgram, err)
	}
	formatter.VerboseLog("Loaded program %s: %d instruction(s)", g.Name, len(g.Nodes))

	cfg, err := opts.Policy.BuildConfig()
	if err != nil {
		return outputLoadError(formatter, ErrCodePolicy, err)
	}

	result, err := split.Split(g, cfg)
	if err != nil {
		return outputSplitError(formatter, err)
	}

	hash, err := result.Hash()
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, fmt.Sprintf("hashing pipe: %v", err), nil)
		return WrapExitError(ExitCommandError, "hashing pipe", err)
	}

	summary := SplitSummary{
		Program:    result.Graph.Name,
		Stages:     len(result.Stages),
		Edges:      len(result.Edges),
		Replicated: replicatedParams(result),
		PipeHash:   hash,
		Output:     opts.Output,
	}

	if opts.Output != "" {
		if err := writePipeFile(result, opts.Output); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
			return WrapExitError(ExitCommandError, "writing output file", err)
		}
	}

	if opts.Database != "" {
		saved, err := cacheRun(cmd.Context(), opts.Database, g, cfg, result)
		if err != nil {
			_ = formatter.Error(ErrCodeStore, fmt.Sprintf("caching run: %v", err), nil)
			return WrapExitError(ExitCommandError, "caching run", err)
		}
		summary.RunID = saved.RunID
		summary.Cached = !saved.Inserted
	}

	return outputSplitSuccess(formatter, result, summary)
}

// replicatedParams lists the replication record's parameters in record order.
func replicatedParams(result *pipe.IR) []string {
	var params []string
	for _, entry := range result.Replicas {
		params = append(params, entry.Param)
	}
	return params
}

// writePipeFile writes the pipe as canonical JSON. The same bytes the store
// keeps, so a cached run and a -o file for one input are byte-identical.
func writePipeFile(result *pipe.IR, path string) error {
	data, err := result.CanonicalJSON()
	if err != nil {
		return fmt.Errorf("marshaling pipe: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

// cacheRun saves the partitioning result in the run cache.
func cacheRun(ctx context.Context, dbPath string, g *graph.Graph, cfg split.Config, result *pipe.IR) (store.SaveResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return store.SaveResult{}, err
	}
	defer st.Close()

	return st.Save(ctx, g, cfg, result)
}

// outputSplitSuccess outputs a successful partitioning.
func outputSplitSuccess(formatter *OutputFormatter, result *pipe.IR, summary SplitSummary) error {
	if formatter.Format == "json" {
		return formatter.Success(summary)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Partitioned %s into %d stage(s)\n\n", summary.Program, summary.Stages)

	for _, s := range result.Stages {
		fmt.Fprintf(w, "  %s: [%s] -> [%s]", s.Name,
			strings.Join(s.Inputs, ", "), strings.Join(s.Outputs, ", "))
		if len(s.Params) > 0 {
			fmt.Fprintf(w, "  params: %s", strings.Join(s.Params, ", "))
		}
		fmt.Fprintln(w)
	}

	if len(result.Edges) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Cross-stage edges:")
		for _, e := range result.Edges {
			fmt.Fprintf(w, "  %s: %s -> %s (pos %d)\n",
				e.Value, pipe.StageName(e.Producer), pipe.StageName(e.Consumer), e.Pos)
		}
	}

	if len(result.Replicas) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Replicated parameters:")
		for _, entry := range result.Replicas {
			fmt.Fprintf(w, "  %s: %s\n", entry.Param, strings.Join(result.Replicas.StagesOf(entry.Param), ", "))
		}
	}

	fmt.Fprintf(w, "\nPipe hash: %s\n", summary.PipeHash)

	if summary.Output != "" {
		fmt.Fprintf(w, "Wrote canonical pipe to %s\n", summary.Output)
	}
	if summary.RunID != "" {
		if summary.Cached {
			fmt.Fprintf(w, "Already cached as run %s\n", summary.RunID)
		} else {
			fmt.Fprintf(w, "Cached as run %s\n", summary.RunID)
		}
	}

	return nil
}
