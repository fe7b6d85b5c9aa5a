package harness

import (
	"fmt"

	"github.com/pipecut/pipecut/internal/capture"
	"github.com/pipecut/pipecut/internal/pipe"
	"github.com/pipecut/pipecut/internal/split"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every assertion held.
	Pass bool

	// Pipe is the partitioning result, nil when partitioning failed.
	Pipe *pipe.IR

	// SplitErr is the partitioning error, nil on success. Error scenarios
	// expect one.
	SplitErr error

	// Errors contains one message per failed assertion. Empty if Pass.
	Errors []string
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{Pass: true, Errors: []string{}}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

// Run executes a scenario end to end: load the capture program, partition
// it under the scenario policy, and evaluate the assertions. A scenario
// expecting a partitioning error passes when the error matches; an
// unexpected partitioning failure is reported as an assertion-level
// failure, not returned.
//
// Run returns a non-nil error only for scenario infrastructure problems:
// an unreadable or uncompilable program file, or a malformed policy.
func Run(scenario *Scenario) (*Result, error) {
	g, err := capture.LoadProgram(scenario.Program)
	if err != nil {
		return nil, fmt.Errorf("failed to load program %s: %w", scenario.Program, err)
	}
	cfg, err := scenario.Config()
	if err != nil {
		return nil, fmt.Errorf("invalid scenario policy: %w", err)
	}

	result := NewResult()
	result.Pipe, result.SplitErr = split.Split(g, cfg)

	if result.SplitErr != nil && !scenario.expectsError() {
		result.AddError(fmt.Sprintf("partitioning failed: %v", result.SplitErr))
		return result, nil
	}

	for _, msg := range EvaluateAssertions(result.Pipe, result.SplitErr, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}
