package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/pipecut/pipecut/internal/pipe"
)

// RunGolden executes a scenario and compares the rendered pipe against a
// golden file in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error when the scenario fails before the comparison: a load
// failure, a failed assertion, or an error scenario (which has no pipe to
// snapshot). Rendering differences fail the test through goldie.
func RunGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	if !result.Pass {
		return fmt.Errorf("scenario %s failed:\n%s", scenario.Name, strings.Join(result.Errors, "\n"))
	}
	if result.Pipe == nil {
		return fmt.Errorf("scenario %s produced no pipe to snapshot", scenario.Name)
	}

	AssertGolden(t, scenario.Name, result.Pipe)
	return nil
}

// AssertGolden compares a pipe's rendered text against a golden file.
// Useful when the pipe was produced outside a scenario run.
func AssertGolden(t *testing.T, name string, p *pipe.IR) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(p.Render()))
}
