package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runGoldenScenario(t *testing.T, path string) {
	t.Helper()
	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	require.NoError(t, RunGolden(t, scenario))
}

func TestRunGolden_SingleStage(t *testing.T) {
	runGoldenScenario(t, "testdata/scenarios/single_stage.yaml")
}

func TestRunGolden_TwoStageHandoff(t *testing.T) {
	runGoldenScenario(t, "testdata/scenarios/two_stage.yaml")
}

func TestRunGolden_SkipStageForwarding(t *testing.T) {
	runGoldenScenario(t, "testdata/scenarios/skip_stage.yaml")
}

func TestRunGolden_SharedWeightTransmit(t *testing.T) {
	runGoldenScenario(t, "testdata/scenarios/transmit.yaml")
}

func TestRunGolden_SharedWeightReplicate(t *testing.T) {
	runGoldenScenario(t, "testdata/scenarios/replicate.yaml")
}

func TestRunGolden_ErrorScenarioRejected(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/malformed_marker.yaml")
	require.NoError(t, err)

	err = RunGolden(t, scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no pipe to snapshot")
}

func TestAssertGolden_FromPipe(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/two_stage.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	AssertGolden(t, "two-stage-handoff", result.Pipe)
}
