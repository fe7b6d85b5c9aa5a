package split

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipecut/pipecut/internal/graph"
	"github.com/pipecut/pipecut/internal/pipe"
	"github.com/pipecut/pipecut/internal/testutil"
)

func buildFor(t *testing.T, g *graph.Graph, cfg Config) []*pipe.StageModule {
	t.Helper()
	stages := mustPartition(t, g)
	uses := analyzeParams(g, stages)
	output, _, err := applyPolicy(g, stages, uses, cfg)
	require.NoError(t, err)
	res := resolveDeps(g, stages, output)
	modules, err := buildStageModules(g, stages, res, ownedParams(g, stages), output.Name)
	require.NoError(t, err)
	return modules
}

func TestBuildStageModulesShape(t *testing.T) {
	g := testutil.NewGraph("mlp").
		Input("x").
		Attr("w", "l0.weight").
		Call("lin", "linear", "%x", "%w").
		Split("s0").
		Call("act", "relu", "%lin").
		Output("out", "%act").
		Build()

	modules := buildFor(t, g, DefaultConfig())
	require.Len(t, modules, 2)

	s0 := modules[0]
	assert.Equal(t, "stage0", s0.Name)
	assert.Equal(t, 0, s0.Index)
	assert.Equal(t, []string{"x"}, s0.Inputs)
	assert.Equal(t, []string{"lin"}, s0.Outputs)
	assert.Equal(t, []string{"l0.weight"}, s0.Params)
	assert.Equal(t, "%x : placeholder\n%w = attr l0.weight\n%lin = call linear(%x, %w)\noutput(%lin)\n", s0.Graph.Text())

	s1 := modules[1]
	assert.Equal(t, "stage1", s1.Name)
	assert.Equal(t, []string{"lin"}, s1.Inputs)
	assert.Equal(t, []string{"act"}, s1.Outputs)
	assert.Empty(t, s1.Params)
	assert.Equal(t, "%lin : placeholder\n%act = call relu(%lin)\noutput(%act)\n", s1.Graph.Text())
}

func TestBuildStageModulesGraphsAreWellFormed(t *testing.T) {
	g := testutil.NewGraph("p").
		Input("x").
		Input("y").
		Call("a", "f", "%x").
		Split("s0").
		Call("b", "g", "%y").
		Split("s1").
		Call("c", "h", "%a", "%b").
		Output("out", "%c").
		Build()

	for _, m := range buildFor(t, g, DefaultConfig()) {
		assert.NoError(t, ValidateGraph(m.Graph), "stage %s", m.Name)
	}
}

func TestBuildStageModulesCompositeOutput(t *testing.T) {
	g := testutil.NewGraph("p").
		Input("x").
		Call("a", "f", "%x").
		Call("b", "g", "%x").
		Split("s0").
		Call("c", "h", "%a", "%b").
		Output("out", "%c").
		Build()

	modules := buildFor(t, g, DefaultConfig())
	s0 := modules[0]
	assert.Equal(t, []string{"a", "b"}, s0.Outputs)
	assert.True(t, s0.Composite())

	final := s0.Graph.Output()
	require.NotNil(t, final)
	assert.Equal(t, []string{"a", "b"}, final.Refs(), "composite output preserves list order")
}

func TestBuildStageModulesPassThroughBody(t *testing.T) {
	g := testutil.NewGraph("p").
		Input("x").
		Input("y").
		Call("a", "f", "%x").
		Split("s0").
		Call("b", "g", "%y").
		Split("s1").
		Call("c", "h", "%a", "%b").
		Output("out", "%c").
		Build()

	modules := buildFor(t, g, DefaultConfig())
	s1 := modules[1]

	assert.Contains(t, s1.Inputs, "a")
	assert.Contains(t, s1.Outputs, "a")
	for _, n := range s1.Graph.Nodes {
		if n.Op == graph.OpPlaceholder || n.Op == graph.OpOutput {
			continue
		}
		assert.NotContains(t, n.Refs(), "a", "pass-through value must not be consumed by the body")
	}
}

func TestBuildStageModulesRestrictsModuleTable(t *testing.T) {
	g := testutil.NewGraph("p").
		Input("x").
		Module("e", "encoder", "%x").
		Split("s0").
		Call("b", "relu", "%e").
		Output("out", "%b").
		ModuleParams("encoder", "encoder.weight").
		ModuleParams("decoder", "decoder.weight").
		Build()

	modules := buildFor(t, g, DefaultConfig())
	assert.Equal(t, map[string][]string{"encoder": {"encoder.weight"}}, modules[0].Graph.ModuleParams)
	assert.Nil(t, modules[1].Graph.ModuleParams, "stage 1 calls no modules")
}

func TestBuildStageModulesDanglingReference(t *testing.T) {
	g := testutil.NewGraph("p").
		Input("x").
		Call("a", "f", "%x").
		Split("s0").
		Call("b", "g", "%a").
		Output("out", "%b").
		Build()
	stages := mustPartition(t, g)
	owned := ownedParams(g, stages)

	// A resolution that forgot to route a into stage 1.
	broken := &resolution{
		inputs:  [][]string{{"x"}, {}},
		outputs: [][]string{{}, {"b"}},
	}
	_, err := buildStageModules(g, stages, broken, owned, "out")
	require.Error(t, err)
	assert.True(t, IsDanglingReference(err))

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "b", se.Node)
	assert.Equal(t, 1, se.Stage)
	assert.Contains(t, se.Message, `"a"`)
}

func TestBuildStageModulesDanglingOutput(t *testing.T) {
	g := testutil.NewGraph("p").
		Input("x").
		Call("a", "f", "%x").
		Output("out", "%a").
		Build()
	stages := mustPartition(t, g)

	broken := &resolution{
		inputs:  [][]string{{"x"}},
		outputs: [][]string{{"ghost"}},
	}
	_, err := buildStageModules(g, stages, broken, ownedParams(g, stages), "out")
	require.Error(t, err)
	assert.True(t, IsDanglingReference(err))

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 0, se.Stage)
}
