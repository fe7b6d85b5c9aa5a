package split

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipecut/pipecut/internal/graph"
	"github.com/pipecut/pipecut/internal/testutil"
)

func TestScanMarkersPositions(t *testing.T) {
	g := testutil.NewGraph("p").
		Input("x").
		Call("a", "f", "%x").
		Split("s0").
		Call("b", "g", "%a").
		Split("s1").
		Call("c", "h", "%b").
		Output("out", "%c").
		Build()

	positions, err := ScanMarkers(g)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4}, positions)
}

func TestScanMarkersNone(t *testing.T) {
	g := testutil.NewGraph("p").
		Input("x").
		Call("a", "f", "%x").
		Output("out", "%a").
		Build()

	positions, err := ScanMarkers(g)
	require.NoError(t, err)
	assert.Empty(t, positions)
}

func TestScanMarkersRejectsMarkerWithInputs(t *testing.T) {
	g := &graph.Graph{
		Name: "p",
		Nodes: []*graph.Node{
			{Name: "x", Op: graph.OpPlaceholder},
			{Name: "a", Op: graph.OpCall, Target: "f", Inputs: []graph.Value{graph.Ref{Node: "x"}}},
			{Name: "s0", Op: graph.OpSplit, Inputs: []graph.Value{graph.Ref{Node: "a"}}},
			{Name: "out", Op: graph.OpOutput, Inputs: []graph.Value{graph.Ref{Node: "a"}}},
		},
	}

	_, err := ScanMarkers(g)
	require.Error(t, err)
	assert.True(t, IsMalformedMarker(err))

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "s0", se.Node)
	assert.Contains(t, se.Message, "1 inputs")
}

func TestScanMarkersRejectsMarkerWithUsers(t *testing.T) {
	g := testutil.NewGraph("p").
		Input("x").
		Split("s0").
		Call("a", "f", "%s0").
		Output("out", "%a").
		Build()

	_, err := ScanMarkers(g)
	require.Error(t, err)
	assert.True(t, IsMalformedMarker(err))

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "s0", se.Node)
	assert.Contains(t, se.Message, `used by "a"`)
}
