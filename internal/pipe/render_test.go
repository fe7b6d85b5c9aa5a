package pipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderTwoStages(t *testing.T) {
	expected := `pipe mlp (2 stages)

orchestration:
  %x : placeholder
  %stage0_out = module stage0(%x)
  %stage1_out = module stage1(%stage0_out)
  output(%stage1_out)

stage0:
  inputs:  x
  outputs: lin0
  params:  encoder.weight
  body:
    %x : placeholder
    %w0 = attr encoder.weight
    %lin0 = call linear(%x, %w0)
    output(%lin0)

stage1:
  inputs:  lin0
  outputs: r0
  body:
    %lin0 : placeholder
    %r0 = call relu(%lin0)
    output(%r0)

edges:
  lin0: stage0 -> stage1 (pos 0)
`
	assert.Equal(t, expected, linearReluIR().Render())
}

func TestRenderReplicas(t *testing.T) {
	ir := linearReluIR()
	ir.Replicas = ReplicationRecord{
		{
			Param: "shared.scale",
			Copies: []ReplicaCopy{
				{Stage: "stage0", Param: "shared.scale"},
				{Stage: "stage1", Param: "shared.scale"},
			},
		},
	}

	out := ir.Render()
	assert.Contains(t, out, "replicas:\n  shared.scale: stage0=shared.scale, stage1=shared.scale\n")
}

func TestRenderSingleStageOmitsEdges(t *testing.T) {
	ir := linearReluIR()
	ir.Stages = ir.Stages[:1]
	ir.Edges = nil

	out := ir.Render()
	assert.Contains(t, out, "pipe mlp (1 stage)\n")
	assert.NotContains(t, out, "edges:")
	assert.NotContains(t, out, "replicas:")
}

func TestRenderDeterministic(t *testing.T) {
	first := linearReluIR().Render()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, linearReluIR().Render())
	}
}
