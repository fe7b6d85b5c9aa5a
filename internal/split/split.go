package split

import (
	"github.com/sirupsen/logrus"

	"github.com/pipecut/pipecut/internal/graph"
	"github.com/pipecut/pipecut/internal/pipe"
)

// Split partitions a marker-annotated graph into a pipe IR under the given
// policy config. The input graph is never mutated; identical input and
// config produce a byte-identical result. Errors are *Error values — see
// the package codes.
func Split(g *graph.Graph, cfg Config) (*pipe.IR, error) {
	if err := cfg.Validate(); err != nil {
		return nil, NewConflictingPolicyError("", err.Error())
	}
	if err := ValidateGraph(g); err != nil {
		return nil, err
	}

	markers, err := ScanMarkers(g)
	if err != nil {
		return nil, err
	}
	stages, err := partition(g, markers)
	if err != nil {
		return nil, err
	}
	logrus.Debugf("split %s: %d markers, %d stages", g.Name, len(markers), len(stages))

	uses := analyzeParams(g, stages)
	output, replicas, err := applyPolicy(g, stages, uses, cfg)
	if err != nil {
		return nil, err
	}
	logrus.Debugf("split %s: %d parameters referenced, %d replicated", g.Name, len(uses), len(replicas))

	res := resolveDeps(g, stages, output)
	logrus.Debugf("split %s: %d cross-stage edges", g.Name, len(res.edges))

	modules, err := buildStageModules(g, stages, res, ownedParams(g, stages), output.Name)
	if err != nil {
		return nil, err
	}
	orch, err := assemble(g, modules, output)
	if err != nil {
		return nil, err
	}

	ir := &pipe.IR{
		Graph:    orch,
		Stages:   modules,
		Edges:    res.edges,
		Replicas: replicas,
	}
	logrus.Debugf("split %s: assembled pipe:\n%s", g.Name, ir.Render())
	return ir, nil
}
