package split

import "github.com/pipecut/pipecut/internal/graph"

// ParamUse describes how one parameter is referenced across stages.
type ParamUse struct {
	// Param is the parameter's qualified name.
	Param string

	// Stages is the ascending list of distinct stage indices using it.
	Stages []int

	// Opaque is true when any use goes through an opaque module call:
	// the partitioner sees only the call, not the parameter's access, so
	// the value can never be transmitted.
	Opaque bool
}

// MultiUse reports whether the parameter is used by two or more stages.
func (u *ParamUse) MultiUse() bool {
	return len(u.Stages) >= 2
}

// analyzeParams scans the stage bodies once, in order, and returns every
// referenced parameter in first-discovery order. An attribute read is a
// visible use of its target; an opaque module call is an opaque use of
// every parameter the module owns per the graph's module table. A single
// opaque use marks the whole parameter opaque.
func analyzeParams(g *graph.Graph, stages []*stageDraft) []*ParamUse {
	var order []*ParamUse
	byName := make(map[string]*ParamUse)

	record := func(param string, stage int, opaque bool) {
		u := byName[param]
		if u == nil {
			u = &ParamUse{Param: param}
			byName[param] = u
			order = append(order, u)
		}
		if len(u.Stages) == 0 || u.Stages[len(u.Stages)-1] != stage {
			u.Stages = append(u.Stages, stage)
		}
		if opaque {
			u.Opaque = true
		}
	}

	for _, s := range stages {
		for _, n := range s.nodes {
			switch n.Op {
			case graph.OpAttr:
				record(n.Target, s.index, false)
			case graph.OpModule:
				for _, p := range g.ModuleParams[n.Target] {
					record(p, s.index, true)
				}
			}
		}
	}
	return order
}
