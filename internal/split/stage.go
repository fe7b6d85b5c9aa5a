package split

import (
	"github.com/pipecut/pipecut/internal/graph"
	"github.com/pipecut/pipecut/internal/pipe"
)

// buildStageModules materializes each draft as a self-contained callable
// unit: a well-formed flat graph with one placeholder per input (input-list
// order), the body instructions, and a terminal output returning the output
// list in order. outputName is the original program's terminal instruction
// name, reused for every stage's output instruction; it cannot collide with
// body or input names because names are unique in the input graph.
//
// A body reference to a value in neither the body nor the input list is
// DANGLING_REFERENCE: the resolver failed to route a dependency. That is an
// internal defect, never a property of user input.
func buildStageModules(g *graph.Graph, stages []*stageDraft, res *resolution, owned [][]string, outputName string) ([]*pipe.StageModule, error) {
	modules := make([]*pipe.StageModule, len(stages))
	for _, s := range stages {
		i := s.index
		inputs := res.inputs[i]
		outputs := res.outputs[i]

		available := make(map[string]bool, len(inputs)+len(s.nodes))
		nodes := make([]*graph.Node, 0, len(inputs)+len(s.nodes)+1)
		for _, in := range inputs {
			available[in] = true
			nodes = append(nodes, &graph.Node{Name: in, Op: graph.OpPlaceholder})
		}
		for _, n := range s.nodes {
			for _, ref := range n.Refs() {
				if !available[ref] {
					return nil, NewDanglingReferenceError(n.Name, ref, i)
				}
			}
			available[n.Name] = true
			nodes = append(nodes, n)
		}

		returns := make([]graph.Value, len(outputs))
		for j, out := range outputs {
			if !available[out] {
				return nil, NewDanglingReferenceError(outputName, out, i)
			}
			returns[j] = graph.Ref{Node: out}
		}
		nodes = append(nodes, &graph.Node{Name: outputName, Op: graph.OpOutput, Inputs: returns})

		modules[i] = &pipe.StageModule{
			Name:  pipe.StageName(i),
			Index: i,
			Graph: &graph.Graph{
				Name:         pipe.StageName(i),
				Nodes:        nodes,
				ModuleParams: calledModules(g, s),
			},
			Inputs:  inputs,
			Outputs: outputs,
			Params:  owned[i],
		}
	}
	return modules, nil
}

// calledModules restricts the graph's module table to the sub-components
// the draft body actually calls. Nil when the body calls none.
func calledModules(g *graph.Graph, s *stageDraft) map[string][]string {
	var table map[string][]string
	for _, n := range s.nodes {
		if n.Op != graph.OpModule {
			continue
		}
		params, ok := g.ModuleParams[n.Target]
		if !ok {
			continue
		}
		if table == nil {
			table = make(map[string][]string)
		}
		table[n.Target] = params
	}
	return table
}
