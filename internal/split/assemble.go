package split

import (
	"fmt"

	"github.com/pipecut/pipecut/internal/graph"
	"github.com/pipecut/pipecut/internal/pipe"
)

// assembler builds the orchestration graph: original placeholders, one
// module call per stage, lazily-synthesized unpack instructions for
// composite stage results, and the terminal output.
type assembler struct {
	nodes   []*graph.Node
	used    map[string]bool
	callOf  []string          // stage index -> call instruction name
	unpacks map[[2]int]string // (stage, output position) -> unpack name
}

// assemble wires the stage modules together. Stage 0 reads the
// orchestration placeholders; stage i>0 reads stage i-1's result — the
// resolver guarantees every input of stage i sits in stage i-1's output
// list. The output instruction reads each returned value straight from its
// producing stage's result (or from a placeholder), unpacking composites by
// position. Unpack instructions are deduplicated per (stage, position).
func assemble(g *graph.Graph, modules []*pipe.StageModule, output *graph.Node) (*graph.Graph, error) {
	a := &assembler{
		used:    make(map[string]bool),
		callOf:  make([]string, len(modules)),
		unpacks: make(map[[2]int]string),
	}

	placeholder := make(map[string]bool)
	for _, ph := range g.Placeholders() {
		placeholder[ph.Name] = true
		a.used[ph.Name] = true
		a.nodes = append(a.nodes, &graph.Node{Name: ph.Name, Op: graph.OpPlaceholder, Origin: ph.Origin})
	}
	a.used[output.Name] = true

	moduleParams := make(map[string][]string)
	for _, m := range modules {
		inputs := make([]graph.Value, len(m.Inputs))
		for j, in := range m.Inputs {
			if m.Index == 0 {
				inputs[j] = graph.Ref{Node: in}
				continue
			}
			inputs[j] = a.resultRef(modules[m.Index-1], in)
		}
		call := &graph.Node{
			Name:   a.unique(m.Name + "_out"),
			Op:     graph.OpModule,
			Target: m.Name,
			Inputs: inputs,
		}
		a.callOf[m.Index] = call.Name
		a.nodes = append(a.nodes, call)

		if len(m.Params) > 0 {
			moduleParams[m.Name] = m.Params
		}
	}

	byName := make(map[string]*pipe.StageModule)
	producerOf := make(map[string]*pipe.StageModule)
	for _, m := range modules {
		byName[m.Name] = m
		for _, out := range m.Outputs {
			producerOf[out] = m
		}
	}
	returns := make([]graph.Value, len(output.Inputs))
	for j, in := range output.Inputs {
		ref, ok := in.(graph.Ref)
		if !ok {
			returns[j] = in
			continue
		}
		if placeholder[ref.Node] {
			returns[j] = ref
			continue
		}
		returns[j] = a.resultRef(producerOf[ref.Node], ref.Node)
	}
	a.nodes = append(a.nodes, &graph.Node{Name: output.Name, Op: graph.OpOutput, Inputs: returns})

	orch := &graph.Graph{Name: g.Name, Nodes: a.nodes}
	if len(moduleParams) > 0 {
		orch.ModuleParams = moduleParams
	}
	if err := ValidateGraph(orch); err != nil {
		return nil, &Error{
			Code:    ErrCodeDanglingReference,
			Message: fmt.Sprintf("assembled orchestration graph failed validation: %v", err),
			Stage:   -1,
		}
	}
	return orch, nil
}

// resultRef returns a reference to value in stage m's result: the call
// instruction itself for a single-output stage, an unpack instruction for a
// composite one.
func (a *assembler) resultRef(m *pipe.StageModule, value string) graph.Value {
	if !m.Composite() {
		return graph.Ref{Node: a.callOf[m.Index]}
	}
	pos := m.OutputPos(value)
	key := [2]int{m.Index, pos}
	if name, ok := a.unpacks[key]; ok {
		return graph.Ref{Node: name}
	}
	unpack := &graph.Node{
		Name:   a.unique(fmt.Sprintf("%s_out%d", m.Name, pos)),
		Op:     graph.OpItem,
		Inputs: []graph.Value{graph.Ref{Node: a.callOf[m.Index]}},
		Index:  pos,
	}
	a.unpacks[key] = unpack.Name
	a.nodes = append(a.nodes, unpack)
	return graph.Ref{Node: unpack.Name}
}

// unique claims base, suffixing it when a program name already took it.
func (a *assembler) unique(base string) string {
	name := base
	for i := 2; a.used[name]; i++ {
		name = fmt.Sprintf("%s_%d", base, i)
	}
	a.used[name] = true
	return name
}
