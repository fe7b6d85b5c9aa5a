package split

import (
	"github.com/pipecut/pipecut/internal/graph"
	"github.com/pipecut/pipecut/internal/pipe"
)

// resolution is the dependency resolver's result: per-stage ordered input
// and output lists plus every cross-stage edge.
type resolution struct {
	inputs  [][]string
	outputs [][]string
	edges   []pipe.Edge
}

// resolveDeps computes cross-stage dataflow in a single forward scan of the
// stage bodies. All list orders are append-once discovery orders, which
// makes call signatures reproducible across runs:
//
//   - Stage 0's input list starts as the full placeholder list in program
//     order; the pipeline head receives the program's arguments whether or
//     not stage 0 uses them.
//   - A stage's further inputs are appended at first local use, so
//     locally-used values precede pure pass-throughs (pass-through needs
//     are only discovered while scanning later consumers).
//   - A value produced in stage p and consumed in stage c rides through
//     every stage in between: inputs of p+1..c, outputs of p..c-1.
//   - Values the terminal output consumes join their producing stage's
//     output list; the orchestration graph reads them straight from that
//     stage's result, so no edge and no forwarding is recorded for them.
//
// Edges carry the consumer-side input position. Duplicate consumption of
// one value by one stage yields one input entry and one edge.
//
// resolveDeps runs after validation and marker scanning; by then every
// reference resolves to a placeholder or an earlier body instruction, so it
// cannot fail.
func resolveDeps(g *graph.Graph, stages []*stageDraft, output *graph.Node) *resolution {
	n := len(stages)
	r := &resolution{
		inputs:  make([][]string, n),
		outputs: make([][]string, n),
	}
	inSet := make([]map[string]bool, n)
	outSet := make([]map[string]bool, n)
	for i := 0; i < n; i++ {
		inSet[i] = make(map[string]bool)
		outSet[i] = make(map[string]bool)
	}

	producer := make(map[string]int)
	for _, s := range stages {
		for _, node := range s.nodes {
			producer[node.Name] = s.index
		}
	}
	placeholder := make(map[string]bool)
	for _, ph := range g.Placeholders() {
		placeholder[ph.Name] = true
		inSet[0][ph.Name] = true
		r.inputs[0] = append(r.inputs[0], ph.Name)
	}

	addInput := func(i int, v string) {
		if !inSet[i][v] {
			inSet[i][v] = true
			r.inputs[i] = append(r.inputs[i], v)
		}
	}
	addOutput := func(i int, v string) {
		if !outSet[i][v] {
			outSet[i][v] = true
			r.outputs[i] = append(r.outputs[i], v)
		}
	}

	for _, s := range stages {
		c := s.index
		local := make(map[string]bool, len(s.nodes))
		for _, node := range s.nodes {
			local[node.Name] = true
		}
		for _, node := range s.nodes {
			for _, ref := range node.Refs() {
				if local[ref] {
					continue
				}
				p := 0
				if !placeholder[ref] {
					p = producer[ref]
				}
				if p == c {
					// Placeholder consumed by stage 0: already at the
					// head of its input list, nothing crosses a cut.
					continue
				}
				if inSet[c][ref] {
					continue
				}
				addInput(c, ref)
				r.edges = append(r.edges, pipe.Edge{
					Producer: p,
					Value:    ref,
					Consumer: c,
					Pos:      len(r.inputs[c]) - 1,
				})
				for i := p + 1; i < c; i++ {
					addInput(i, ref)
				}
				for i := p; i < c; i++ {
					addOutput(i, ref)
				}
			}
		}
	}

	for _, ref := range output.Refs() {
		if placeholder[ref] {
			continue
		}
		addOutput(producer[ref], ref)
	}
	return r
}
