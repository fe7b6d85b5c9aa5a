package split

import "github.com/pipecut/pipecut/internal/graph"

// stageDraft is one contiguous run of body instructions between markers.
// Drafts start out holding pointers into the input graph; the policy pass
// swaps in rewritten clones where needed, so the input is never mutated.
type stageDraft struct {
	index int
	nodes []*graph.Node
}

// contains reports whether the draft body defines name.
func (s *stageDraft) contains(name string) bool {
	for _, n := range s.nodes {
		if n.Name == name {
			return true
		}
	}
	return false
}

// partition cuts the graph body at the given marker positions into
// markers+1 stage drafts. Placeholders and the terminal output belong to no
// stage; a draft left without body instructions is EMPTY_STAGE.
func partition(g *graph.Graph, markers []int) ([]*stageDraft, error) {
	stages := make([]*stageDraft, len(markers)+1)
	for i := range stages {
		stages[i] = &stageDraft{index: i}
	}

	cur, next := 0, 0
	for i, n := range g.Nodes {
		if next < len(markers) && i == markers[next] {
			cur++
			next++
			continue
		}
		if !n.BodyOp() {
			continue
		}
		stages[cur].nodes = append(stages[cur].nodes, n)
	}

	for _, s := range stages {
		if len(s.nodes) == 0 {
			return nil, NewEmptyStageError(s.index)
		}
	}
	return stages, nil
}
