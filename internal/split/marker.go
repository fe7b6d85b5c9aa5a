package split

import (
	"fmt"

	"github.com/pipecut/pipecut/internal/graph"
)

// ScanMarkers returns the ordered positions (indices into g.Nodes) of the
// split markers. Markers must be zero-arity: a marker with inputs or users
// is MALFORMED_MARKER. No side effects.
func ScanMarkers(g *graph.Graph) ([]int, error) {
	users := g.Users()
	var positions []int
	for i, n := range g.Nodes {
		if n.Op != graph.OpSplit {
			continue
		}
		if len(n.Inputs) > 0 {
			return nil, NewMalformedMarkerError(n.Name, fmt.Sprintf("has %d inputs", len(n.Inputs)))
		}
		if refs := users[n.Name]; len(refs) > 0 {
			return nil, NewMalformedMarkerError(n.Name, fmt.Sprintf("used by %q", refs[0].Name))
		}
		positions = append(positions, i)
	}
	return positions, nil
}
