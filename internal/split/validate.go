package split

import (
	"fmt"

	"github.com/pipecut/pipecut/internal/graph"
)

// ValidateGraph checks the structural rules a capture front-end must
// satisfy: unique instruction names, def-before-use references, exactly one
// terminal output instruction in last position, and per-kind arity. Marker
// arity is the scanner's concern; everything here surfaces as
// UNRESOLVABLE_REFERENCE.
//
// Split runs this first; the validate command exposes it directly.
func ValidateGraph(g *graph.Graph) error {
	// Full name census first, to tell forward references apart from
	// names that never exist.
	all := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		all[n.Name] = true
	}

	defined := make(map[string]bool, len(g.Nodes))
	outputAt := -1
	for i, n := range g.Nodes {
		if n.Name == "" {
			return NewUnresolvableReferenceError("", "instruction with empty name")
		}
		if !n.Op.Valid() {
			return NewUnresolvableReferenceError(n.Name,
				fmt.Sprintf("unknown instruction kind %q", n.Op))
		}
		if defined[n.Name] {
			return NewUnresolvableReferenceError(n.Name,
				fmt.Sprintf("duplicate instruction name %q", n.Name))
		}

		for _, ref := range n.Refs() {
			if defined[ref] {
				continue
			}
			if all[ref] {
				return NewUnresolvableReferenceError(n.Name,
					fmt.Sprintf("reference to %q before its definition", ref))
			}
			return NewUnresolvableReferenceError(n.Name,
				fmt.Sprintf("reference to undefined value %q", ref))
		}
		defined[n.Name] = true

		switch n.Op {
		case graph.OpPlaceholder:
			if len(n.Inputs) > 0 {
				return NewUnresolvableReferenceError(n.Name, "placeholder with inputs")
			}
		case graph.OpItem:
			if len(n.Inputs) != 1 {
				return NewUnresolvableReferenceError(n.Name,
					fmt.Sprintf("get-item needs exactly one input, got %d", len(n.Inputs)))
			}
			if _, ok := n.Inputs[0].(graph.Ref); !ok {
				return NewUnresolvableReferenceError(n.Name, "get-item of a literal")
			}
			if n.Index < 0 {
				return NewUnresolvableReferenceError(n.Name,
					fmt.Sprintf("negative get-item index %d", n.Index))
			}
		case graph.OpOutput:
			if outputAt >= 0 {
				return NewUnresolvableReferenceError(n.Name, "multiple output instructions")
			}
			outputAt = i
		}
	}

	if outputAt == -1 {
		return NewUnresolvableReferenceError("", "missing output instruction")
	}
	if outputAt != len(g.Nodes)-1 {
		return NewUnresolvableReferenceError(g.Nodes[outputAt+1].Name,
			"instruction after the output instruction")
	}
	return nil
}
