package graph

// Graph is a flat, topologically-ordered instruction graph as produced by a
// capture front-end, plus the parameter table for opaque sub-components.
//
// Nodes appear in def-before-use order. The graph is a DAG; cycles cannot be
// expressed because a Ref can only name an earlier instruction.
type Graph struct {
	// Name identifies the captured program.
	Name string

	// Nodes is the ordered instruction list.
	Nodes []*Node

	// ModuleParams maps an opaque sub-component qualified name (an
	// OpModule target) to the ordered qualified names of the parameters
	// it owns. Parameters reached only through entries here are opaque:
	// the partitioner cannot see their defining instructions.
	ModuleParams map[string][]string
}

// NodeByName returns an index from instruction name to node. Later
// duplicates win; structural validation rejects duplicate names before any
// component relies on this index.
func (g *Graph) NodeByName() map[string]*Node {
	idx := make(map[string]*Node, len(g.Nodes))
	for _, n := range g.Nodes {
		idx[n.Name] = n
	}
	return idx
}

// Users returns the def-use index: for each instruction name, the ordered
// list of instructions referencing it. An instruction consuming a value
// twice appears twice.
func (g *Graph) Users() map[string][]*Node {
	users := make(map[string][]*Node)
	for _, n := range g.Nodes {
		for _, ref := range n.Refs() {
			users[ref] = append(users[ref], n)
		}
	}
	return users
}

// Placeholders returns the program inputs in program order.
func (g *Graph) Placeholders() []*Node {
	var ps []*Node
	for _, n := range g.Nodes {
		if n.Op == OpPlaceholder {
			ps = append(ps, n)
		}
	}
	return ps
}

// Output returns the terminal output instruction, or nil if the graph has
// none (structural validation treats that as malformed input).
func (g *Graph) Output() *Node {
	for _, n := range g.Nodes {
		if n.Op == OpOutput {
			return n
		}
	}
	return nil
}

// CanonicalMap converts the graph to the plain-map form used by canonical
// JSON serialization and content hashing. Empty fields are omitted so the
// canonical form never depends on zero-value noise.
func (g *Graph) CanonicalMap() map[string]any {
	nodes := make([]any, len(g.Nodes))
	for i, n := range g.Nodes {
		nodes[i] = n.CanonicalMap()
	}
	m := map[string]any{
		"name":  g.Name,
		"nodes": nodes,
	}
	if len(g.ModuleParams) > 0 {
		mods := make(map[string]any, len(g.ModuleParams))
		for target, params := range g.ModuleParams {
			ps := make([]any, len(params))
			for i, p := range params {
				ps[i] = p
			}
			mods[target] = ps
		}
		m["modules"] = mods
	}
	return m
}

// CanonicalMap converts one instruction to its canonical plain-map form.
func (n *Node) CanonicalMap() map[string]any {
	m := map[string]any{
		"name": n.Name,
		"op":   string(n.Op),
	}
	if n.Target != "" {
		m["target"] = n.Target
	}
	if len(n.Inputs) > 0 {
		args := make([]any, len(n.Inputs))
		for i, in := range n.Inputs {
			args[i] = canonicalValue(in)
		}
		m["args"] = args
	}
	if n.Op == OpItem {
		m["index"] = int64(n.Index)
	}
	if n.Origin != "" {
		m["origin"] = n.Origin
	}
	return m
}

// canonicalValue converts a Value to its tagged map form. The tag makes a
// reference to instruction "x" distinguishable from the string literal "x".
func canonicalValue(v Value) map[string]any {
	switch val := v.(type) {
	case Ref:
		return map[string]any{"ref": val.Node}
	case IntLit:
		return map[string]any{"int": int64(val)}
	case StrLit:
		return map[string]any{"str": string(val)}
	case BoolLit:
		return map[string]any{"bool": bool(val)}
	default:
		// Sealed interface; unreachable for well-formed values.
		return map[string]any{"invalid": true}
	}
}
