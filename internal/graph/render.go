package graph

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// FormatValue renders one input value: references as %name, literals as Go
// literals. The forms are unambiguous — a string literal is always quoted,
// so "%x" the literal cannot be confused with %x the reference.
func FormatValue(v Value) string {
	switch val := v.(type) {
	case Ref:
		return "%" + val.Node
	case IntLit:
		return strconv.FormatInt(int64(val), 10)
	case StrLit:
		return strconv.Quote(string(val))
	case BoolLit:
		return strconv.FormatBool(bool(val))
	default:
		return "?"
	}
}

// FormatNode renders one instruction as a single line, fx-style.
func FormatNode(n *Node) string {
	var b strings.Builder
	switch n.Op {
	case OpPlaceholder:
		fmt.Fprintf(&b, "%%%s : placeholder", n.Name)
	case OpSplit:
		fmt.Fprintf(&b, "split %%%s", n.Name)
	case OpOutput:
		fmt.Fprintf(&b, "output(%s)", formatArgs(n.Inputs))
	case OpAttr:
		fmt.Fprintf(&b, "%%%s = attr %s", n.Name, n.Target)
	case OpItem:
		fmt.Fprintf(&b, "%%%s = item %s[%d]", n.Name, formatArgs(n.Inputs), n.Index)
	default:
		fmt.Fprintf(&b, "%%%s = %s %s(%s)", n.Name, n.Op, n.Target, formatArgs(n.Inputs))
	}
	if n.Origin != "" {
		fmt.Fprintf(&b, "  # from %s", n.Origin)
	}
	return b.String()
}

func formatArgs(inputs []Value) string {
	parts := make([]string, len(inputs))
	for i, in := range inputs {
		parts[i] = FormatValue(in)
	}
	return strings.Join(parts, ", ")
}

// WriteText writes the instruction list, one line per node, each prefixed
// with indent. Output is byte-identical across runs on the same graph.
func (g *Graph) WriteText(w io.Writer, indent string) {
	for _, n := range g.Nodes {
		fmt.Fprintf(w, "%s%s\n", indent, FormatNode(n))
	}
}

// Text renders the instruction list with no indent.
func (g *Graph) Text() string {
	var b strings.Builder
	g.WriteText(&b, "")
	return b.String()
}
