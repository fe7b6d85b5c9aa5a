package testutil

import (
	"fmt"
	"strings"

	"github.com/pipecut/pipecut/internal/graph"
)

// GraphBuilder assembles test graphs fluently. Argument strings follow the
// capture convention: "%name" references an earlier instruction, "%%text"
// is the string literal "%text", any other string is a plain literal; ints
// and bools map to the matching literal kinds.
//
//	g := testutil.NewGraph("mlp").
//		Input("x").
//		Attr("w0", "fc.weight").
//		Call("lin", "linear", "%x", "%w0").
//		Split("s0").
//		Call("act", "relu", "%lin").
//		Output("out", "%act").
//		Build()
//
// The builder performs no validation; invalid graphs are buildable on
// purpose so error paths can be tested.
type GraphBuilder struct {
	g *graph.Graph
}

// NewGraph creates a builder for a graph with the given program name.
func NewGraph(name string) *GraphBuilder {
	return &GraphBuilder{g: &graph.Graph{Name: name}}
}

// Input appends a placeholder.
func (b *GraphBuilder) Input(name string) *GraphBuilder {
	return b.node(&graph.Node{Name: name, Op: graph.OpPlaceholder})
}

// Attr appends an attribute read of the parameter target.
func (b *GraphBuilder) Attr(name, target string) *GraphBuilder {
	return b.node(&graph.Node{Name: name, Op: graph.OpAttr, Target: target})
}

// Call appends a function call.
func (b *GraphBuilder) Call(name, target string, args ...any) *GraphBuilder {
	return b.node(&graph.Node{Name: name, Op: graph.OpCall, Target: target, Inputs: values(args)})
}

// Module appends an opaque module call.
func (b *GraphBuilder) Module(name, target string, args ...any) *GraphBuilder {
	return b.node(&graph.Node{Name: name, Op: graph.OpModule, Target: target, Inputs: values(args)})
}

// Item appends a get-item extracting position index from src.
func (b *GraphBuilder) Item(name, src string, index int) *GraphBuilder {
	return b.node(&graph.Node{Name: name, Op: graph.OpItem, Inputs: values([]any{src}), Index: index})
}

// Split appends a stage-boundary marker.
func (b *GraphBuilder) Split(name string) *GraphBuilder {
	return b.node(&graph.Node{Name: name, Op: graph.OpSplit})
}

// Output appends the terminal output instruction.
func (b *GraphBuilder) Output(name string, args ...any) *GraphBuilder {
	return b.node(&graph.Node{Name: name, Op: graph.OpOutput, Inputs: values(args)})
}

// Origin sets the origin of the most recently appended instruction.
func (b *GraphBuilder) Origin(origin string) *GraphBuilder {
	b.g.Nodes[len(b.g.Nodes)-1].Origin = origin
	return b
}

// ModuleParams declares the parameters owned by an opaque module target.
func (b *GraphBuilder) ModuleParams(target string, params ...string) *GraphBuilder {
	if b.g.ModuleParams == nil {
		b.g.ModuleParams = make(map[string][]string)
	}
	b.g.ModuleParams[target] = params
	return b
}

// Build returns the assembled graph.
func (b *GraphBuilder) Build() *graph.Graph {
	return b.g
}

func (b *GraphBuilder) node(n *graph.Node) *GraphBuilder {
	b.g.Nodes = append(b.g.Nodes, n)
	return b
}

func values(args []any) []graph.Value {
	if len(args) == 0 {
		return nil
	}
	out := make([]graph.Value, len(args))
	for i, a := range args {
		out[i] = value(a)
	}
	return out
}

func value(a any) graph.Value {
	switch v := a.(type) {
	case string:
		if strings.HasPrefix(v, "%%") {
			return graph.StrLit(v[1:])
		}
		if strings.HasPrefix(v, "%") {
			return graph.Ref{Node: v[1:]}
		}
		return graph.StrLit(v)
	case int:
		return graph.IntLit(int64(v))
	case int64:
		return graph.IntLit(v)
	case bool:
		return graph.BoolLit(v)
	case graph.Value:
		return v
	default:
		panic(fmt.Sprintf("testutil: unsupported argument type %T", a))
	}
}
