package pipe

import (
	"fmt"
	"io"
	"strings"
)

// Render produces the stable text form of the IR: the orchestration graph,
// each stage module with its signature and body, the edge list, and the
// replication record. Byte-identical across runs on identical input; golden
// tests pin the format.
func (ir *IR) Render() string {
	var b strings.Builder
	ir.WriteRender(&b)
	return b.String()
}

// WriteRender writes the rendered form to w.
func (ir *IR) WriteRender(w io.Writer) {
	fmt.Fprintf(w, "pipe %s (%s)\n", ir.Graph.Name, plural(len(ir.Stages), "stage"))

	fmt.Fprintf(w, "\norchestration:\n")
	ir.Graph.WriteText(w, "  ")

	for _, s := range ir.Stages {
		fmt.Fprintf(w, "\n%s:\n", s.Name)
		if len(s.Inputs) > 0 {
			fmt.Fprintf(w, "  inputs:  %s\n", strings.Join(s.Inputs, ", "))
		}
		if len(s.Outputs) > 0 {
			fmt.Fprintf(w, "  outputs: %s\n", strings.Join(s.Outputs, ", "))
		}
		if len(s.Params) > 0 {
			fmt.Fprintf(w, "  params:  %s\n", strings.Join(s.Params, ", "))
		}
		fmt.Fprintf(w, "  body:\n")
		s.Graph.WriteText(w, "    ")
	}

	if len(ir.Edges) > 0 {
		fmt.Fprintf(w, "\nedges:\n")
		for _, e := range ir.Edges {
			fmt.Fprintf(w, "  %s: %s -> %s (pos %d)\n",
				e.Value, StageName(e.Producer), StageName(e.Consumer), e.Pos)
		}
	}

	if len(ir.Replicas) > 0 {
		fmt.Fprintf(w, "\nreplicas:\n")
		for _, r := range ir.Replicas {
			copies := make([]string, len(r.Copies))
			for i, c := range r.Copies {
				copies[i] = fmt.Sprintf("%s=%s", c.Stage, c.Param)
			}
			fmt.Fprintf(w, "  %s: %s\n", r.Param, strings.Join(copies, ", "))
		}
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
