package capture

import (
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/pipecut/pipecut/internal/graph"
)

// bodyOps maps capture op keywords to graph ops. Placeholder is absent on
// purpose: placeholders are synthesized from the inputs list, never written
// in the body.
var bodyOps = map[string]graph.Op{
	"call":   graph.OpCall,
	"module": graph.OpModule,
	"attr":   graph.OpAttr,
	"item":   graph.OpItem,
	"split":  graph.OpSplit,
	"output": graph.OpOutput,
}

// LoadProgram reads a capture file from disk and compiles it into a graph.
func LoadProgram(path string) (*graph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &CompileError{
			Field:   "program",
			Message: fmt.Sprintf("reading capture file: %v", err),
		}
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	pv := v.LookupPath(cue.ParsePath("program"))
	if !pv.Exists() {
		return nil, &CompileError{
			Field:   "program",
			Message: "capture file must define a program struct",
			Pos:     v.Pos(),
		}
	}
	return CompileProgram(pv)
}

// CompileProgram parses a CUE value into an instruction graph.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the program struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`program: { name: "mlp", ... }`)
//	g, err := CompileProgram(v.LookupPath(cue.ParsePath("program")))
//
// The result carries whatever the file says; run split.ValidateGraph before
// partitioning to enforce the structural graph rules.
func CompileProgram(v cue.Value) (*graph.Graph, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	g := &graph.Graph{}

	// Parse name (required)
	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return nil, &CompileError{
			Field:   "name",
			Message: "program name is required",
			Pos:     v.Pos(),
		}
	}
	name, err := nameVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	g.Name = name

	// Parse inputs (optional) - each becomes a leading placeholder
	inputs, err := parseInputs(v)
	if err != nil {
		return nil, err
	}
	for _, in := range inputs {
		g.Nodes = append(g.Nodes, &graph.Node{Name: in, Op: graph.OpPlaceholder})
	}

	// Parse modules (optional) - the module-parameter table
	g.ModuleParams, err = parseModules(v)
	if err != nil {
		return nil, err
	}

	// Parse body (required)
	bodyVal := v.LookupPath(cue.ParsePath("body"))
	if !bodyVal.Exists() {
		return nil, &CompileError{
			Field:   "body",
			Message: "program body is required",
			Pos:     v.Pos(),
		}
	}
	iter, err := bodyVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for i := 0; iter.Next(); i++ {
		node, err := parseInstruction(iter.Value(), i)
		if err != nil {
			return nil, err
		}
		g.Nodes = append(g.Nodes, node)
	}

	return g, nil
}

// parseInputs extracts the program input names in declaration order.
func parseInputs(v cue.Value) ([]string, error) {
	inputsVal := v.LookupPath(cue.ParsePath("inputs"))
	if !inputsVal.Exists() {
		return nil, nil // inputs are optional
	}

	iter, err := inputsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var inputs []string
	for iter.Next() {
		name, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		inputs = append(inputs, name)
	}
	return inputs, nil
}

// parseModules extracts the module-parameter table.
func parseModules(v cue.Value) (map[string][]string, error) {
	modulesVal := v.LookupPath(cue.ParsePath("modules"))
	if !modulesVal.Exists() {
		return nil, nil // modules are optional
	}

	iter, err := modulesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	modules := make(map[string][]string)
	for iter.Next() {
		target := iter.Label()
		paramIter, err := iter.Value().List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		var params []string
		for paramIter.Next() {
			p, err := paramIter.Value().String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			params = append(params, p)
		}
		modules[target] = params
	}
	return modules, nil
}

// parseInstruction converts one body entry to a graph node.
func parseInstruction(v cue.Value, i int) (*graph.Node, error) {
	field := func(name string) string { return fmt.Sprintf("body[%d].%s", i, name) }

	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return nil, &CompileError{
			Field:   field("name"),
			Message: "instruction name is required",
			Pos:     v.Pos(),
		}
	}
	name, err := nameVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}

	opVal := v.LookupPath(cue.ParsePath("op"))
	if !opVal.Exists() {
		return nil, &CompileError{
			Field:   field("op"),
			Message: "instruction op is required",
			Pos:     v.Pos(),
		}
	}
	opName, err := opVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	op, ok := bodyOps[opName]
	if !ok {
		msg := fmt.Sprintf("unknown instruction op %q", opName)
		if opName == "placeholder" {
			msg = "placeholders are synthesized from the inputs list, not written in the body"
		}
		return nil, &CompileError{Field: field("op"), Message: msg, Pos: opVal.Pos()}
	}

	node := &graph.Node{Name: name, Op: op}

	if targetVal := v.LookupPath(cue.ParsePath("target")); targetVal.Exists() {
		node.Target, err = targetVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
	}

	if argsVal := v.LookupPath(cue.ParsePath("args")); argsVal.Exists() {
		argIter, err := argsVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for j := 0; argIter.Next(); j++ {
			val, err := parseArg(argIter.Value(), field(fmt.Sprintf("args[%d]", j)))
			if err != nil {
				return nil, err
			}
			node.Inputs = append(node.Inputs, val)
		}
	}

	if indexVal := v.LookupPath(cue.ParsePath("index")); indexVal.Exists() {
		idx, err := indexVal.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		node.Index = int(idx)
	}

	if originVal := v.LookupPath(cue.ParsePath("origin")); originVal.Exists() {
		node.Origin, err = originVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
	}

	return node, nil
}

// parseArg converts one args entry to a graph value. Strings beginning with
// "%" reference an instruction by name; "%%" escapes a literal leading
// percent sign. Floats are forbidden: capture front-ends record non-integer
// constants as opaque string literals.
func parseArg(v cue.Value, field string) (graph.Value, error) {
	switch v.Kind() {
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		if strings.HasPrefix(s, "%%") {
			return graph.StrLit(s[1:]), nil
		}
		if strings.HasPrefix(s, "%") {
			return graph.Ref{Node: s[1:]}, nil
		}
		return graph.StrLit(s), nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return graph.IntLit(n), nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return graph.BoolLit(b), nil
	case cue.FloatKind, cue.NumberKind:
		return nil, &CompileError{
			Field:   field,
			Message: "float literals are forbidden - quote non-integer constants as strings",
			Pos:     v.Pos(),
		}
	default:
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("unsupported literal kind: %v", v.Kind()),
			Pos:     v.Pos(),
		}
	}
}
