package graph

// Op identifies the kind of an instruction. Instructions are a tagged
// variant: components dispatch on Op rather than on concrete types.
type Op string

const (
	// OpPlaceholder is a program input. Placeholders carry no inputs and
	// are never owned by a stage body.
	OpPlaceholder Op = "placeholder"

	// OpCall invokes a free function named by Target.
	OpCall Op = "call"

	// OpModule invokes an opaque sub-component named by Target. The
	// parameters the sub-component owns are listed in Graph.ModuleParams.
	OpModule Op = "module"

	// OpAttr reads the parameter whose qualified name is Target. An attr
	// read is the visible form of parameter access: the partitioner can
	// see it, move it, and forward its value.
	OpAttr Op = "attr"

	// OpItem extracts position Index from a composite value (single input).
	OpItem Op = "item"

	// OpOutput is the single terminal instruction; its inputs are the
	// program's return values.
	OpOutput Op = "output"

	// OpSplit is a zero-arity stage-boundary marker.
	OpSplit Op = "split"
)

// Valid reports whether op is one of the defined instruction kinds.
func (op Op) Valid() bool {
	switch op {
	case OpPlaceholder, OpCall, OpModule, OpAttr, OpItem, OpOutput, OpSplit:
		return true
	}
	return false
}

// Value is a sealed interface over instruction inputs.
// Only Ref, IntLit, StrLit, and BoolLit implement it.
// NO float variant — floats are forbidden in the IR.
type Value interface {
	value() // Sealed - only these types implement it
}

// Ref references an earlier instruction by name.
type Ref struct {
	Node string
}

func (Ref) value() {}

// IntLit is an integer literal input. Always int64, never float64.
type IntLit int64

func (IntLit) value() {}

// StrLit is a string literal input. Capture front-ends also use it for
// constants with no IR representation (e.g. stringified floats).
type StrLit string

func (StrLit) value() {}

// BoolLit is a boolean literal input.
type BoolLit bool

func (BoolLit) value() {}

// Node is one instruction in the flat graph.
type Node struct {
	// Name uniquely identifies the instruction within its graph.
	Name string

	// Op is the instruction kind tag.
	Op Op

	// Target is the callee for OpCall, the sub-component qualified name
	// for OpModule, and the parameter qualified name for OpAttr. Empty
	// for the other kinds.
	Target string

	// Inputs is the ordered list of input values.
	Inputs []Value

	// Index is the extracted position for OpItem; unused otherwise.
	Index int

	// Origin is the qualified name of the sub-component this instruction
	// was traced from, when the capture front-end recorded one.
	Origin string
}

// Refs returns the names of instructions referenced by n's inputs, in input
// order, literals skipped. Duplicates are preserved.
func (n *Node) Refs() []string {
	var refs []string
	for _, in := range n.Inputs {
		if r, ok := in.(Ref); ok {
			refs = append(refs, r.Node)
		}
	}
	return refs
}

// BodyOp reports whether n belongs to a stage body. Placeholders, markers,
// and the terminal output are structural: they shape the pipeline but are
// never owned by a stage.
func (n *Node) BodyOp() bool {
	switch n.Op {
	case OpPlaceholder, OpOutput, OpSplit:
		return false
	}
	return true
}
