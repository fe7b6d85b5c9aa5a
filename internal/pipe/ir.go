package pipe

import (
	"strconv"

	"github.com/pipecut/pipecut/internal/graph"
)

// StageName returns the canonical qualifier for stage index i: "stage0",
// "stage1", ... The qualifier doubles as the module-call target in the
// orchestration graph and as the stage key in replication records.
func StageName(i int) string {
	return "stage" + strconv.Itoa(i)
}

// StageModule is one independently callable pipeline stage.
type StageModule struct {
	// Name is the stage qualifier, StageName(Index).
	Name string

	// Index is the zero-based stage position.
	Index int

	// Graph is the stage body as a self-contained flat graph: one
	// placeholder per input (in Inputs order), the body instructions, and
	// a terminal output returning the Outputs values in order.
	Graph *graph.Graph

	// Inputs is the ordered list of value names the stage consumes.
	// Arity and order are fixed; callers bind positionally.
	Inputs []string

	// Outputs is the ordered list of value names the stage produces for
	// consumers outside its body. More than one entry means the stage
	// returns a composite that downstream callers unpack by position.
	Outputs []string

	// Params is the ordered list of parameter qualified names the stage
	// owns, replicated copies included.
	Params []string
}

// OutputPos returns the position of value in the stage's output list, or -1.
func (s *StageModule) OutputPos(value string) int {
	for i, out := range s.Outputs {
		if out == value {
			return i
		}
	}
	return -1
}

// Composite reports whether the stage returns more than one value.
func (s *StageModule) Composite() bool {
	return len(s.Outputs) > 1
}

// Edge is one cross-stage value transfer. Producer and consumer need not be
// adjacent: the resolver materializes pass-throughs at every stage in
// between, and the edge records the logical endpoints.
type Edge struct {
	// Producer is the stage index that defines the value. Program inputs
	// consumed past the pipeline head are recorded with producer 0.
	Producer int

	// Value is the transferred value's name in the original graph.
	Value string

	// Consumer is the stage index whose body consumes the value.
	Consumer int

	// Pos is the value's position in the consumer's input list.
	Pos int
}

// ReplicaCopy names one stage-local physical copy of a replicated parameter.
type ReplicaCopy struct {
	// Stage is the owning stage's qualifier ("stage0", ...).
	Stage string

	// Param is the copy's qualified name local to that stage.
	Param string
}

// ReplicaEntry records all copies of one logically-shared parameter.
type ReplicaEntry struct {
	// Param is the parameter's qualified name in the original program.
	Param string

	// Copies lists the per-stage copies in ascending stage order.
	Copies []ReplicaCopy
}

// ReplicationRecord lists every replicated parameter in first-discovery
// order. The runtime walks it after each update step to keep copies in sync.
type ReplicationRecord []ReplicaEntry

// StagesOf returns the qualifiers holding copies of param, in record order,
// or nil when param is not replicated.
func (r ReplicationRecord) StagesOf(param string) []string {
	for _, e := range r {
		if e.Param != param {
			continue
		}
		stages := make([]string, len(e.Copies))
		for i, c := range e.Copies {
			stages[i] = c.Stage
		}
		return stages
	}
	return nil
}

// IR is the complete partitioning result. Immutable once assembled.
type IR struct {
	// Graph is the orchestration graph wiring stage calls together.
	Graph *graph.Graph

	// Stages holds the stage modules in index order.
	Stages []*StageModule

	// Edges lists every cross-stage transfer in resolution order.
	Edges []Edge

	// Replicas is the replication record.
	Replicas ReplicationRecord
}

// Stage returns the stage module at index i, or nil when out of range.
func (ir *IR) Stage(i int) *StageModule {
	if i < 0 || i >= len(ir.Stages) {
		return nil
	}
	return ir.Stages[i]
}

// EdgesInto returns the edges consumed by stage index c, in resolution order.
func (ir *IR) EdgesInto(c int) []Edge {
	var edges []Edge
	for _, e := range ir.Edges {
		if e.Consumer == c {
			edges = append(edges, e)
		}
	}
	return edges
}
