package pipe

import "github.com/pipecut/pipecut/internal/graph"

// CanonicalMap converts the IR to the plain-map form used for canonical
// JSON and hashing. Empty edge lists and replication records are omitted;
// stage field omission follows the same rule.
func (ir *IR) CanonicalMap() map[string]any {
	stages := make([]any, len(ir.Stages))
	for i, s := range ir.Stages {
		stages[i] = s.canonicalMap()
	}
	m := map[string]any{
		"orchestration": ir.Graph.CanonicalMap(),
		"stages":        stages,
	}
	if len(ir.Edges) > 0 {
		edges := make([]any, len(ir.Edges))
		for i, e := range ir.Edges {
			edges[i] = map[string]any{
				"producer": int64(e.Producer),
				"value":    e.Value,
				"consumer": int64(e.Consumer),
				"pos":      int64(e.Pos),
			}
		}
		m["edges"] = edges
	}
	if len(ir.Replicas) > 0 {
		replicas := make([]any, len(ir.Replicas))
		for i, r := range ir.Replicas {
			copies := make([]any, len(r.Copies))
			for j, c := range r.Copies {
				copies[j] = map[string]any{
					"stage": c.Stage,
					"param": c.Param,
				}
			}
			replicas[i] = map[string]any{
				"param":  r.Param,
				"copies": copies,
			}
		}
		m["replicas"] = replicas
	}
	return m
}

func (s *StageModule) canonicalMap() map[string]any {
	m := map[string]any{
		"name":  s.Name,
		"index": int64(s.Index),
		"graph": s.Graph.CanonicalMap(),
	}
	if len(s.Inputs) > 0 {
		m["inputs"] = toAny(s.Inputs)
	}
	if len(s.Outputs) > 0 {
		m["outputs"] = toAny(s.Outputs)
	}
	if len(s.Params) > 0 {
		m["params"] = toAny(s.Params)
	}
	return m
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// CanonicalJSON serializes the IR to canonical JSON. This is the only JSON
// form the IR has; the store and the -o flag both write it.
func (ir *IR) CanonicalJSON() ([]byte, error) {
	return graph.MarshalCanonical(ir.CanonicalMap())
}

// Hash returns the IR's content-addressed identity.
func (ir *IR) Hash() (string, error) {
	return graph.HashCanonical(graph.DomainPipe, ir.CanonicalMap())
}

// MustHash is like Hash but panics on error. Use in tests.
func (ir *IR) MustHash() string {
	h, err := ir.Hash()
	if err != nil {
		panic(err)
	}
	return h
}
