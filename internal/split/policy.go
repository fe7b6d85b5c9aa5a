package split

import (
	"fmt"
	"sort"

	"github.com/pipecut/pipecut/internal/graph"
	"github.com/pipecut/pipecut/internal/pipe"
)

// applyPolicy resolves every multi-use parameter and returns the effective
// terminal output instruction plus the replication record.
//
// Transmit keeps the parameter in its earliest-using stage: that stage's
// first attribute read becomes the canonical producer, later stages'
// attribute reads of the same parameter are deleted from their drafts, and
// every reference to a deleted read is re-pointed at the canonical producer.
// The dependency resolver then forwards the value like any other cross-stage
// edge. Replicate leaves the drafts alone and appends one record entry per
// parameter. Opaque parameters are forced to replicate silently.
//
// Rewrites swap cloned nodes into the drafts; the input graph's nodes are
// never touched.
func applyPolicy(g *graph.Graph, stages []*stageDraft, uses []*ParamUse, cfg Config) (*graph.Node, pipe.ReplicationRecord, error) {
	byName := make(map[string]*ParamUse, len(uses))
	for _, u := range uses {
		byName[u.Param] = u
	}

	// Overrides checked in sorted name order so the reported conflict is
	// stable when several overrides are bad.
	overridden := make([]string, 0, len(cfg.Overrides))
	for param := range cfg.Overrides {
		overridden = append(overridden, param)
	}
	sort.Strings(overridden)
	for _, param := range overridden {
		u := byName[param]
		if u == nil {
			return nil, nil, NewConflictingPolicyError(param,
				"policy override names a parameter no stage references")
		}
		if !u.MultiUse() {
			return nil, nil, NewConflictingPolicyError(param,
				fmt.Sprintf("policy override names a single-use parameter (stage %d)", u.Stages[0]))
		}
	}

	var replicas pipe.ReplicationRecord
	renames := make(map[string]string)
	for _, u := range uses {
		if !u.MultiUse() {
			continue
		}
		policy := cfg.policyFor(u.Param)
		if u.Opaque {
			policy = PolicyReplicate
		}

		switch policy {
		case PolicyReplicate:
			copies := make([]pipe.ReplicaCopy, len(u.Stages))
			for i, s := range u.Stages {
				copies[i] = pipe.ReplicaCopy{Stage: pipe.StageName(s), Param: u.Param}
			}
			replicas = append(replicas, pipe.ReplicaEntry{Param: u.Param, Copies: copies})

		case PolicyTransmit:
			canonical := firstAttrRead(stages[u.Stages[0]], u.Param)
			for _, si := range u.Stages[1:] {
				dropAttrReads(stages[si], u.Param, canonical.Name, renames)
			}
		}
	}

	if len(renames) > 0 {
		for _, s := range stages {
			for i, n := range s.nodes {
				s.nodes[i] = renameRefs(n, renames)
			}
		}
	}
	return renameRefs(g.Output(), renames), replicas, nil
}

// firstAttrRead returns the draft's first attribute read of param. A
// visible parameter has one in every using stage, the earliest included.
func firstAttrRead(s *stageDraft, param string) *graph.Node {
	for _, n := range s.nodes {
		if n.Op == graph.OpAttr && n.Target == param {
			return n
		}
	}
	return nil
}

// dropAttrReads removes every attribute read of param from the draft and
// maps each removed read's name to the canonical producer.
func dropAttrReads(s *stageDraft, param, canonical string, renames map[string]string) {
	kept := s.nodes[:0]
	for _, n := range s.nodes {
		if n.Op == graph.OpAttr && n.Target == param {
			renames[n.Name] = canonical
			continue
		}
		kept = append(kept, n)
	}
	s.nodes = kept
}

// renameRefs returns n with renamed references, cloning only when a rename
// applies. Attribute reads have no inputs, so renames never chain.
func renameRefs(n *graph.Node, renames map[string]string) *graph.Node {
	touched := false
	for _, in := range n.Inputs {
		if r, ok := in.(graph.Ref); ok {
			if _, hit := renames[r.Node]; hit {
				touched = true
				break
			}
		}
	}
	if !touched {
		return n
	}

	clone := *n
	clone.Inputs = make([]graph.Value, len(n.Inputs))
	for i, in := range n.Inputs {
		if r, ok := in.(graph.Ref); ok {
			if to, hit := renames[r.Node]; hit {
				clone.Inputs[i] = graph.Ref{Node: to}
				continue
			}
		}
		clone.Inputs[i] = in
	}
	return &clone
}

// ownedParams returns, per stage, the qualified names of the parameters the
// stage owns after policy resolution: attribute-read targets plus the
// parameters of opaque modules the body calls, in first-reference order.
func ownedParams(g *graph.Graph, stages []*stageDraft) [][]string {
	owned := make([][]string, len(stages))
	for _, s := range stages {
		seen := make(map[string]bool)
		for _, n := range s.nodes {
			switch n.Op {
			case graph.OpAttr:
				if !seen[n.Target] {
					seen[n.Target] = true
					owned[s.index] = append(owned[s.index], n.Target)
				}
			case graph.OpModule:
				for _, p := range g.ModuleParams[n.Target] {
					if !seen[p] {
						seen[p] = true
						owned[s.index] = append(owned[s.index], p)
					}
				}
			}
		}
	}
	return owned
}
