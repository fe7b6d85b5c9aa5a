// Package graph defines the flat instruction-graph IR consumed and produced
// by the partitioner.
//
// # ARCHITECTURE
//
// A Graph is an ordered list of instructions (Nodes) in a topological order
// consistent with def-before-use, plus a table describing which parameters
// belong to opaque sub-components. Instructions are a tagged variant: one
// Node struct, discriminated by Op. Instruction inputs are Values — a small
// sealed interface covering references to earlier instructions and the three
// literal kinds (int64, string, bool).
//
// Floats never appear in the IR. Capture front-ends record non-integer
// constants as opaque string literals, which keeps canonical serialization
// and content hashing byte-stable across platforms.
//
// The package also provides:
//
//   - Canonical JSON (RFC 8785 profile: UTF-16 key ordering, NFC-normalized
//     strings, no HTML escaping, no floats, no nulls). This is the only
//     serialization used for content-addressed identity.
//   - SHA-256 content hashing with domain separation, so a graph hash can
//     never collide with a policy or pipe hash over the same bytes.
//   - A deterministic fx-style text rendering used by inspection output and
//     golden tests.
//
// Graphs are immutable by convention: the partitioner never mutates its
// input, and every derived graph (stage modules, the orchestration graph) is
// built fresh.
package graph
