// Package pipe defines the partitioner's output artifact: the Pipe IR.
//
// # ARCHITECTURE
//
// An IR bundles four things, all immutable on handoff:
//
//   - Stages: the ordered stage modules. Each StageModule owns a well-formed
//     flat graph (placeholders for its inputs, its body instructions, one
//     terminal output) plus its resolved input/output lists and the
//     parameters it owns.
//   - Graph: the orchestration graph — one placeholder per original program
//     input, one module call per stage, unpack instructions for composite
//     stage results, one terminal output. It satisfies the same structural
//     rules as partitioner input.
//   - Edges: every cross-stage value transfer, as (producer stage, value
//     name, consumer stage, position in the consumer's input list).
//   - Replicas: the replication record — for each parameter resolved to
//     replication, the per-stage local copies the runtime must keep
//     synchronized after updates.
//
// The IR serializes to canonical JSON only (see package graph), hashes under
// its own domain, and renders to a stable text form pinned by golden tests.
package pipe
