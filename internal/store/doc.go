// Package store provides the SQLite-backed cache of partition runs.
//
// Rows are content-addressed: a run is keyed by the SHA-256 hashes of its
// input graph and policy config, so partitioning the same capture under the
// same policy always lands on the same record. Saving an existing key is a
// silent no-op that reports the cached run.
//
// # Determinism
//
//   - Run ids are UUIDv7 strings, so id order is creation order.
//   - Listings ORDER BY id COLLATE BINARY for byte-stable output.
//   - The stored pipe body is RFC 8785 canonical JSON; identical requests
//     produce identical rows.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: referential integrity for future schema revisions
//
// Content hashes are computed in internal/graph, internal/split, and
// internal/pipe using RFC 8785 canonical JSON and SHA-256 with domain
// separation.
package store
