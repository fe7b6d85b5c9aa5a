// Package split partitions a marker-annotated instruction graph into an
// executable pipeline.
//
// # ARCHITECTURE
//
// Split is a fixed sequence of pure passes over an immutable input graph:
//
//	validate  → structural checks on the capture input
//	scan      → locate zero-arity split markers
//	partition → cut the body into contiguous stage drafts
//	params    → classify parameter usage (visible/opaque, using stages)
//	policy    → resolve multi-use parameters (transmit rewrites the graph
//	            view, replicate appends to the replication record)
//	resolve   → cross-stage edges plus ordered per-stage input/output
//	            lists, pass-throughs materialized stage to stage
//	build     → one self-contained stage module per stage
//	assemble  → the orchestration graph wiring stage calls together
//
// Every pass is deterministic: identical input and policy produce a
// byte-identical pipe.IR. There is no I/O and no concurrency; errors are
// *Error values carrying a stable code, the offending instruction or
// parameter, and the stage index.
package split
