// Package capture loads captured instruction graphs and partitioning
// policies from CUE files.
//
// A capture file is the handoff from an external tracing front-end: a
// flat, topologically-ordered instruction body plus the program's inputs
// and module-parameter table. The loaders convert the CUE form into
// graph.Graph / split.Config values and report malformed files as
// positioned CompileErrors. Structural graph rules (reference resolution,
// marker arity, output placement) belong to split.ValidateGraph, not the
// loader.
package capture
