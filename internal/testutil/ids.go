// Package testutil provides deterministic helpers shared by the package
// test suites: a fixed run-ID source and a fluent graph builder.
package testutil

import (
	"fmt"
	"sync"
)

// FixedIDSource hands out sequential, deterministic run IDs.
//
// Unlike the store's UUIDv7 source, FixedIDSource produces the same ID
// sequence on every run, which keeps store listings and golden snapshots
// byte-identical across test executions.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type FixedIDSource struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewFixedIDSource creates a source producing
// "<prefix>-00000000-0000-0000-0000-00000000000N". If prefix is empty,
// "run" is used.
func NewFixedIDSource(prefix string) *FixedIDSource {
	if prefix == "" {
		prefix = "run"
	}
	return &FixedIDSource{prefix: prefix}
}

// NewID returns the next ID in the sequence.
//
// Implements store.IDSource.
func (s *FixedIDSource) NewID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-00000000-0000-0000-0000-%012d", s.prefix, s.n), nil
}

// Reset restarts the sequence. After Reset, the next NewID returns the
// first ID again.
func (s *FixedIDSource) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n = 0
}
