package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainGraph  = "pipecut/graph/v1"
	DomainPolicy = "pipecut/policy/v1"
	DomainPipe   = "pipecut/pipe/v1"
)

// HashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity: a graph
// hash can never equal a policy hash over the same payload.
func HashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// HashCanonical canonically marshals v and hashes it under domain.
func HashCanonical(domain string, v any) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", domain, err)
	}
	return HashWithDomain(domain, canonical), nil
}

// HashGraph computes the content-addressed identity of a graph. Two captures
// that differ only in map iteration order or string normalization form hash
// identically; any structural difference changes the hash.
func HashGraph(g *Graph) (string, error) {
	return HashCanonical(DomainGraph, g.CanonicalMap())
}

// MustHashGraph is like HashGraph but panics on error.
// Use only in tests or when the graph is known to be well-formed.
func MustHashGraph(g *Graph) string {
	h, err := HashGraph(g)
	if err != nil {
		panic(err)
	}
	return h
}
