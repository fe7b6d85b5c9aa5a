package split

import (
	"fmt"

	"github.com/pipecut/pipecut/internal/graph"
)

// Policy selects how a parameter shared by multiple stages is resolved.
type Policy string

const (
	// PolicyTransmit keeps one owner stage and forwards the parameter's
	// value to later stages through ordinary cross-stage edges.
	PolicyTransmit Policy = "transmit"

	// PolicyReplicate gives every using stage its own physical copy and
	// records the copies for post-update synchronization.
	PolicyReplicate Policy = "replicate"
)

// Valid reports whether p is a defined policy.
func (p Policy) Valid() bool {
	return p == PolicyTransmit || p == PolicyReplicate
}

// ParsePolicy converts a user-supplied string to a Policy.
func ParsePolicy(s string) (Policy, error) {
	p := Policy(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown policy %q (want %q or %q)", s, PolicyTransmit, PolicyReplicate)
	}
	return p, nil
}

// Config is the parameter resolution policy for one partitioning request.
// The zero value means: transmit everything, no overrides.
type Config struct {
	// Default applies to every multi-use parameter without an override.
	// Empty is treated as PolicyTransmit.
	Default Policy

	// Overrides maps parameter qualified names to per-parameter policies.
	// Every named parameter must exist and be multi-use.
	Overrides map[string]Policy
}

// DefaultConfig returns the stock configuration: transmit, no overrides.
func DefaultConfig() Config {
	return Config{Default: PolicyTransmit}
}

// effectiveDefault resolves the zero value to the documented default.
func (c Config) effectiveDefault() Policy {
	if c.Default == "" {
		return PolicyTransmit
	}
	return c.Default
}

// policyFor returns the requested policy for param before opacity forcing.
func (c Config) policyFor(param string) Policy {
	if p, ok := c.Overrides[param]; ok {
		return p
	}
	return c.effectiveDefault()
}

// Validate checks that every policy value in the config is defined.
func (c Config) Validate() error {
	if c.Default != "" && !c.Default.Valid() {
		return fmt.Errorf("invalid default policy %q", c.Default)
	}
	for param, p := range c.Overrides {
		if !p.Valid() {
			return fmt.Errorf("invalid policy %q for parameter %q", p, param)
		}
	}
	return nil
}

// CanonicalMap converts the config to its canonical plain-map form. The
// zero default is materialized so equivalent configs hash identically.
func (c Config) CanonicalMap() map[string]any {
	m := map[string]any{
		"default": string(c.effectiveDefault()),
	}
	if len(c.Overrides) > 0 {
		overrides := make(map[string]any, len(c.Overrides))
		for param, p := range c.Overrides {
			overrides[param] = string(p)
		}
		m["overrides"] = overrides
	}
	return m
}

// HashConfig computes the content-addressed identity of a policy config.
func HashConfig(c Config) (string, error) {
	return graph.HashCanonical(graph.DomainPolicy, c.CanonicalMap())
}

// MustHashConfig is like HashConfig but panics on error. Use in tests.
func MustHashConfig(c Config) string {
	h, err := HashConfig(c)
	if err != nil {
		panic(err)
	}
	return h
}
