package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/pipecut/pipecut/internal/split"
)

// Scenario defines one conformance test case: a capture program, the policy
// to partition it under, and assertions over the result.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are keyed by it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Program is the path of the capture file to partition.
	Program string `yaml:"program"`

	// Policy selects the multi-use parameter policy.
	Policy PolicySpec `yaml:"policy,omitempty"`

	// Assertions validate the partitioned pipe, or the expected failure.
	Assertions []Assertion `yaml:"assertions"`
}

// PolicySpec is the YAML form of a policy config.
type PolicySpec struct {
	// Default is the policy for parameters without an override.
	// Empty means transmit.
	Default string `yaml:"default,omitempty"`

	// Overrides maps parameter qualified names to per-parameter policies.
	Overrides map[string]string `yaml:"overrides,omitempty"`
}

// Assertion validates one property of the partitioning result.
// Which fields apply depends on Type; the rest stay at their zero values.
type Assertion struct {
	// Type selects the assertion:
	//   - "stage_count": the pipe has exactly Count stages
	//   - "stage_io": stage Stage has the given Inputs and Outputs lists
	//   - "passthrough": Value is relayed untouched by every stage in Through
	//   - "edge": an edge Value: Producer -> Consumer at Pos exists
	//   - "replicated": Param is replicated exactly onto Stages
	//   - "transmitted": Param is owned by stage Owner and no other
	//   - "error": partitioning fails with Code (and Node/Param/Stage)
	Type string `yaml:"type"`

	// Count is the expected stage count (stage_count).
	Count int `yaml:"count,omitempty"`

	// Stage is the stage index under test (stage_io), or the expected
	// error stage (error; omit to skip the check).
	Stage *int `yaml:"stage,omitempty"`

	// Inputs and Outputs are the expected ordered lists (stage_io).
	// A nil list skips that side; an explicit empty list asserts emptiness.
	Inputs  []string `yaml:"inputs,omitempty"`
	Outputs []string `yaml:"outputs,omitempty"`

	// Value names the transferred value (passthrough, edge).
	Value string `yaml:"value,omitempty"`

	// Through lists the relaying stage indices (passthrough).
	Through []int `yaml:"through,omitempty"`

	// Producer, Consumer, and Pos locate the edge (edge).
	Producer int `yaml:"producer,omitempty"`
	Consumer int `yaml:"consumer,omitempty"`
	Pos      int `yaml:"pos,omitempty"`

	// Param is the parameter qualified name (replicated, transmitted), or
	// the expected error parameter (error; omit to skip the check).
	Param string `yaml:"param,omitempty"`

	// Stages is the expected replica holder list, in order (replicated).
	Stages []string `yaml:"stages,omitempty"`

	// Owner is the owning stage index (transmitted).
	Owner int `yaml:"owner,omitempty"`

	// Code is the expected partitioning error code (error).
	Code string `yaml:"code,omitempty"`

	// Node is the expected error instruction (error; omit to skip).
	Node string `yaml:"node,omitempty"`
}

// Assertion type constants.
const (
	AssertStageCount  = "stage_count"
	AssertStageIO     = "stage_io"
	AssertPassthrough = "passthrough"
	AssertEdge        = "edge"
	AssertReplicated  = "replicated"
	AssertTransmitted = "transmitted"
	AssertError       = "error"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file, resolving
// a relative program path against the provided base path. Useful when
// scenario files reference programs relative to a directory other than the
// working one.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve the program path BEFORE validation, which stats it.
	if scenario.Program != "" && basePath != "" && !filepath.IsAbs(scenario.Program) {
		scenario.Program = filepath.Join(basePath, scenario.Program)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// Config converts the scenario policy into a split config.
func (s *Scenario) Config() (split.Config, error) {
	var cfg split.Config
	if s.Policy.Default != "" {
		p, err := split.ParsePolicy(s.Policy.Default)
		if err != nil {
			return split.Config{}, fmt.Errorf("policy.default: %w", err)
		}
		cfg.Default = p
	}
	for param, policy := range s.Policy.Overrides {
		p, err := split.ParsePolicy(policy)
		if err != nil {
			return split.Config{}, fmt.Errorf("policy.overrides.%s: %w", param, err)
		}
		if cfg.Overrides == nil {
			cfg.Overrides = make(map[string]split.Policy)
		}
		cfg.Overrides[param] = p
	}
	return cfg, nil
}

// expectsError reports whether the scenario asserts a partitioning failure.
func (s *Scenario) expectsError() bool {
	for _, a := range s.Assertions {
		if a.Type == AssertError {
			return true
		}
	}
	return false
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Program == "" {
		return fmt.Errorf("program is required")
	}
	if _, err := os.Stat(s.Program); os.IsNotExist(err) {
		return fmt.Errorf("program file not found: %s", s.Program)
	}

	if s.Policy.Default != "" {
		if _, err := split.ParsePolicy(s.Policy.Default); err != nil {
			return fmt.Errorf("policy.default: %v", err)
		}
	}
	for param, policy := range s.Policy.Overrides {
		if param == "" {
			return fmt.Errorf("policy.overrides: empty parameter name")
		}
		if _, err := split.ParsePolicy(policy); err != nil {
			return fmt.Errorf("policy.overrides.%s: %v", param, err)
		}
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	// An error scenario has nothing else to assert on: there is no pipe.
	if s.expectsError() && len(s.Assertions) > 1 {
		return fmt.Errorf("an error assertion must be the scenario's only assertion")
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertStageCount:
		if a.Count < 1 {
			return fmt.Errorf("assertions[%d]: count must be at least 1 for stage_count", index)
		}
	case AssertStageIO:
		if a.Stage == nil {
			return fmt.Errorf("assertions[%d]: stage is required for stage_io", index)
		}
		if *a.Stage < 0 {
			return fmt.Errorf("assertions[%d]: stage must be non-negative for stage_io", index)
		}
		if a.Inputs == nil && a.Outputs == nil {
			return fmt.Errorf("assertions[%d]: stage_io needs an inputs or outputs list", index)
		}
	case AssertPassthrough:
		if a.Value == "" {
			return fmt.Errorf("assertions[%d]: value is required for passthrough", index)
		}
		if len(a.Through) == 0 {
			return fmt.Errorf("assertions[%d]: through list is required for passthrough", index)
		}
	case AssertEdge:
		if a.Value == "" {
			return fmt.Errorf("assertions[%d]: value is required for edge", index)
		}
		if a.Consumer < 1 {
			return fmt.Errorf("assertions[%d]: consumer must be at least 1 for edge", index)
		}
		if a.Producer < 0 || a.Producer >= a.Consumer {
			return fmt.Errorf("assertions[%d]: producer must precede consumer for edge", index)
		}
		if a.Pos < 0 {
			return fmt.Errorf("assertions[%d]: pos must be non-negative for edge", index)
		}
	case AssertReplicated:
		if a.Param == "" {
			return fmt.Errorf("assertions[%d]: param is required for replicated", index)
		}
		if len(a.Stages) == 0 {
			return fmt.Errorf("assertions[%d]: stages list is required for replicated", index)
		}
	case AssertTransmitted:
		if a.Param == "" {
			return fmt.Errorf("assertions[%d]: param is required for transmitted", index)
		}
		if a.Owner < 0 {
			return fmt.Errorf("assertions[%d]: owner must be non-negative for transmitted", index)
		}
	case AssertError:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for error", index)
		}
		if !knownErrorCode(a.Code) {
			return fmt.Errorf("assertions[%d]: unknown error code %q", index, a.Code)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

// knownErrorCode reports whether code names a defined partitioning error.
func knownErrorCode(code string) bool {
	switch split.ErrorCode(code) {
	case split.ErrCodeMalformedMarker, split.ErrCodeEmptyStage,
		split.ErrCodeUnresolvableReference, split.ErrCodeDanglingReference,
		split.ErrCodeConflictingPolicy:
		return true
	}
	return false
}
