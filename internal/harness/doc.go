// Package harness provides conformance testing for the partitioner.
//
// The harness loads a capture program, partitions it under a scenario's
// policy, and validates the resulting pipe against declarative assertions.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: skip-stage-forwarding
//	description: "A value consumed two cuts downstream rides through the middle stage"
//	program: testdata/programs/skip.cue
//	policy:
//	  default: transmit
//	  overrides:
//	    shared.weight: replicate
//	assertions:
//	  - type: stage_count
//	    count: 3
//	  - type: passthrough
//	    value: lin0
//	    through: [1]
//
// # Assertion Types
//
// The following assertion types are supported:
//
//   - stage_count: the pipe has exactly N stages
//   - stage_io: one stage's ordered input and output lists
//   - passthrough: a value is relayed by stages untouched (present in their
//     input and output lists, absent from their bodies)
//   - edge: a cross-stage transfer with exact producer, consumer, position
//   - replicated: a parameter is replicated onto a given stage set
//   - transmitted: a parameter is owned by exactly one stage
//   - error: partitioning fails with a given code (error scenarios)
//
// # Deterministic Testing
//
// Partitioning is purely functional: identical program and policy produce a
// byte-identical pipe, so golden files can pin the rendered text directly.
// Regenerate them with:
//
//	go test ./internal/harness -update
//
// # Usage
//
// Load and run a scenario:
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/skip_stage.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
