package harness

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pipecut/pipecut/internal/pipe"
	"github.com/pipecut/pipecut/internal/split"
)

// AssertionError is returned when an assertion fails.
// It includes expected and actual outcomes to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions evaluates all assertions against a partitioning
// outcome and returns one message per failed assertion. result is nil when
// partitioning failed; splitErr carries the partitioning error, if any.
func EvaluateAssertions(result *pipe.IR, splitErr error, assertions []Assertion) []string {
	var msgs []string

	for i, assertion := range assertions {
		var err error

		if assertion.Type != AssertError && result == nil {
			msgs = append(msgs, (&AssertionError{
				Type:     assertion.Type,
				Expected: "a partitioned pipe",
				Actual:   fmt.Sprintf("no pipe produced (partitioning failed: %v)", splitErr),
			}).Error())
			continue
		}

		switch assertion.Type {
		case AssertStageCount:
			err = assertStageCount(result, assertion)
		case AssertStageIO:
			err = assertStageIO(result, assertion)
		case AssertPassthrough:
			err = assertPassthrough(result, assertion)
		case AssertEdge:
			err = assertEdge(result, assertion)
		case AssertReplicated:
			err = assertReplicated(result, assertion)
		case AssertTransmitted:
			err = assertTransmitted(result, assertion)
		case AssertError:
			err = assertSplitError(splitErr, assertion)
		default:
			err = fmt.Errorf("assertions[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			msgs = append(msgs, err.Error())
		}
	}

	return msgs
}

// assertStageCount checks the pipe's stage count.
func assertStageCount(p *pipe.IR, a Assertion) error {
	if len(p.Stages) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertStageCount,
		Expected: fmt.Sprintf("%d stages", a.Count),
		Actual:   fmt.Sprintf("%d stages", len(p.Stages)),
	}
}

// assertStageIO checks one stage's ordered input and output lists. A nil
// expected list skips that side; an explicit empty list asserts emptiness.
func assertStageIO(p *pipe.IR, a Assertion) error {
	if a.Stage == nil {
		return &AssertionError{
			Type:     AssertStageIO,
			Expected: "a stage index",
			Actual:   "assertion has no stage field",
		}
	}
	s := p.Stage(*a.Stage)
	if s == nil {
		return &AssertionError{
			Type:     AssertStageIO,
			Expected: fmt.Sprintf("stage %d to exist", *a.Stage),
			Actual:   fmt.Sprintf("pipe has %d stages", len(p.Stages)),
		}
	}
	if a.Inputs != nil && !equalStrings(s.Inputs, a.Inputs) {
		return &AssertionError{
			Type:     AssertStageIO,
			Expected: fmt.Sprintf("%s inputs [%s]", s.Name, strings.Join(a.Inputs, ", ")),
			Actual:   fmt.Sprintf("[%s]", strings.Join(s.Inputs, ", ")),
		}
	}
	if a.Outputs != nil && !equalStrings(s.Outputs, a.Outputs) {
		return &AssertionError{
			Type:     AssertStageIO,
			Expected: fmt.Sprintf("%s outputs [%s]", s.Name, strings.Join(a.Outputs, ", ")),
			Actual:   fmt.Sprintf("[%s]", strings.Join(s.Outputs, ", ")),
		}
	}
	return nil
}

// assertPassthrough checks that a value is relayed, untouched, by every
// listed stage: present in the stage's input and output lists and never
// referenced by a body instruction.
func assertPassthrough(p *pipe.IR, a Assertion) error {
	for _, i := range a.Through {
		s := p.Stage(i)
		if s == nil {
			return &AssertionError{
				Type:     AssertPassthrough,
				Expected: fmt.Sprintf("stage %d to exist", i),
				Actual:   fmt.Sprintf("pipe has %d stages", len(p.Stages)),
			}
		}
		expected := fmt.Sprintf("value %q relayed by %s", a.Value, s.Name)
		if !containsString(s.Inputs, a.Value) {
			return &AssertionError{
				Type:     AssertPassthrough,
				Expected: expected,
				Actual:   fmt.Sprintf("not in %s input list [%s]", s.Name, strings.Join(s.Inputs, ", ")),
			}
		}
		if !containsString(s.Outputs, a.Value) {
			return &AssertionError{
				Type:     AssertPassthrough,
				Expected: expected,
				Actual:   fmt.Sprintf("not in %s output list [%s]", s.Name, strings.Join(s.Outputs, ", ")),
			}
		}
		for _, n := range s.Graph.Nodes {
			if !n.BodyOp() {
				continue
			}
			for _, ref := range n.Refs() {
				if ref == a.Value {
					return &AssertionError{
						Type:     AssertPassthrough,
						Expected: expected,
						Actual:   fmt.Sprintf("consumed by body instruction %q", n.Name),
					}
				}
			}
		}
	}
	return nil
}

// assertEdge checks that one cross-stage transfer exists with the exact
// producer, consumer, and consumer-side position.
func assertEdge(p *pipe.IR, a Assertion) error {
	want := pipe.Edge{Producer: a.Producer, Value: a.Value, Consumer: a.Consumer, Pos: a.Pos}
	var carrying []string
	for _, e := range p.Edges {
		if e == want {
			return nil
		}
		if e.Value == a.Value {
			carrying = append(carrying, formatEdge(e))
		}
	}
	actual := fmt.Sprintf("no edges carry %q", a.Value)
	if len(carrying) > 0 {
		actual = strings.Join(carrying, "; ")
	}
	return &AssertionError{
		Type:     AssertEdge,
		Expected: formatEdge(want),
		Actual:   actual,
	}
}

// formatEdge renders an edge the way the pipe renderer does.
func formatEdge(e pipe.Edge) string {
	return fmt.Sprintf("%s: %s -> %s (pos %d)",
		e.Value, pipe.StageName(e.Producer), pipe.StageName(e.Consumer), e.Pos)
}

// assertReplicated checks a parameter's replica holders, in order.
func assertReplicated(p *pipe.IR, a Assertion) error {
	expected := fmt.Sprintf("param %q replicated on [%s]", a.Param, strings.Join(a.Stages, ", "))
	stages := p.Replicas.StagesOf(a.Param)
	if stages == nil {
		return &AssertionError{
			Type:     AssertReplicated,
			Expected: expected,
			Actual:   "param is not in the replication record",
		}
	}
	if !equalStrings(stages, a.Stages) {
		return &AssertionError{
			Type:     AssertReplicated,
			Expected: expected,
			Actual:   fmt.Sprintf("replicated on [%s]", strings.Join(stages, ", ")),
		}
	}
	return nil
}

// assertTransmitted checks single ownership: the owner stage holds the
// parameter, no other stage does, and the parameter is not replicated.
func assertTransmitted(p *pipe.IR, a Assertion) error {
	expected := fmt.Sprintf("param %q owned by %s only", a.Param, pipe.StageName(a.Owner))
	owner := p.Stage(a.Owner)
	if owner == nil {
		return &AssertionError{
			Type:     AssertTransmitted,
			Expected: expected,
			Actual:   fmt.Sprintf("pipe has %d stages", len(p.Stages)),
		}
	}
	if !containsString(owner.Params, a.Param) {
		return &AssertionError{
			Type:     AssertTransmitted,
			Expected: expected,
			Actual:   fmt.Sprintf("not in %s param list [%s]", owner.Name, strings.Join(owner.Params, ", ")),
		}
	}
	for _, s := range p.Stages {
		if s.Index != a.Owner && containsString(s.Params, a.Param) {
			return &AssertionError{
				Type:     AssertTransmitted,
				Expected: expected,
				Actual:   fmt.Sprintf("also owned by %s", s.Name),
			}
		}
	}
	if holders := p.Replicas.StagesOf(a.Param); holders != nil {
		return &AssertionError{
			Type:     AssertTransmitted,
			Expected: expected,
			Actual:   fmt.Sprintf("replicated on [%s]", strings.Join(holders, ", ")),
		}
	}
	return nil
}

// assertSplitError checks that partitioning failed with the expected code,
// and optionally with the expected node, param, and stage.
func assertSplitError(splitErr error, a Assertion) error {
	expected := fmt.Sprintf("partitioning error %s", a.Code)
	if splitErr == nil {
		return &AssertionError{
			Type:     AssertError,
			Expected: expected,
			Actual:   "partitioning succeeded",
		}
	}
	var se *split.Error
	if !errors.As(splitErr, &se) {
		return &AssertionError{
			Type:     AssertError,
			Expected: expected,
			Actual:   fmt.Sprintf("non-partitioning error: %v", splitErr),
		}
	}
	if string(se.Code) != a.Code {
		return &AssertionError{
			Type:     AssertError,
			Expected: expected,
			Actual:   fmt.Sprintf("error %s: %s", se.Code, se.Message),
		}
	}
	if a.Node != "" && se.Node != a.Node {
		return &AssertionError{
			Type:     AssertError,
			Expected: fmt.Sprintf("%s at node %q", expected, a.Node),
			Actual:   fmt.Sprintf("at node %q", se.Node),
		}
	}
	if a.Param != "" && se.Param != a.Param {
		return &AssertionError{
			Type:     AssertError,
			Expected: fmt.Sprintf("%s for param %q", expected, a.Param),
			Actual:   fmt.Sprintf("for param %q", se.Param),
		}
	}
	if a.Stage != nil && se.Stage != *a.Stage {
		return &AssertionError{
			Type:     AssertError,
			Expected: fmt.Sprintf("%s at stage %d", expected, *a.Stage),
			Actual:   fmt.Sprintf("at stage %d", se.Stage),
		}
	}
	return nil
}

func equalStrings(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
