package split

import (
	"errors"
	"fmt"
)

// Error represents a failure detected while partitioning a graph.
//
// Partitioning errors include:
//   - Malformed marker: a split marker has inputs or users
//   - Empty stage: a cut would produce a stage with no body instructions
//   - Unresolvable reference: malformed capture input references a value
//     that does not exist or is not yet defined
//   - Dangling reference: a built stage module references a value outside
//     its body and input list (internal invariant violation)
//   - Conflicting policy: an override names an unknown or non-multi-use
//     parameter
//
// Error includes structured fields for diagnostics; Stage is -1 when no
// stage is involved.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Node identifies the offending instruction, when one exists.
	Node string

	// Param identifies the offending parameter (for policy errors).
	Param string

	// Stage is the affected stage index, or -1.
	Stage int
}

// ErrorCode categorizes partitioning errors.
type ErrorCode string

const (
	// ErrCodeMalformedMarker indicates a split marker with non-zero arity.
	ErrCodeMalformedMarker ErrorCode = "MALFORMED_MARKER"

	// ErrCodeEmptyStage indicates a cut producing a bodiless stage.
	ErrCodeEmptyStage ErrorCode = "EMPTY_STAGE"

	// ErrCodeUnresolvableReference indicates malformed capture input: a
	// reference to a value that does not exist or is defined later.
	ErrCodeUnresolvableReference ErrorCode = "UNRESOLVABLE_REFERENCE"

	// ErrCodeDanglingReference indicates an internal invariant violation:
	// a stage module body references a value in neither its body nor its
	// input list. Always a resolver or builder defect.
	ErrCodeDanglingReference ErrorCode = "DANGLING_REFERENCE"

	// ErrCodeConflictingPolicy indicates a policy override naming an
	// unknown or non-multi-use parameter.
	ErrCodeConflictingPolicy ErrorCode = "CONFLICTING_POLICY"
)

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Node != "" && e.Stage >= 0:
		return fmt.Sprintf("%s: %s (node=%s, stage=%d)", e.Code, e.Message, e.Node, e.Stage)
	case e.Node != "":
		return fmt.Sprintf("%s: %s (node=%s)", e.Code, e.Message, e.Node)
	case e.Param != "":
		return fmt.Sprintf("%s: %s (param=%s)", e.Code, e.Message, e.Param)
	case e.Stage >= 0:
		return fmt.Sprintf("%s: %s (stage=%d)", e.Code, e.Message, e.Stage)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf extracts the partitioning error code from err, or "" when err is
// not a partitioning error. Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsMalformedMarker returns true if the error is a marker arity error.
func IsMalformedMarker(err error) bool {
	return CodeOf(err) == ErrCodeMalformedMarker
}

// IsEmptyStage returns true if the error is an empty stage error.
func IsEmptyStage(err error) bool {
	return CodeOf(err) == ErrCodeEmptyStage
}

// IsUnresolvableReference returns true if the error is a malformed input
// reference error.
func IsUnresolvableReference(err error) bool {
	return CodeOf(err) == ErrCodeUnresolvableReference
}

// IsDanglingReference returns true if the error is an internal dangling
// reference error.
func IsDanglingReference(err error) bool {
	return CodeOf(err) == ErrCodeDanglingReference
}

// IsConflictingPolicy returns true if the error is a policy conflict error.
func IsConflictingPolicy(err error) bool {
	return CodeOf(err) == ErrCodeConflictingPolicy
}

// NewMalformedMarkerError creates an Error for a marker arity violation.
func NewMalformedMarkerError(node, detail string) *Error {
	return &Error{
		Code:    ErrCodeMalformedMarker,
		Message: fmt.Sprintf("split marker must have no inputs and no users: %s", detail),
		Node:    node,
		Stage:   -1,
	}
}

// NewEmptyStageError creates an Error for a bodiless stage.
func NewEmptyStageError(stage int) *Error {
	return &Error{
		Code:    ErrCodeEmptyStage,
		Message: "stage has no body instructions",
		Stage:   stage,
	}
}

// NewUnresolvableReferenceError creates an Error for malformed input.
func NewUnresolvableReferenceError(node, detail string) *Error {
	return &Error{
		Code:    ErrCodeUnresolvableReference,
		Message: detail,
		Node:    node,
		Stage:   -1,
	}
}

// NewDanglingReferenceError creates an Error for an internal invariant
// violation in a built stage module.
func NewDanglingReferenceError(node, value string, stage int) *Error {
	return &Error{
		Code:    ErrCodeDanglingReference,
		Message: fmt.Sprintf("stage module references %q outside its body and input list", value),
		Node:    node,
		Stage:   stage,
	}
}

// NewConflictingPolicyError creates an Error for a bad policy override.
func NewConflictingPolicyError(param, detail string) *Error {
	return &Error{
		Code:    ErrCodeConflictingPolicy,
		Message: detail,
		Param:   param,
		Stage:   -1,
	}
}
