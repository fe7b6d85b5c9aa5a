package cli

import (
	"errors"
	"fmt"

	"github.com/pipecut/pipecut/internal/capture"
	"github.com/pipecut/pipecut/internal/split"
)

// Error code constants, unified across all CLI commands.
// E0xx are command-level errors, E1xx are partitioning errors.
const (
	ErrCodeGeneric        = "E001" // Generic/unknown error
	ErrCodeNotFound       = "E002" // Input file not found
	ErrCodeProgram        = "E003" // Capture program failed to compile
	ErrCodePolicy         = "E004" // Policy file or policy flags invalid
	ErrCodeWriteFailed    = "E005" // Output file write error
	ErrCodeStore          = "E006" // Cache database error
	ErrCodeRunNotFound    = "E007" // No cached run with the given id
	ErrCodeScenarioFailed = "E008" // One or more harness scenarios failed

	// Partitioning errors (one per split.ErrorCode)
	ErrCodeMalformedMarker   = "E101" // Split marker with inputs or users
	ErrCodeEmptyStage        = "E102" // Cut produces a bodiless stage
	ErrCodeUnresolvableRef   = "E103" // Reference to a missing or later value
	ErrCodeDanglingRef       = "E104" // Internal resolver/builder defect
	ErrCodeConflictingPolicy = "E105" // Policy names unknown/single-use param
)

// MapSplitError maps a partitioning error code to a CLI error code.
func MapSplitError(code split.ErrorCode) string {
	switch code {
	case split.ErrCodeMalformedMarker:
		return ErrCodeMalformedMarker
	case split.ErrCodeEmptyStage:
		return ErrCodeEmptyStage
	case split.ErrCodeUnresolvableReference:
		return ErrCodeUnresolvableRef
	case split.ErrCodeDanglingReference:
		return ErrCodeDanglingRef
	case split.ErrCodeConflictingPolicy:
		return ErrCodeConflictingPolicy
	default:
		return ErrCodeGeneric
	}
}

// splitErrorDetails builds the details payload for a partitioning error:
// the offending node, parameter, and stage, empties omitted. Returns nil
// when nothing is known.
func splitErrorDetails(se *split.Error) map[string]interface{} {
	details := map[string]interface{}{}
	if se.Node != "" {
		details["node"] = se.Node
	}
	if se.Param != "" {
		details["param"] = se.Param
	}
	if se.Stage >= 0 {
		details["stage"] = se.Stage
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

// outputSplitError reports a partitioning failure. Partitioning failures
// are domain outcomes, not command mistakes: exit code 1.
func outputSplitError(f *OutputFormatter, err error) error {
	var se *split.Error
	if !errors.As(err, &se) {
		_ = f.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "partitioning failed", err)
	}

	code := MapSplitError(se.Code)
	_ = f.Error(code, se.Message, splitErrorDetails(se))
	return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", code, se.Message))
}

// outputLoadError reports a capture program or policy loading failure with
// source position when one exists. Broken input artifacts are command-level
// errors: exit code 2.
func outputLoadError(f *OutputFormatter, code string, err error) error {
	var ce *capture.CompileError
	if !errors.As(err, &ce) {
		_ = f.Error(code, err.Error(), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: %v", code, err))
	}

	if f.Format != "json" && ce.Pos.IsValid() {
		fmt.Fprintf(f.Writer, "%s:%d:%d\n", ce.Pos.Filename(), ce.Pos.Line(), ce.Pos.Column())
	}
	message := fmt.Sprintf("%s: %s", ce.Field, ce.Message)
	_ = f.Error(code, message, compileErrorDetails(ce))
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// compileErrorDetails builds the details payload for a capture error.
func compileErrorDetails(ce *capture.CompileError) map[string]interface{} {
	details := map[string]interface{}{}
	if ce.Field != "" {
		details["field"] = ce.Field
	}
	if ce.Pos.IsValid() {
		details["pos"] = fmt.Sprintf("%s:%d:%d", ce.Pos.Filename(), ce.Pos.Line(), ce.Pos.Column())
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

// truncateHash shortens a content hash for listings.
func truncateHash(h string) string {
	if len(h) <= 12 {
		return h
	}
	return h[:12]
}
