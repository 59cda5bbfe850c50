package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for the stable error taxonomy. Every failure surfaced by
// the engine wraps exactly one of these so callers can classify it with
// errors.Is regardless of how much stage context accumulated on the way up.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientData  = errors.New("insufficient data")
	ErrProcessingFailed  = errors.New("processing failed")
	ErrOutOfMemory       = errors.New("out of memory")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrCancelled         = errors.New("cancelled")
)

// Code is the stable request/result error code.
type Code string

const (
	CodeSuccess           Code = "success"
	CodeInvalidInput      Code = "invalid_input"
	CodeInsufficientData  Code = "insufficient_data"
	CodeProcessingFailed  Code = "processing_failed"
	CodeOutOfMemory       Code = "out_of_memory"
	CodeUnsupportedFormat Code = "unsupported_format"
	CodeCancelled         Code = "cancelled"
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrProcessingFailed
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// CodeFor maps an error to its stable result code. Cancellation is a distinct
// terminal classification, never conflated with failure; context errors count
// as cancellation even when a stage forgot to wrap them.
func CodeFor(err error) Code {
	switch {
	case err == nil:
		return CodeSuccess
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeCancelled
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	case errors.Is(err, ErrInsufficientData):
		return CodeInsufficientData
	case errors.Is(err, ErrOutOfMemory):
		return CodeOutOfMemory
	case errors.Is(err, ErrUnsupportedFormat):
		return CodeUnsupportedFormat
	default:
		return CodeProcessingFailed
	}
}

// Recoverable reports whether the degradation coordinator should be offered
// the error. Input, resource, and cancellation errors bypass degradation.
func Recoverable(err error) bool {
	return CodeFor(err) == CodeProcessingFailed
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "engine failure"
	}
	return strings.Join(parts, ": ")
}
