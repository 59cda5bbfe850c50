package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"syncline/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrProcessingFailed, "aligning", "correlate", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrProcessingFailed) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"aligning", "correlate", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapNilMarkerDefaultsToProcessingFailed(t *testing.T) {
	err := services.Wrap(nil, "extracting", "frame", "", nil)
	if !errors.Is(err, services.ErrProcessingFailed) {
		t.Fatalf("expected processing-failed marker, got %v", err)
	}
}

func TestCodeForMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want services.Code
	}{
		{"nil", nil, services.CodeSuccess},
		{"invalid input", services.Wrap(services.ErrInvalidInput, "validating", "buffer", "empty", nil), services.CodeInvalidInput},
		{"insufficient data", services.Wrap(services.ErrInsufficientData, "extracting", "chroma", "too short", nil), services.CodeInsufficientData},
		{"out of memory", services.Wrap(services.ErrOutOfMemory, "aligning", "correlate", "alloc", nil), services.CodeOutOfMemory},
		{"unsupported format", services.Wrap(services.ErrUnsupportedFormat, "decode", "wav", "bit depth", nil), services.CodeUnsupportedFormat},
		{"cancelled sentinel", services.Wrap(services.ErrCancelled, "aligning", "", "", nil), services.CodeCancelled},
		{"context canceled", context.Canceled, services.CodeCancelled},
		{"context deadline", context.DeadlineExceeded, services.CodeCancelled},
		{"unclassified", errors.New("surprise"), services.CodeProcessingFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.CodeFor(tc.err); got != tc.want {
				t.Fatalf("CodeFor(%v) = %s, want %s", tc.err, got, tc.want)
			}
		})
	}
}

func TestRecoverable(t *testing.T) {
	if services.Recoverable(services.Wrap(services.ErrInvalidInput, "validating", "", "", nil)) {
		t.Fatal("input errors must not be recoverable")
	}
	if services.Recoverable(context.Canceled) {
		t.Fatal("cancellation must not be recoverable")
	}
	if !services.Recoverable(services.Wrap(services.ErrProcessingFailed, "aligning", "", "", nil)) {
		t.Fatal("processing failures must be recoverable")
	}
}
