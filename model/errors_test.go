package model

import (
	"errors"
	"testing"
)

func TestError_UnwrapReturnsCause(t *testing.T) {
	cause := errors.New("underlying cause")
	err := Wrap(ErrCMSParse, "failed to parse", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to find the wrapped cause")
	}
	if errors.Unwrap(err) != cause {
		t.Fatalf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
}

func TestError_NewHasNoCause(t *testing.T) {
	err := New(ErrBadPDF, "not a PDF")
	if err.Unwrap() != nil {
		t.Fatalf("expected New to produce an error with no wrapped cause")
	}
	if err.Kind != ErrBadPDF {
		t.Fatalf("Kind = %v, want %v", err.Kind, ErrBadPDF)
	}
}

func TestError_ErrorStringIncludesKindAndCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(ErrIOError, "read failed", cause)
	msg := err.Error()
	if msg == "" {
		t.Fatal("expected a non-empty error message")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected the constructed error to wrap cause")
	}
}

func TestError_AsDiscriminatesKind(t *testing.T) {
	err := New(ErrSVTAlgorithmUnsupported, "unsupported digest")

	var target *Error
	if !errors.As(err, &target) {
		t.Fatal("expected errors.As to find *Error")
	}
	if target.Kind != ErrSVTAlgorithmUnsupported {
		t.Fatalf("Kind = %v, want %v", target.Kind, ErrSVTAlgorithmUnsupported)
	}
}
