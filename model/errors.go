package model

import "fmt"

// ErrorKind is the error taxonomy every component reports through. A
// caller matches on Kind rather than string content.
type ErrorKind string

const (
	ErrBadPDF                     ErrorKind = "bad-pdf"
	ErrNoSignatures               ErrorKind = "no-signatures"
	ErrCMSParse                   ErrorKind = "cms-parse-error"
	ErrCMSVerify                  ErrorKind = "cms-verify-error"
	ErrPAdESBindingFailure        ErrorKind = "pades-binding-failure"
	ErrAlgorithmMismatch          ErrorKind = "algorithm-mismatch"
	ErrUnsupportedAlgorithm       ErrorKind = "unsupported-algorithm"
	ErrCertPathFailure            ErrorKind = "cert-path-failure"
	ErrTimestampVerifyError       ErrorKind = "timestamp-verify-error"
	ErrSVTParseError              ErrorKind = "svt-parse-error"
	ErrSVTVerifyError             ErrorKind = "svt-verify-error"
	ErrIOError                    ErrorKind = "io-error"
	ErrInternalInvariantViolation ErrorKind = "internal-invariant-violation"

	// ErrSVTAlgorithmUnsupported is a diagnostic, not necessarily fatal:
	// the matcher surfaces it instead of silently skipping an SVT entry
	// whose digest algorithm the registry does not recognize.
	ErrSVTAlgorithmUnsupported ErrorKind = "svt-algorithm-unsupported"

	// ErrNoPriorRevision signals a signature at the first revision of a
	// document, which has no preceding byte prefix to extract.
	ErrNoPriorRevision ErrorKind = "no-prior-revision"
)

// Error is the concrete error type every component returns so that
// callers can discriminate on Kind via errors.As.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap builds an *Error of the given kind, wrapping an underlying cause.
func Wrap(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// New builds an *Error of the given kind with no underlying cause.
func New(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}
