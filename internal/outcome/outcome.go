// internal/outcome/outcome.go
//
// Every orchestrator in resume-builder reports failure as a value. The
// sentinels below name the failure kinds; *Error carries the operation that
// failed plus any diagnostic text captured from an external process.

package outcome

import (
	"errors"
	"strings"
)

var (
	ErrDirectoryNotFound = errors.New("directory not found")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidInput      = errors.New("invalid input")
	ErrToolNotFound      = errors.New("tool not found")
	ErrExternalFailure   = errors.New("external command failed")
	ErrTimeout           = errors.New("timed out")
	ErrArtifactMissing   = errors.New("artifact missing")
	ErrBusy              = errors.New("another action is in progress")
	ErrCanceled          = errors.New("canceled")
)

// Error is the structured failure returned by the orchestrators.
type Error struct {
	// Kind is one of the sentinels above.
	Kind error
	// Op names the operation, e.g. "tailor" or "compile".
	Op string
	// Detail is a short human-readable explanation.
	Detail string
	// Output holds diagnostic text captured from a child process, if any.
	Output string
	// Also lists additional sentinels the error matches.
	Also []error
}

// New builds an *Error for op with the given kind and detail.
func New(op string, kind error, detail string) *Error {
	return &Error{Op: op, Kind: kind, Detail: detail}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	} else {
		b.WriteString("failed")
	}
	if detail := strings.TrimSpace(e.Detail); detail != "" {
		b.WriteString(": ")
		b.WriteString(detail)
	}
	return b.String()
}

// Unwrap exposes the kind (and any secondary kinds) to errors.Is.
func (e *Error) Unwrap() []error {
	if e == nil {
		return nil
	}
	out := make([]error, 0, 1+len(e.Also))
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	return append(out, e.Also...)
}

// WithOutput attaches captured process output.
func (e *Error) WithOutput(output string) *Error {
	e.Output = output
	return e
}

// OutputOf returns the captured output of err when it is an *Error.
func OutputOf(err error) string {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Output
	}
	return ""
}

// Banner renders err as a one-line message suitable for a status bar.
func Banner(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrTimeout):
		return "⏱ " + err.Error()
	case errors.Is(err, ErrToolNotFound):
		return "⚠ " + err.Error()
	case errors.Is(err, ErrBusy):
		return "… " + err.Error()
	default:
		return "✗ " + err.Error()
	}
}
