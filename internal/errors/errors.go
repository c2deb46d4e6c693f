package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel errors used to classify failures. Every error surfaced by the
// service layer should be marked with exactly one of these.
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrVersionConflict  = errors.New("version conflict")
	ErrValidation       = errors.New("validation error")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrPermissionDenied = errors.New("permission denied")
	ErrTooManyRequests  = errors.New("too many requests")
	ErrHTTPClient       = errors.New("http client error")
	ErrDatabase         = errors.New("database error")
	ErrSystem           = errors.New("system error")
	ErrInternal         = errors.New("internal error")
)

// InternalError carries the user facing hint and the details that are safe to
// return in an API response alongside the wrapped error.
type InternalError struct {
	Err        error
	DisplayMsg string
	Details    map[string]any
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayMsg
	}
	return e.Err.Error()
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// ErrorBuilder assembles an error step by step and finishes with Mark.
type ErrorBuilder struct {
	err     error
	hint    string
	details map[string]any
}

// NewError starts a builder from a fresh message.
func NewError(msg string) *ErrorBuilder {
	return &ErrorBuilder{err: errors.New(msg)}
}

// NewErrorf starts a builder from a formatted message.
func NewErrorf(format string, args ...any) *ErrorBuilder {
	return &ErrorBuilder{err: errors.Newf(format, args...)}
}

// WithError starts a builder wrapping an existing error.
func WithError(err error) *ErrorBuilder {
	if err == nil {
		err = errors.New("unknown error")
	}
	return &ErrorBuilder{err: err}
}

func (b *ErrorBuilder) WithMessage(msg string) *ErrorBuilder {
	b.err = errors.Wrap(b.err, msg)
	return b
}

func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.hint = hint
	b.err = errors.WithHint(b.err, hint)
	return b
}

func (b *ErrorBuilder) WithHintf(format string, args ...any) *ErrorBuilder {
	return b.WithHint(fmt.Sprintf(format, args...))
}

// WithReportableDetails attaches details that may be returned to API callers.
func (b *ErrorBuilder) WithReportableDetails(details map[string]any) *ErrorBuilder {
	if b.details == nil {
		b.details = make(map[string]any, len(details))
	}
	for k, v := range details {
		b.details[k] = v
	}
	return b
}

// Mark classifies the error with a sentinel and returns the final error.
func (b *ErrorBuilder) Mark(reference error) error {
	marked := errors.Mark(b.err, reference)
	if b.hint == "" && len(b.details) == 0 {
		return marked
	}
	return &InternalError{
		Err:        marked,
		DisplayMsg: b.hint,
		Details:    b.details,
	}
}

func IsNotFound(err error) bool         { return errors.Is(err, ErrNotFound) }
func IsAlreadyExists(err error) bool    { return errors.Is(err, ErrAlreadyExists) }
func IsValidation(err error) bool       { return errors.Is(err, ErrValidation) }
func IsPermissionDenied(err error) bool { return errors.Is(err, ErrPermissionDenied) }
func IsDatabase(err error) bool         { return errors.Is(err, ErrDatabase) }
func IsInvalidOperation(err error) bool { return errors.Is(err, ErrInvalidOperation) }

// Is reports whether err carries the given sentinel mark.
func Is(err, reference error) bool { return errors.Is(err, reference) }

// HintOf returns the first hint attached anywhere in the chain.
func HintOf(err error) string {
	var ie *InternalError
	if errors.As(err, &ie) && ie.DisplayMsg != "" {
		return ie.DisplayMsg
	}
	hints := errors.GetAllHints(err)
	if len(hints) > 0 {
		return hints[0]
	}
	return ""
}

// DetailsOf returns the reportable details attached to the error, if any.
func DetailsOf(err error) map[string]any {
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie.Details
	}
	return nil
}
