// api/schemas/errors.go
package schemas

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a failure so a host can tell "fix your input" apart from
// "the service is unhealthy" and "the model could not converge".
type ErrorKind string

const (
	KindValidation           ErrorKind = "validation_error"
	KindTransport            ErrorKind = "transport_error"
	KindService              ErrorKind = "service_error"
	KindEmptyResponse        ErrorKind = "empty_response"
	KindSchemaViolation      ErrorKind = "schema_violation"
	KindRetryBudgetExhausted ErrorKind = "retry_budget_exhausted"

	// Reporting-only kinds for errors that never went through classification.
	KindCanceled ErrorKind = "canceled"
	KindInternal ErrorKind = "internal_error"
)

// Retryable reports whether a host may retry the whole invocation at a coarser
// grain. Only infrastructure failures qualify.
func (k ErrorKind) Retryable() bool {
	return k == KindTransport || k == KindService
}

// Error is the classified error type produced at every component boundary.
type Error struct {
	Kind ErrorKind
	// Op names the operation that failed, e.g. "llmclient.chat".
	Op      string
	Message string
	// Field is the offending request field or JSON path, when determinable.
	Field string
	// StatusCode carries the service status for KindService.
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))
	if e.Field != "" {
		fmt.Fprintf(&b, " at %q", e.Field)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinel errors by kind, so errors.Is(err, ErrSchemaViolation)
// holds for every schema violation regardless of field or message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Op != "" || t.Message != "" || t.Field != "" || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrValidation           = &Error{Kind: KindValidation}
	ErrTransport            = &Error{Kind: KindTransport}
	ErrService              = &Error{Kind: KindService}
	ErrEmptyResponse        = &Error{Kind: KindEmptyResponse}
	ErrSchemaViolation      = &Error{Kind: KindSchemaViolation}
	ErrRetryBudgetExhausted = &Error{Kind: KindRetryBudgetExhausted}
)

// NewValidationError reports malformed caller input.
func NewValidationError(field, msg string) *Error {
	return &Error{Kind: KindValidation, Op: "validate", Field: field, Message: msg}
}

// NewSchemaViolation reports a payload that does not conform to its schema.
func NewSchemaViolation(field, msg string) *Error {
	return &Error{Kind: KindSchemaViolation, Op: "extract", Field: field, Message: msg}
}

// NewEmptyResponse reports a completion with no usable text payload.
func NewEmptyResponse(msg string) *Error {
	return &Error{Kind: KindEmptyResponse, Op: "extract", Message: msg}
}

// NewTransportError wraps a network level failure of a model call.
func NewTransportError(op string, err error) *Error {
	return &Error{Kind: KindTransport, Op: op, Err: err}
}

// NewServiceError wraps a non-success response from the generation service.
func NewServiceError(op string, status int, msg string, err error) *Error {
	return &Error{Kind: KindService, Op: op, StatusCode: status, Message: msg, Err: err}
}

var kindSentinels = []*Error{
	ErrRetryBudgetExhausted,
	ErrValidation,
	ErrTransport,
	ErrService,
	ErrEmptyResponse,
	ErrSchemaViolation,
}

// KindOf returns the classification of err, falling back to KindCanceled for
// context errors and KindInternal for anything unclassified.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	for _, s := range kindSentinels {
		if errors.Is(err, s) {
			return s.Kind
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCanceled
	}
	return KindInternal
}

// DetailedError is implemented by errors that carry diagnostic data beyond a
// message, such as the last candidate of an exhausted refinement loop.
type DetailedError interface {
	error
	ErrorDetails() map[string]any
}

// ErrorPayload is the wire form of a failure handed back to a host.
type ErrorPayload struct {
	Kind       ErrorKind      `json:"kind" yaml:"kind"`
	Message    string         `json:"message" yaml:"message"`
	Field      string         `json:"field,omitempty" yaml:"field,omitempty"`
	StatusCode int            `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	Retryable  bool           `json:"retryable" yaml:"retryable"`
	Details    map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
}

// ToPayload flattens err into an ErrorPayload. It returns nil for a nil error.
func ToPayload(err error) *ErrorPayload {
	if err == nil {
		return nil
	}
	kind := KindOf(err)
	p := &ErrorPayload{
		Kind:      kind,
		Message:   err.Error(),
		Retryable: kind.Retryable(),
	}
	var e *Error
	if errors.As(err, &e) {
		p.Field = e.Field
		p.StatusCode = e.StatusCode
	}
	var d DetailedError
	if errors.As(err, &d) {
		p.Details = d.ErrorDetails()
	}
	return p
}
