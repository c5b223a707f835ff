package dto

import (
	"errors"
	"fmt"
)

// ErrorKind classifies analysis failures.
type ErrorKind string

const (
	KindValidation      ErrorKind = "ValidationError"
	KindDataUnavailable ErrorKind = "DataUnavailable"
	KindNarrative       ErrorKind = "NarrativeError"
	KindSink            ErrorKind = "SinkError"
	KindTaskTimeout     ErrorKind = "TaskTimeout"
	KindCancelled       ErrorKind = "Cancelled"
	KindInternal        ErrorKind = "InternalError"
)

var (
	// ErrTaskNotFound is returned for unknown or expired batch task ids.
	ErrTaskNotFound = errors.New("task not found")
	// ErrAnalysisNotFound is returned for unknown history ids.
	ErrAnalysisNotFound = errors.New("analysis not found")
)

// AnalysisError is the structured error surfaced to callers.
type AnalysisError struct {
	Kind   ErrorKind
	Symbol string
	Reason string
	Err    error
}

func (e *AnalysisError) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("%s [%s]: %s", e.Kind, e.Symbol, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// NewError builds an AnalysisError, taking the reason from err when reason is empty.
func NewError(kind ErrorKind, symbol, reason string, err error) *AnalysisError {
	if reason == "" && err != nil {
		reason = err.Error()
	}
	return &AnalysisError{Kind: kind, Symbol: symbol, Reason: reason, Err: err}
}

// KindOf returns the kind of err, KindInternal when err is not an AnalysisError.
func KindOf(err error) ErrorKind {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// IsKind reports whether err is an AnalysisError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// Failure is the caller-visible form of a failed symbol.
type Failure struct {
	Symbol string    `json:"symbol"`
	Kind   ErrorKind `json:"kind"`
	Reason string    `json:"reason"`
}

// FailureOf converts any error into a Failure for symbol.
func FailureOf(symbol string, err error) Failure {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return Failure{Symbol: symbol, Kind: ae.Kind, Reason: ae.Reason}
	}
	return Failure{Symbol: symbol, Kind: KindInternal, Reason: err.Error()}
}

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
