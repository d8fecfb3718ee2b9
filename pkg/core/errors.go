package core

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies a resolution failure so callers can react
// differently to "the element truly isn't there" versus "the harness
// is broken".
type ErrorCategory int

const (
	ErrCategoryNone           ErrorCategory = iota
	ErrCategoryNotResolved                  // every strategy exhausted without a verified locator
	ErrCategoryInfrastructure               // browser engine or matching service unusable
	ErrCategoryTimeout                      // whole-resolve deadline exceeded
	ErrCategoryConfig                       // invalid resolver configuration
)

// String returns the string representation of ErrorCategory.
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategoryNotResolved:
		return "not_resolved"
	case ErrCategoryInfrastructure:
		return "infrastructure"
	case ErrCategoryTimeout:
		return "timeout"
	case ErrCategoryConfig:
		return "config"
	default:
		return "unknown"
	}
}

// ResolutionError is the structured error every failure path is
// classified into before leaving the resolver. Nothing propagates as a
// generic unlabeled error.
type ResolutionError struct {
	Category ErrorCategory
	Code     string                 // Machine-readable code: locator_not_resolved, engine_unreachable, ...
	Message  string                 // Human-readable message
	Details  map[string]interface{} // Additional context
	Cause    error                  // Underlying error

	// Attempts holds the per-strategy diagnostics for exhaustion
	// failures; empty for other categories.
	Attempts []Attempt
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ResolutionError) Unwrap() error {
	return e.Cause
}

// Is matches by category and code, so errors.Is(err, ErrLocatorNotResolved)
// works on derived copies.
func (e *ResolutionError) Is(target error) bool {
	t, ok := target.(*ResolutionError)
	if !ok {
		return false
	}
	return e.Category == t.Category && e.Code == t.Code
}

// WithCause returns a copy of the error with the given cause.
func (e *ResolutionError) WithCause(cause error) *ResolutionError {
	dup := *e
	dup.Cause = cause
	return &dup
}

// WithMessage returns a copy of the error with a custom message.
func (e *ResolutionError) WithMessage(msg string) *ResolutionError {
	dup := *e
	dup.Message = msg
	return &dup
}

// WithDetails returns a copy of the error with additional details merged in.
func (e *ResolutionError) WithDetails(details map[string]interface{}) *ResolutionError {
	merged := make(map[string]interface{}, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	dup := *e
	dup.Details = merged
	return &dup
}

// WithAttempts returns a copy of the error carrying attempt diagnostics.
func (e *ResolutionError) WithAttempts(attempts []Attempt) *ResolutionError {
	dup := *e
	dup.Attempts = attempts
	return &dup
}

// Predefined errors.
var (
	ErrLocatorNotResolved = &ResolutionError{
		Category: ErrCategoryNotResolved,
		Code:     "locator_not_resolved",
		Message:  "no strategy produced a verified locator",
	}
	ErrInfrastructure = &ResolutionError{
		Category: ErrCategoryInfrastructure,
		Code:     "engine_unreachable",
		Message:  "page engine or matching service is unusable",
	}
	ErrResolveTimeout = &ResolutionError{
		Category: ErrCategoryTimeout,
		Code:     "resolve_timeout",
		Message:  "resolve call exceeded its deadline",
	}
	ErrInvalidConfig = &ResolutionError{
		Category: ErrCategoryConfig,
		Code:     "invalid_config",
		Message:  "invalid resolver configuration",
	}
	ErrUnknownStrategy = &ResolutionError{
		Category: ErrCategoryConfig,
		Code:     "unknown_strategy",
		Message:  "strategy order names an unregistered strategy",
	}
	ErrInvalidSemanticID = &ResolutionError{
		Category: ErrCategoryConfig,
		Code:     "invalid_semantic_id",
		Message:  "semantic id is not usable as a lookup key",
	}
	ErrUnknownSemanticID = &ResolutionError{
		Category: ErrCategoryNotResolved,
		Code:     "unknown_semantic_id",
		Message:  "semantic id is not registered",
	}
)

// NewNotResolved builds the exhaustion failure for a semantic id. When
// any attempt ended Ambiguous, the error notes that the cause was
// ambiguity rather than absence.
func NewNotResolved(id SemanticID, attempts []Attempt) *ResolutionError {
	err := ErrLocatorNotResolved.
		WithDetails(map[string]interface{}{"semanticId": string(id)}).
		WithAttempts(attempts)
	for _, a := range attempts {
		if a.Outcome == OutcomeAmbiguous {
			err = err.WithDetails(map[string]interface{}{"ambiguity": true}).
				WithMessage("no strategy produced a verified locator (at least one candidate was ambiguous)")
			break
		}
	}
	return err
}

// IsNotResolved reports whether err is an exhaustion failure.
func IsNotResolved(err error) bool {
	var re *ResolutionError
	return errors.As(err, &re) && re.Category == ErrCategoryNotResolved
}

// IsInfrastructure reports whether err is an infrastructure fault.
func IsInfrastructure(err error) bool {
	var re *ResolutionError
	return errors.As(err, &re) && re.Category == ErrCategoryInfrastructure
}
