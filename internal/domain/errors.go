package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithCause returns a copy of the error carrying the underlying cause.
func (e *DomainError) WithCause(err error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	ErrCodeBackend           = "BACKEND_ERROR"
	ErrCodeInternalError     = "INTERNAL_ERROR"
	ErrCodeInvalidOperation  = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrEmptyQuery    = NewDomainError(ErrCodeValidation, "search query cannot be empty")
	ErrEmptyDocument = NewDomainError(ErrCodeValidation, "document is empty or no text could be extracted")
)

// Not found errors
var (
	ErrProfileNotFound = NewDomainError(ErrCodeNotFound, "profile not found")
	ErrProjectNotFound = NewDomainError(ErrCodeNotFound, "project not found")
	ErrArticleNotFound = NewDomainError(ErrCodeNotFound, "article not found")
)

// Operation errors
var (
	ErrNoActiveProfile        = NewDomainError(ErrCodeInvalidOperation, "no active profile selected")
	ErrNoActiveProject        = NewDomainError(ErrCodeInvalidOperation, "no active project selected")
	ErrOperationInFlight      = NewDomainError(ErrCodeInvalidOperation, "another request is already in progress")
	ErrComparisonInsufficient = NewDomainError(ErrCodeInvalidOperation, "could not find enough articles to compare")
)

// Backend errors surfaced by the AI gateway
var (
	ErrTranslationFailed = NewDomainError(ErrCodeBackend, "the query could not be translated")
	ErrMalformedResponse = NewDomainError(ErrCodeBackend, "the assistant returned an unexpected response, try again")
	ErrSearchFailed      = NewDomainError(ErrCodeBackend, "no articles could be retrieved, try again later")
	ErrBibliographyFail  = NewDomainError(ErrCodeBackend, "failed to generate the bibliography")
	ErrComparisonFailed  = NewDomainError(ErrCodeBackend, "failed to generate the comparison")
)
