package errors

import (
	"errors"
	"fmt"
	"time"
)

// This package defines a centralized set of sentinel errors for the application.
// Using sentinel errors allows services to return specific, recognizable error types
// without coupling them to implementation details like HTTP status codes. The API
// layer can then use `errors.Is()` to check for these specific errors and map
// them to the correct HTTP responses.

var (
	// ErrNotFound signifies that a requested resource could not be located.
	// This is typically mapped to a 404 Not Found HTTP status.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation signifies that input data provided by a client failed
	// business rule validation.
	// This is typically mapped to a 400 Bad Request HTTP status.
	ErrValidation = errors.New("validation failed")

	// ErrConflict signifies that an operation could not be completed because
	// it conflicts with the current state of a resource (e.g., starting a
	// generation while another one is still running on the same session).
	// This is typically mapped to a 409 Conflict HTTP status.
	ErrConflict = errors.New("resource conflict")

	// ErrInternal signifies an unexpected error on the server. This is a generic
	// error used to prevent leaking sensitive implementation details to the client.
	// This is typically mapped to a 500 Internal Server Error HTTP status.
	ErrInternal = errors.New("internal server error")
)

// Code identifies the failure class of an AIError. Every failure that crosses
// a component boundary in the orchestration pipeline carries one of these.
type Code string

const (
	// CodeChatError covers any backend HTTP or stream failure. Surfaced to the
	// caller with the backend's message; nothing is retried automatically.
	CodeChatError Code = "CHAT_ERROR"

	// CodeBudgetExhausted means the requested output reservation meets or
	// exceeds the model's context window. Surfaced before any network call.
	CodeBudgetExhausted Code = "BUDGET_EXHAUSTED"

	// CodeParseFailed means structured-intent extraction failed. Callers treat
	// this as "no intent detected"; it is never shown to the end user.
	CodeParseFailed Code = "PARSE_FAILED"

	// CodeAborted marks a user-cancelled generation. Not an error condition;
	// the partial assistant message is kept.
	CodeAborted Code = "ABORTED"

	// CodeConfigurationMissing means the selected backend requires a credential
	// that is absent. Surfaced before any network call.
	CodeConfigurationMissing Code = "CONFIGURATION_MISSING"

	// CodeConflict means a generation is already running for the session. The
	// new request is rejected; the running generation is unaffected.
	CodeConflict Code = "CONFLICT"
)

// AIError is the uniform failure shape returned to callers regardless of
// which component failed.
type AIError struct {
	Code       Code      `json:"code"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
	ProviderID string    `json:"provider_id,omitempty"`
}

func (e *AIError) Error() string {
	if e.ProviderID != "" {
		return fmt.Sprintf("%s (%s): %s", e.Code, e.ProviderID, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAIError builds an AIError with the current timestamp.
func NewAIError(code Code, providerID, message string) *AIError {
	return &AIError{
		Code:       code,
		Message:    message,
		Timestamp:  time.Now().UTC(),
		ProviderID: providerID,
	}
}

// AsAIError unwraps err into an *AIError if one is anywhere in its chain.
func AsAIError(err error) (*AIError, bool) {
	var aiErr *AIError
	if errors.As(err, &aiErr) {
		return aiErr, true
	}
	return nil, false
}
