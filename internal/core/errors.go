package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Provider selection errors (client-input faults, never retried)
	ErrProviderNameEmpty   = &Error{Code: "PROVIDER_NAME_EMPTY", Message: "provider name cannot be empty"}
	ErrProviderUnsupported = &Error{Code: "PROVIDER_UNSUPPORTED", Message: "unsupported provider"}
	ErrCredentialMissing   = &Error{Code: "CREDENTIAL_MISSING", Message: "API key cannot be empty for provider"}

	// Provider call errors (upstream faults)
	ErrLLMTransport      = &Error{Code: "LLM_TRANSPORT", Message: "LLM request failed"}
	ErrLLMUpstreamStatus = &Error{Code: "LLM_UPSTREAM_STATUS", Message: "LLM API returned an error status"}
	ErrLLMEmptyResponse  = &Error{Code: "LLM_EMPTY_RESPONSE", Message: "empty content in LLM response"}
	ErrLLMBadResponse    = &Error{Code: "LLM_BAD_RESPONSE", Message: "malformed LLM response"}
	ErrLLMEmptyPrompt    = &Error{Code: "LLM_EMPTY_PROMPT", Message: "cannot build prompt from empty message list"}

	// Session errors
	ErrSessionNotFound  = &Error{Code: "SESSION_NOT_FOUND", Message: "session not found"}
	ErrSessionForbidden = &Error{Code: "SESSION_FORBIDDEN", Message: "unauthorized access to session"}

	// User errors
	ErrUserNotFound = &Error{Code: "USER_NOT_FOUND", Message: "user not found"}
	ErrUserExists   = &Error{Code: "USER_EXISTS", Message: "user already exists"}
	ErrUnauthorized = &Error{Code: "UNAUTHORIZED", Message: "missing or invalid access token"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)
