package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Authentication errors (AUTH-001 to AUTH-099)
	ErrCodeAuthLoginFailed        ErrorCode = "AUTH-001"
	ErrCodeAuthNotLoggedIn        ErrorCode = "AUTH-002"
	ErrCodeAuthTokenInvalid       ErrorCode = "AUTH-003"
	ErrCodeAuthVerifyFailed       ErrorCode = "AUTH-004"
	ErrCodeAuthResendFailed       ErrorCode = "AUTH-005"
	ErrCodeAuthCodeInvalid        ErrorCode = "AUTH-006"
	ErrCodeAuthOperationPending   ErrorCode = "AUTH-007"
	ErrCodeAuthAlreadyVerified    ErrorCode = "AUTH-008"
	ErrCodeAuthVerificationNeeded ErrorCode = "AUTH-009"

	// Session store errors (SESSION-001 to SESSION-099)
	ErrCodeSessionInvalid ErrorCode = "SESSION-001"
	ErrCodeSessionAbsent  ErrorCode = "SESSION-002"
	ErrCodeSessionPersist ErrorCode = "SESSION-003"

	// Subscription errors (SUB-001 to SUB-099)
	ErrCodeSubStatusFailed   ErrorCode = "SUB-001"
	ErrCodeSubPlansFailed    ErrorCode = "SUB-002"
	ErrCodeSubInitiateFailed ErrorCode = "SUB-003"
	ErrCodeSubPlanUnknown    ErrorCode = "SUB-004"
	ErrCodeSubCallbackBad    ErrorCode = "SUB-005"

	// Network/transport errors (NET-001 to NET-099)
	ErrCodeNetUnreachable ErrorCode = "NET-001"
	ErrCodeNetBadResponse ErrorCode = "NET-002"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid ErrorCode = "CONFIG-001"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileReadFailed  ErrorCode = "IO-001"
	ErrCodeFileWriteFailed ErrorCode = "IO-002"
	ErrCodeDirectoryFailed ErrorCode = "IO-003"
)

// ClientError represents an enhanced error with code and suggestions
type ClientError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *ClientError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *ClientError) Unwrap() error {
	return e.Cause
}

// New creates a new ClientError
func New(code ErrorCode, message string) *ClientError {
	return &ClientError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new ClientError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *ClientError {
	return &ClientError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *ClientError) WithSuggestion(suggestion string) *ClientError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *ClientError) WithSuggestions(suggestions ...string) *ClientError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// Common error constructors for frequently used errors

// NewNotLoggedInError indicates that no stored session exists
func NewNotLoggedInError() *ClientError {
	return New(ErrCodeAuthNotLoggedIn, "not logged in").
		WithSuggestion("Run 'threateye login --email <email> --password <password>' to authenticate")
}

// NewVerificationNeededError indicates the account still requires email verification
func NewVerificationNeededError(email string) *ClientError {
	return New(ErrCodeAuthVerificationNeeded, fmt.Sprintf("email %s is not verified", email)).
		WithSuggestion("Check your inbox for the 6-digit verification code").
		WithSuggestion("Run 'threateye verify --code <code>' to verify").
		WithSuggestion("Run 'threateye resend' if the code expired")
}

// NewCodeInvalidError indicates a locally rejected verification code
func NewCodeInvalidError(code string) *ClientError {
	return New(ErrCodeAuthCodeInvalid, fmt.Sprintf("verification code %q must be exactly 6 digits", code)).
		WithSuggestion("Enter the 6-digit code from the verification email")
}

// NewNetworkError wraps a transport failure without leaking transport internals
func NewNetworkError(cause error) *ClientError {
	return Wrap(ErrCodeNetUnreachable, "network error, try again", cause).
		WithSuggestion("Check your internet connection").
		WithSuggestion("Set THREATEYE_API_URL or edit ~/.threateye/config.yaml if the API moved")
}

// NewPlanUnknownError indicates an unrecognized subscription plan id
func NewPlanUnknownError(planID string) *ClientError {
	return New(ErrCodeSubPlanUnknown, fmt.Sprintf("unknown subscription plan: %s", planID)).
		WithSuggestion("Run 'threateye plans' to list available plans")
}
