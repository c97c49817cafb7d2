package apperr

import "errors"

// Kinds of failure a handler can map to an HTTP status.
var (
	ErrValidation     = errors.New("validation error")
	ErrConflict       = errors.New("conflict")
	ErrAuthentication = errors.New("authentication failed")
	ErrAuthorization  = errors.New("access denied")
	ErrNotFound       = errors.New("not found")
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error carries a client-facing message and the kind it belongs to.
type Error struct {
	Kind    error
	Message string
	Fields  []FieldError
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func Validation(message string, fields ...FieldError) error {
	return &Error{Kind: ErrValidation, Message: message, Fields: fields}
}

func Conflict(message string) error {
	return &Error{Kind: ErrConflict, Message: message}
}

func Authentication(message string) error {
	return &Error{Kind: ErrAuthentication, Message: message}
}

func Authorization(message string) error {
	return &Error{Kind: ErrAuthorization, Message: message}
}

func NotFound(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}

// Message returns the client-facing message of err, or fallback when err
// does not carry one.
func Message(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}

// Fields returns the per-field validation details carried by err, if any.
func Fields(err error) []FieldError {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Fields
	}
	return nil
}
