package domain

import (
	"errors"
	"strings"
)

var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidToken       = errors.New("invalid session token")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("access forbidden")
	ErrTaskNotFound       = errors.New("task not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrTooManyRequests    = errors.New("too many requests")
)

// FieldIssue describes one failed input rule. Path is the dotted JSON path of
// the offending field.
type FieldIssue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError is returned when request input does not have the expected
// shape or range.
type ValidationError struct {
	Issues []FieldIssue
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(path, message string) *ValidationError {
	return &ValidationError{Issues: []FieldIssue{{Path: path, Message: message}}}
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		if is.Path == "" {
			msgs = append(msgs, is.Message)
			continue
		}
		msgs = append(msgs, is.Path+": "+is.Message)
	}
	return "validation error: " + strings.Join(msgs, "; ")
}
