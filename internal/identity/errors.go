package identity

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound indicates no user matched the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail indicates the email is already taken, whether
	// detected up front or by the storage layer's unique index.
	ErrDuplicateEmail = errors.New("a user with that email already exists")
	// ErrInvalidCredentials is deliberately identical for unknown emails and
	// wrong passwords so login errors cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountDisabled is only returned after the password matched.
	ErrAccountDisabled = errors.New("user account is disabled")
)

// msgDuplicateEmail is the user-facing form of ErrDuplicateEmail used in
// field-level error bodies.
const msgDuplicateEmail = "A user with that email already exists."

// ValidationError collects per-field messages for a rejected request. It is
// rendered verbatim as the 400 response body.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError returns an empty ValidationError ready for Add calls.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

// Add appends a message under the given field key.
func (e *ValidationError) Add(field, msg string) {
	e.Fields[field] = append(e.Fields[field], msg)
}

// Empty reports whether any message was recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Fields[k], " "))
	}
	return b.String()
}
