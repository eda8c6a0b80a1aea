package app

import "errors"

var (
	// ErrCredentialsRequired is returned when registration is missing a
	// username or password.
	ErrCredentialsRequired = errors.New("username and password are required")

	// ErrInvalidEmail is returned when a registration email is missing or
	// not a syntactically valid address.
	ErrInvalidEmail = errors.New("enter a valid email address")

	// ErrNewPasswordRequired is returned when a reset confirmation carries
	// no replacement password.
	ErrNewPasswordRequired = errors.New("new password is required")
)

// FieldErrors maps a field name to its validation failures. It is the error
// shape of group creation: all fields are checked, nothing is persisted if
// any of them fails.
type FieldErrors map[string][]string

func (e FieldErrors) Error() string {
	return "validation failed"
}

func (e FieldErrors) add(field, message string) {
	e[field] = append(e[field], message)
}
