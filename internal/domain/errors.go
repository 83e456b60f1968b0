package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrForbidden means the caller is authenticated but may not act on the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials covers unknown emails and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is disabled")
)

// InputError is a business-rule rejection of client input.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

// Invalid builds an InputError.
func Invalid(format string, args ...any) error {
	return &InputError{Message: fmt.Sprintf(format, args...)}
}
