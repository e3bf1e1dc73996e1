package app

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrForbidden means the caller is authenticated but does not own the item.
	ErrForbidden = errors.New("only the item owner may change it")

	// ErrInvalidLogin is the one answer for unknown email and wrong password.
	ErrInvalidLogin = errors.New("invalid email or password")

	ErrInvalidItem   = errors.New("invalid item")
	ErrInvalidEmail  = errors.New("invalid email address")
	ErrImageRequired = errors.New("an image file is required")
)

// ThrottledError is returned by Login while the client must wait.
type ThrottledError struct {
	Wait time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("too many failed logins, retry in %s", e.Wait.Round(time.Second))
}
