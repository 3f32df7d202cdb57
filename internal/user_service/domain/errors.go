package domain

import "errors"

var (
	// ErrNotFound indicates that a requested user was not found.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEntry indicates a unique constraint violation (username).
	ErrDuplicateEntry = errors.New("duplicate user entry")
	// ErrInvalidCredentials indicates a failed username/password check.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInsufficientCredits indicates the user cannot afford a send.
	ErrInsufficientCredits = errors.New("insufficient credits")
)
