package domain

import "errors"

var (
	// ErrNotFound indicates that a requested contact was not found.
	ErrNotFound = errors.New("contact not found")
)
