package domain

import "errors"

var (
	// ErrNotFound indicates that a requested message was not found.
	ErrNotFound = errors.New("message not found")
	// ErrNoRecipients indicates a send request with an empty recipient list.
	ErrNoRecipients = errors.New("no recipients")
)
