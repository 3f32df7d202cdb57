package domain

import "errors"

var (
	// ErrNotFound indicates that a requested record was not found.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEntry indicates the message identity already exists; the
	// merge step treats this as "already persisted", not a failure.
	ErrDuplicateEntry = errors.New("duplicate message entry")
)
