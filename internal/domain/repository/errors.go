package repository

import "errors"

var (
	// ErrNotFound signals an absent row or an owner/id mismatch. Handlers
	// translate it to 404; it never reveals whether the row exists for
	// another owner.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate signals a unique-constraint violation (e.g. user email).
	ErrDuplicate = errors.New("duplicate record")
)
