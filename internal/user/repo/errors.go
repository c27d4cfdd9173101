package repo

import "errors"

// Store-level outcomes shared by every backend.
var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)
