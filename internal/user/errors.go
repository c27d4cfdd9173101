package user

import "errors"

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrAlreadyExists  = errors.New("email already exists")
	ErrBadCredentials = errors.New("invalid credentials")
)

// Codes attached to infrastructure failures with oops.
const (
	CodeStoreFailed     = "STORE_FAILED"
	CodeNotifyFailed    = "NOTIFY_FAILED"
	CodeHashFailed      = "HASH_FAILED"
	CodeTokenFailed     = "TOKEN_FAILED"
	CodeResetCodeFailed = "RESET_CODE_FAILED"
)
