package entity

// User is an account in the `users` collection/table. Password holds the
// bcrypt hash, never the plaintext. ResetCode is nil until a reset is
// requested and is never cleared.
type User struct {
	ID        string  `db:"id" json:"id"`
	Email     string  `db:"email" json:"email"`
	Password  string  `db:"password" json:"-"`
	ResetCode *string `db:"reset_code" json:"-"`
}

// HasPendingReset reports whether a reset code has been issued.
func (u *User) HasPendingReset() bool {
	return u.ResetCode != nil && *u.ResetCode != ""
}
