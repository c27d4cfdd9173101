package entity

// DirectoryUser is a name/email listing entry. It is unrelated to accounts
// and lives in its own `directory_users` collection/table.
type DirectoryUser struct {
	ID    string `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
}
