package types

// User represents an account in the system.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Email is the user's email address. Globally unique.
	Email string `json:"email" db:"user_email"`

	// Username is the unique login name chosen by the user.
	Username string `json:"username" db:"user_name"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"user_password"`
}
