package model

// User is a registered account. Accounts are never deleted and the password
// hash is never changed after registration.
type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
}
