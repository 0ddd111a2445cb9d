package domain

import "time"

// User is a registered dashboard account. PasswordHash is opaque bcrypt
// output and must never reach a client.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
