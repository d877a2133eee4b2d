package entity

import (
	"time"
)

// Account is the aggregate root for the account domain.
// Passwords are stored as bcrypt hashes in PasswordHash; the hash never
// leaves this process.
type Account struct {
	ID             string
	Email          string
	UserName       string
	PhoneNumber    string
	PasswordHash   string
	EmailConfirmed bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
