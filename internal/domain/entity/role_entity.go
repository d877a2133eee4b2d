package entity

import "time"

// Role represents an authorization role.
// Accounts hold at most one active role at a time even though the
// registry stores a set; role change fully replaces the assignment.
type Role struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
