package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// Password holds a bcrypt hash, never the plain text.
// RefreshToken is the currently valid refresh credential; nil once logged out.
type User struct {
	ID           string
	Username     string
	Email        string
	Password     string
	RefreshToken *string
	Avatar       *string
	Confirmed    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
