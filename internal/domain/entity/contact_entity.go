package entity

import (
	"time"
)

// Contact is a single address-book entry owned by exactly one user.
// UserID is the owner; every repository operation filters on it.
type Contact struct {
	ID          string
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Birthday    *time.Time
	UserID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
