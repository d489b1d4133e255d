package repository

import (
	"context"
	"time"

	"github.com/olehvasylenko/contacts-api/internal/domain/entity"
)

// ContactFields is the writable portion of a contact. Updates are full
// overwrites: callers always supply the complete representation.
type ContactFields struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Birthday    *time.Time
}

// SearchFilter holds the optional case-insensitive substring filters for
// Search. Empty fields are not applied; supplied ones combine with AND.
type SearchFilter struct {
	FirstName string
	LastName  string
	Email     string
	Skip      int
	Limit     int
}

// ContactRepository is the per-user scoped persistence contract. Every
// operation takes the owner id and must never return another user's rows.
type ContactRepository interface {
	Create(ctx context.Context, fields ContactFields, ownerID string) (*entity.Contact, error)
	List(ctx context.Context, limit, offset int, ownerID string) ([]entity.Contact, error)
	GetByID(ctx context.Context, id, ownerID string) (*entity.Contact, error)
	Update(ctx context.Context, id string, fields ContactFields, ownerID string) (*entity.Contact, error)
	// Delete removes the row and returns its prior state.
	Delete(ctx context.Context, id, ownerID string) (*entity.Contact, error)
	// UpcomingBirthdays returns contacts whose birthday falls within the next
	// `days` days. See the implementation for the legacy day-of-month
	// heuristic vs the calendar-accurate mode.
	UpcomingBirthdays(ctx context.Context, days int, ownerID string) ([]entity.Contact, error)
	Search(ctx context.Context, f SearchFilter, ownerID string) ([]entity.Contact, error)
}
