package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/olehvasylenko/contacts-api/internal/domain/entity"
	"github.com/olehvasylenko/contacts-api/internal/domain/repository"
)

// invalid_text_representation: a path id that is not a valid uuid fails the
// cast inside Postgres, not in Go, so it must read as "no such row".
const invalidTextRepresentation = "22P02"

const contactColumns = `id, first_name, last_name, email, phone_number, birthday, user_id, created_at, updated_at`

// ContactRepository is the pgx-backed contact store. Every statement filters
// on user_id so cross-tenant access is impossible by construction.
type ContactRepository struct {
	pool         *pgxpool.Pool
	logger       *logrus.Logger
	calendarMode bool
	now          func() time.Time
}

func NewContactRepository(pool *pgxpool.Pool, logger *logrus.Logger, calendarMode bool) *ContactRepository {
	return &ContactRepository{pool: pool, logger: logger, calendarMode: calendarMode, now: time.Now}
}

func (r *ContactRepository) Create(ctx context.Context, fields repository.ContactFields, ownerID string) (*entity.Contact, error) {
	c := &entity.Contact{
		FirstName:   fields.FirstName,
		LastName:    fields.LastName,
		Email:       fields.Email,
		PhoneNumber: fields.PhoneNumber,
		Birthday:    fields.Birthday,
		UserID:      ownerID,
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO contacts (first_name, last_name, email, phone_number, birthday, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, c.FirstName, c.LastName, c.Email, c.PhoneNumber, c.Birthday, c.UserID)

	if err := row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ContactRepository) List(ctx context.Context, limit, offset int, ownerID string) ([]entity.Contact, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE user_id = $1
		ORDER BY id
		LIMIT $2 OFFSET $3
	`, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanContacts(rows)
}

func (r *ContactRepository) GetByID(ctx context.Context, id, ownerID string) (*entity.Contact, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE id = $1 AND user_id = $2
	`, id, ownerID)
	return scanContact(row)
}

func (r *ContactRepository) Update(ctx context.Context, id string, fields repository.ContactFields, ownerID string) (*entity.Contact, error) {
	// Full overwrite; partial updates are not supported.
	row := r.pool.QueryRow(ctx, `
		UPDATE contacts
		SET first_name = $1, last_name = $2, email = $3, phone_number = $4, birthday = $5, updated_at = $6
		WHERE id = $7 AND user_id = $8
		RETURNING `+contactColumns+`
	`, fields.FirstName, fields.LastName, fields.Email, fields.PhoneNumber, fields.Birthday, time.Now(), id, ownerID)
	return scanContact(row)
}

func (r *ContactRepository) Delete(ctx context.Context, id, ownerID string) (*entity.Contact, error) {
	row := r.pool.QueryRow(ctx, `
		DELETE FROM contacts
		WHERE id = $1 AND user_id = $2
		RETURNING `+contactColumns+`
	`, id, ownerID)
	return scanContact(row)
}

func (r *ContactRepository) UpcomingBirthdays(ctx context.Context, days int, ownerID string) ([]entity.Contact, error) {
	if r.calendarMode {
		return r.calendarBirthdays(ctx, days, ownerID)
	}

	month, maxDay := legacyBirthdayWindow(r.now(), days)
	rows, err := r.pool.Query(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE user_id = $1
		  AND birthday IS NOT NULL
		  AND EXTRACT(MONTH FROM birthday) = $2
		  AND EXTRACT(DAY FROM birthday) <= $3
		ORDER BY EXTRACT(DAY FROM birthday)
	`, ownerID, month, maxDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanContacts(rows)
}

func (r *ContactRepository) calendarBirthdays(ctx context.Context, days int, ownerID string) ([]entity.Contact, error) {
	window := calendarBirthdayWindow(r.now(), days)

	conds := make([]string, 0, len(window))
	args := []any{ownerID}
	for _, md := range window {
		conds = append(conds, fmt.Sprintf(
			"(EXTRACT(MONTH FROM birthday) = $%d AND EXTRACT(DAY FROM birthday) = $%d)",
			len(args)+1, len(args)+2))
		args = append(args, md.Month, md.Day)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE user_id = $1
		  AND birthday IS NOT NULL
		  AND (`+strings.Join(conds, " OR ")+`)
		ORDER BY EXTRACT(MONTH FROM birthday), EXTRACT(DAY FROM birthday)
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanContacts(rows)
}

func (r *ContactRepository) Search(ctx context.Context, f repository.SearchFilter, ownerID string) ([]entity.Contact, error) {
	where := []string{"user_id = $1"}
	args := []any{ownerID}

	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		where = append(where, fmt.Sprintf("%s ILIKE '%%' || $%d || '%%'", column, len(args)))
	}
	add("first_name", f.FirstName)
	add("last_name", f.LastName)
	add("email", f.Email)

	args = append(args, f.Limit, f.Skip)
	query := fmt.Sprintf(`
		SELECT `+contactColumns+`
		FROM contacts
		WHERE %s
		ORDER BY id
		LIMIT $%d OFFSET $%d
	`, strings.Join(where, " AND "), len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		// Degrade to an empty result set instead of failing the request.
		r.logger.WithError(err).Warn("contact search query failed")
		return []entity.Contact{}, nil
	}
	defer rows.Close()

	contacts, err := scanContacts(rows)
	if err != nil {
		r.logger.WithError(err).Warn("contact search scan failed")
		return []entity.Contact{}, nil
	}
	return contacts, nil
}

func scanContact(row pgx.Row) (*entity.Contact, error) {
	c := &entity.Contact{}
	if err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.PhoneNumber,
		&c.Birthday, &c.UserID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func scanContacts(rows pgx.Rows) ([]entity.Contact, error) {
	contacts := make([]entity.Contact, 0)
	for rows.Next() {
		c := entity.Contact{}
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.PhoneNumber,
			&c.Birthday, &c.UserID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

var _ repository.ContactRepository = (*ContactRepository)(nil)
