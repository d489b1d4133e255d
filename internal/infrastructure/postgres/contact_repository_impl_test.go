package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/olehvasylenko/contacts-api/internal/domain/repository"
)

// errRow is a pgx.Row whose Scan fails with a fixed error.
type errRow struct {
	err error
}

func (r errRow) Scan(...any) error { return r.err }

func TestScanContactNoRowsIsNotFound(t *testing.T) {
	_, err := scanContact(errRow{err: pgx.ErrNoRows})
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestScanContactMalformedIDIsNotFound(t *testing.T) {
	// A non-uuid path id fails the uuid cast inside Postgres; the driver
	// surfaces it as invalid_text_representation, which must read as a
	// missing row, not a server error.
	pgErr := &pgconn.PgError{Code: invalidTextRepresentation, Message: "invalid input syntax for type uuid"}
	_, err := scanContact(errRow{err: pgErr})
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestScanContactOtherErrorsPropagate(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := scanContact(errRow{err: boom})
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, repository.ErrNotFound)

	// Other SQLSTATEs stay server errors too.
	pgErr := &pgconn.PgError{Code: "57014", Message: "canceling statement"}
	_, err = scanContact(errRow{err: pgErr})
	require.NotErrorIs(t, err, repository.ErrNotFound)
}
