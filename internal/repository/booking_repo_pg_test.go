package repository

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/savichev/kickora/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestNewBookingRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewBookingRepository(pool)
	assert.NotNil(t, repo)
}

func TestPGError_UniqueViolationIsDuplicateBooking(t *testing.T) {
	err := pgError(&pgconn.PgError{Code: "23505", ConstraintName: "bookings_active_user_match"})
	assert.ErrorIs(t, err, domain.ErrAlreadyBooked)
}

func TestPGError_SerializationFailureIsConflict(t *testing.T) {
	err := pgError(&pgconn.PgError{Code: "40001"})
	assert.ErrorIs(t, err, domain.ErrTxConflict)
}

func TestPGError_PassesThroughOtherErrors(t *testing.T) {
	plain := errors.New("connection refused")
	assert.Equal(t, plain, pgError(plain))

	other := &pgconn.PgError{Code: "23503"}
	assert.Equal(t, error(other), pgError(other))
}
