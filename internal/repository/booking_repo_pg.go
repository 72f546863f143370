package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/savichev/kickora/internal/domain"
)

type BookingRepository interface {
	CreateWithReserve(ctx context.Context, booking *domain.Booking) error
	CancelWithRelease(ctx context.Context, userID, matchID string, cancelledAt time.Time, refund float64) (*domain.Booking, error)
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	GetActive(ctx context.Context, userID, matchID string) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID string, skip, limit int) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, user_id, match_id, booking_time, is_cancelled, cancelled_at, refund_amount`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.UserID, &b.MatchID, &b.BookingTime, &b.IsCancelled, &b.CancelledAt, &b.RefundAmount); err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateWithReserve takes one player slot and persists the booking as a
// single transaction. The decrement is conditional, so two concurrent calls
// on a match with one slot left cannot both succeed; the partial unique
// index on (user_id, match_id) WHERE NOT is_cancelled rejects a second
// active booking by the same user. Either failure rolls back the pair.
func (r *PGBookingRepository) CreateWithReserve(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `UPDATE matches SET players_left = players_left - 1, updated_at = now()
		WHERE id=$1 AND is_active AND players_left > 0`, booking.MatchID)
	if err != nil {
		return pgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return r.classifyReserveFailure(ctx, booking.MatchID)
	}

	booking.IsCancelled = false
	if err := tx.QueryRow(ctx, `INSERT INTO bookings (id, user_id, match_id, booking_time)
		VALUES ($1, $2, $3, now())
		RETURNING booking_time`, booking.ID, booking.UserID, booking.MatchID).
		Scan(&booking.BookingTime); err != nil {
		return pgError(err)
	}

	return pgError(tx.Commit(ctx))
}

// classifyReserveFailure runs outside the failed update to tell the caller
// why no slot was taken.
func (r *PGBookingRepository) classifyReserveFailure(ctx context.Context, matchID string) error {
	var isActive bool
	err := r.db.QueryRow(ctx, `SELECT is_active FROM matches WHERE id=$1`, matchID).Scan(&isActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrMatchNotFound
	}
	if err != nil {
		return err
	}
	if !isActive {
		return domain.ErrMatchInactive
	}
	return domain.ErrMatchFull
}

// CancelWithRelease flips the active booking for (user, match) and returns
// the slot in one transaction. The NOT is_cancelled predicate makes the
// cancel idempotence-safe: a second attempt matches no row. The release is
// clamped to max_players.
func (r *PGBookingRepository) CancelWithRelease(ctx context.Context, userID, matchID string, cancelledAt time.Time, refund float64) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `UPDATE bookings SET is_cancelled=true, cancelled_at=$1, refund_amount=$2
		WHERE user_id=$3 AND match_id=$4 AND NOT is_cancelled
		RETURNING `+bookingColumns, cancelledAt, refund, userID, matchID)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, pgError(err)
	}

	if _, err := tx.Exec(ctx, `UPDATE matches SET players_left = LEAST(players_left + 1, max_players), updated_at = now()
		WHERE id=$1`, matchID); err != nil {
		return nil, pgError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, pgError(err)
	}
	return b, nil
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *PGBookingRepository) GetActive(ctx context.Context, userID, matchID string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1 AND match_id=$2 AND NOT is_cancelled`, userID, matchID)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID string, skip, limit int) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1
		ORDER BY booking_time DESC OFFSET $2 LIMIT $3`, userID, skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// pgError maps driver errors onto the domain taxonomy: a violation of the
// active-booking unique index means a duplicate booking, a serialization
// failure is a retryable conflict.
func pgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505":
		return domain.ErrAlreadyBooked
	case "40001":
		return domain.ErrTxConflict
	}
	return err
}

var _ BookingRepository = (*PGBookingRepository)(nil)
