package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/savichev/kickora/internal/domain"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	Update(ctx context.Context, id, transactionID string, status domain.PaymentStatus) (*domain.Payment, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Payment, error)
}

type PGPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) PaymentRepository {
	return &PGPaymentRepository{db: db}
}

const paymentColumns = `id, booking_id, amount, payment_method, coalesce(transaction_id, ''), status, created_at, updated_at`

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	if err := row.Scan(&p.ID, &p.BookingID, &p.Amount, &p.PaymentMethod, &p.TransactionID, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PGPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	err := r.db.QueryRow(ctx, `INSERT INTO payments (id, booking_id, amount, payment_method, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		payment.ID, payment.BookingID, payment.Amount, payment.PaymentMethod, payment.Status).
		Scan(&payment.CreatedAt, &payment.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.ErrDuplicatePayment
	}
	return err
}

func (r *PGPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id=$1`, id)
	p, err := scanPayment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PGPaymentRepository) Update(ctx context.Context, id, transactionID string, status domain.PaymentStatus) (*domain.Payment, error) {
	row := r.db.QueryRow(ctx, `UPDATE payments SET transaction_id=$1, status=$2, updated_at=now()
		WHERE id=$3
		RETURNING `+paymentColumns, transactionID, status, id)
	p, err := scanPayment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PGPaymentRepository) ListByUser(ctx context.Context, userID string) ([]domain.Payment, error) {
	rows, err := r.db.Query(ctx, `SELECT p.id, p.booking_id, p.amount, p.payment_method, coalesce(p.transaction_id, ''), p.status, p.created_at, p.updated_at
		FROM payments p
		JOIN bookings b ON b.id = p.booking_id
		WHERE b.user_id=$1
		ORDER BY p.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

var _ PaymentRepository = (*PGPaymentRepository)(nil)
