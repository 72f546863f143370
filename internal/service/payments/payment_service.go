package payments

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/savichev/kickora/internal/domain"
	"github.com/savichev/kickora/internal/repository"
)

type PaymentUseCase interface {
	Create(ctx context.Context, principal domain.Principal, input CreatePaymentInput) (*domain.Payment, error)
	Get(ctx context.Context, principal domain.Principal, id string) (*domain.Payment, error)
	Process(ctx context.Context, principal domain.Principal, id string) (*domain.Payment, error)
	ListUserPayments(ctx context.Context, principal domain.Principal) ([]domain.Payment, error)
}

type CreatePaymentInput struct {
	BookingID     string  `json:"booking_id"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
}

type PaymentService struct {
	payments repository.PaymentRepository
	bookings repository.BookingRepository
}

func NewPaymentService(payments repository.PaymentRepository, bookings repository.BookingRepository) *PaymentService {
	return &PaymentService{payments: payments, bookings: bookings}
}

// Create opens a pending payment for one of the principal's bookings. One
// payment per booking; a second attempt is rejected.
func (s *PaymentService) Create(ctx context.Context, principal domain.Principal, input CreatePaymentInput) (*domain.Payment, error) {
	if input.Amount <= 0 {
		return nil, errors.New("amount must be positive")
	}
	if input.PaymentMethod == "" {
		return nil, errors.New("payment method is required")
	}

	booking, err := s.bookings.GetByID(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != principal.UserID {
		return nil, domain.ErrBookingNotFound
	}

	payment := &domain.Payment{
		ID:            uuid.NewString(),
		BookingID:     input.BookingID,
		Amount:        input.Amount,
		PaymentMethod: input.PaymentMethod,
		Status:        domain.PaymentStatusPending,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *PaymentService) Get(ctx context.Context, principal domain.Principal, id string) (*domain.Payment, error) {
	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, principal, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// Process stands in for the payment gateway round trip: it stamps a
// transaction id and marks the payment completed.
func (s *PaymentService) Process(ctx context.Context, principal domain.Principal, id string) (*domain.Payment, error) {
	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, principal, payment); err != nil {
		return nil, err
	}

	transactionID := "TXN_" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return s.payments.Update(ctx, id, transactionID, domain.PaymentStatusCompleted)
}

func (s *PaymentService) ListUserPayments(ctx context.Context, principal domain.Principal) ([]domain.Payment, error) {
	return s.payments.ListByUser(ctx, principal.UserID)
}

func (s *PaymentService) authorize(ctx context.Context, principal domain.Principal, payment *domain.Payment) error {
	booking, err := s.bookings.GetByID(ctx, payment.BookingID)
	if err != nil {
		return err
	}
	if booking.UserID != principal.UserID {
		return domain.ErrForbidden
	}
	return nil
}

var _ PaymentUseCase = (*PaymentService)(nil)
