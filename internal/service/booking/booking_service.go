package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/savichev/kickora/internal/domain"
	"github.com/savichev/kickora/internal/kafka"
	"github.com/savichev/kickora/internal/metrics"
	"github.com/savichev/kickora/internal/repository"
	"go.uber.org/zap"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, principal domain.Principal, matchID string) (*domain.Booking, error)
	CancelBooking(ctx context.Context, principal domain.Principal, matchID string) (float64, error)
	ListUserBookings(ctx context.Context, principal domain.Principal, skip, limit int) ([]domain.Booking, error)
}

type Cache interface {
	InvalidateMatches(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// maxListLimit bounds a single bookings page.
const maxListLimit = 100

type BookingService struct {
	bookings     repository.BookingRepository
	matches      repository.MatchRepository
	cache        Cache
	producer     Producer
	eventsTopic  string
	refundWindow time.Duration
	retries      int
	now          func() time.Time
	log          *zap.Logger
	metrics      *metrics.Recorder
}

type BookingServiceOption func(*BookingService)

// WithClock replaces the wall clock, used by tests to pin the refund window.
func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func WithMetrics(rec *metrics.Recorder) BookingServiceOption {
	return func(s *BookingService) {
		s.metrics = rec
	}
}

// WithConflictRetries sets how many extra attempts a serialization conflict
// on the capacity decrement gets before surfacing as an error.
func WithConflictRetries(n int) BookingServiceOption {
	return func(s *BookingService) {
		if n >= 0 {
			s.retries = n
		}
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	matches repository.MatchRepository,
	cache Cache,
	producer Producer,
	eventsTopic string,
	refundWindow time.Duration,
	log *zap.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	if refundWindow <= 0 {
		refundWindow = DefaultRefundWindow
	}
	if log == nil {
		log = zap.NewNop()
	}
	service := &BookingService{
		bookings:     bookings,
		matches:      matches,
		cache:        cache,
		producer:     producer,
		eventsTopic:  eventsTopic,
		refundWindow: refundWindow,
		retries:      2,
		now:          time.Now,
		log:          log,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBooking reserves a slot on the match for the principal. The
// decrement, the duplicate check and the booking insert happen inside one
// storage transaction, so two concurrent requests against the last slot
// resolve to exactly one success.
func (s *BookingService) CreateBooking(ctx context.Context, principal domain.Principal, matchID string) (*domain.Booking, error) {
	if !principal.IsActive {
		return nil, domain.ErrUserInactive
	}

	booking := &domain.Booking{
		ID:      uuid.NewString(),
		UserID:  principal.UserID,
		MatchID: matchID,
	}

	err := s.withConflictRetry(ctx, func() error {
		return s.bookings.CreateWithReserve(ctx, booking)
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMatchFull):
			s.metrics.CapacityConflict()
		case errors.Is(err, domain.ErrAlreadyBooked):
			s.metrics.DuplicateRejected()
		}
		return nil, err
	}

	s.metrics.BookingCreated()
	s.invalidateMatches(ctx)
	s.publish(ctx, "booking_created", booking, 0)
	return booking, nil
}

// CancelBooking cancels the principal's active booking on the match and
// returns the refund. A single clock reading drives both the refund
// decision and the stored cancellation timestamp.
func (s *BookingService) CancelBooking(ctx context.Context, principal domain.Principal, matchID string) (float64, error) {
	if !principal.IsActive {
		return 0, domain.ErrUserInactive
	}

	now := s.now()

	active, err := s.bookings.GetActive(ctx, principal.UserID, matchID)
	if err != nil {
		return 0, err
	}

	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return 0, err
	}

	refund := RefundAmount(active.BookingTime, now, s.refundWindow, match.Price)

	var cancelled *domain.Booking
	err = s.withConflictRetry(ctx, func() error {
		var cErr error
		cancelled, cErr = s.bookings.CancelWithRelease(ctx, principal.UserID, matchID, now, refund)
		return cErr
	})
	if err != nil {
		return 0, err
	}

	s.metrics.BookingCancelled()
	if refund > 0 {
		s.metrics.RefundIssued()
	}
	s.invalidateMatches(ctx)
	s.publish(ctx, "booking_cancelled", cancelled, refund)
	return refund, nil
}

func (s *BookingService) ListUserBookings(ctx context.Context, principal domain.Principal, skip, limit int) ([]domain.Booking, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	return s.bookings.ListByUser(ctx, principal.UserID, skip, limit)
}

// withConflictRetry reruns fn on storage serialization conflicts. Every
// other error, including the terminal booking failures, passes straight
// through.
func (s *BookingService) withConflictRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt <= s.retries; attempt++ {
		err = fn()
		if !errors.Is(err, domain.ErrTxConflict) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.log.Warn("transaction conflict, retrying", zap.Int("attempt", attempt+1))
	}
	return err
}

func (s *BookingService) invalidateMatches(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateMatches(ctx); err != nil {
		s.log.Warn("failed to invalidate matches cache", zap.Error(err))
	}
}

// publish emits the booking event, best effort. A broker failure never
// fails the booking itself.
func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking, refund float64) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:         eventType,
		BookingID:    booking.ID,
		UserID:       booking.UserID,
		MatchID:      booking.MatchID,
		BookingTime:  booking.BookingTime,
		RefundAmount: refund,
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, booking.ID, event); err != nil {
		s.log.Warn("failed to publish booking event",
			zap.String("type", eventType),
			zap.String("booking_id", booking.ID),
			zap.Error(err),
		)
	}
}

var _ BookingUseCase = (*BookingService)(nil)
