package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/savichev/kickora/internal/domain"
	"github.com/savichev/kickora/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory stand-in for the Postgres repositories with the
// same atomicity contract: the capacity decrement, the duplicate check and the
// booking write happen under one lock, mirroring the single transaction of
// the real store. It lets the no-overselling and duplicate-prevention
// properties run against real goroutine contention.
type memStore struct {
	mu       sync.Mutex
	match    domain.Match
	bookings []domain.Booking
	now      func() time.Time
}

func newMemStore(match domain.Match, now func() time.Time) *memStore {
	return &memStore{match: match, now: now}
}

func (s *memStore) CreateWithReserve(ctx context.Context, booking *domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if booking.MatchID != s.match.ID {
		return domain.ErrMatchNotFound
	}
	if !s.match.IsActive {
		return domain.ErrMatchInactive
	}
	if s.match.PlayersLeft <= 0 {
		return domain.ErrMatchFull
	}
	for _, b := range s.bookings {
		if b.UserID == booking.UserID && b.MatchID == booking.MatchID && !b.IsCancelled {
			return domain.ErrAlreadyBooked
		}
	}

	s.match.PlayersLeft--
	booking.BookingTime = s.now()
	s.bookings = append(s.bookings, *booking)
	return nil
}

func (s *memStore) CancelWithRelease(ctx context.Context, userID, matchID string, cancelledAt time.Time, refund float64) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.bookings {
		b := &s.bookings[i]
		if b.UserID == userID && b.MatchID == matchID && !b.IsCancelled {
			b.IsCancelled = true
			b.CancelledAt = &cancelledAt
			b.RefundAmount = &refund
			if s.match.PlayersLeft < s.match.MaxPlayers {
				s.match.PlayersLeft++
			}
			cancelled := *b
			return &cancelled, nil
		}
	}
	return nil, domain.ErrBookingNotFound
}

func (s *memStore) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.ID == id {
			found := b
			return &found, nil
		}
	}
	return nil, domain.ErrBookingNotFound
}

func (s *memStore) GetActive(ctx context.Context, userID, matchID string) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.UserID == userID && b.MatchID == matchID && !b.IsCancelled {
			found := b
			return &found, nil
		}
	}
	return nil, domain.ErrBookingNotFound
}

func (s *memStore) ListByUser(ctx context.Context, userID string, skip, limit int) ([]domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Booking
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookingTime.After(out[j].BookingTime) })
	if skip >= len(out) {
		return nil, nil
	}
	out = out[skip:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) List(ctx context.Context, activeOnly bool, skip, limit int) ([]domain.Match, error) {
	return []domain.Match{s.snapshot()}, nil
}

func (s *memStore) GetByMatchID(ctx context.Context, id string) (*domain.Match, error) {
	m := s.snapshot()
	if m.ID != id {
		return nil, domain.ErrMatchNotFound
	}
	return &m, nil
}

func (s *memStore) Create(ctx context.Context, match *domain.Match) error { return nil }
func (s *memStore) Update(ctx context.Context, match *domain.Match) error { return nil }
func (s *memStore) Delete(ctx context.Context, id string) error           { return nil }

func (s *memStore) CountActiveBookings(ctx context.Context, matchID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.bookings {
		if b.MatchID == matchID && !b.IsCancelled {
			n++
		}
	}
	return n, nil
}

func (s *memStore) CapacityDrift(ctx context.Context) ([]repository.CapacityDrift, error) {
	return nil, nil
}

func (s *memStore) snapshot() domain.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match
}

// matchView adapts memStore to the MatchRepository GetByID name.
type matchView struct {
	*memStore
}

func (v matchView) GetByID(ctx context.Context, id string) (*domain.Match, error) {
	return v.memStore.GetByMatchID(ctx, id)
}

var _ repository.BookingRepository = (*memStore)(nil)
var _ repository.MatchRepository = matchView{}

func TestBookingService_NoOversellingUnderConcurrency(t *testing.T) {
	const slots = 5
	const callers = 12

	store := newMemStore(domain.Match{
		ID:          "match-1",
		Price:       299.0,
		MaxPlayers:  slots,
		PlayersLeft: slots,
		IsActive:    true,
	}, time.Now)

	service := NewBookingService(store, matchView{store}, nil, nil, "", DefaultRefundWindow, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			principal := domain.Principal{UserID: fmt.Sprintf("user-%d", n), IsActive: true}
			_, err := service.CreateBooking(ctx, principal, "match-1")
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	successes, full := 0, 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, domain.ErrMatchFull):
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, slots, successes)
	assert.Equal(t, callers-slots, full)

	final := store.snapshot()
	assert.Equal(t, 0, final.PlayersLeft)
	active, err := store.CountActiveBookings(ctx, "match-1")
	require.NoError(t, err)
	assert.Equal(t, final.MaxPlayers-final.PlayersLeft, active)
}

func TestBookingService_DuplicatePreventionUnderConcurrency(t *testing.T) {
	store := newMemStore(domain.Match{
		ID:          "match-1",
		Price:       299.0,
		MaxPlayers:  10,
		PlayersLeft: 10,
		IsActive:    true,
	}, time.Now)

	service := NewBookingService(store, matchView{store}, nil, nil, "", DefaultRefundWindow, nil)
	ctx := context.Background()
	principal := domain.Principal{UserID: "user-1", IsActive: true}

	const attempts = 8
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.CreateBooking(ctx, principal, "match-1")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes, duplicates := 0, 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, domain.ErrAlreadyBooked):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, duplicates)
	assert.Equal(t, 9, store.snapshot().PlayersLeft)
}

// Walks the full scenario: two slots sell out, a third caller is turned
// away, a cancellation reopens a slot and the same user can book again.
func TestBookingService_BookCancelRebookScenario(t *testing.T) {
	clock := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }

	store := newMemStore(domain.Match{
		ID:          "match-1",
		Price:       299.0,
		MaxPlayers:  2,
		PlayersLeft: 2,
		IsActive:    true,
	}, now)

	service := NewBookingService(store, matchView{store}, nil, nil, "", DefaultRefundWindow, nil,
		WithClock(func() time.Time { return clock }))
	ctx := context.Background()

	userA := domain.Principal{UserID: "user-a", IsActive: true}
	userB := domain.Principal{UserID: "user-b", IsActive: true}
	userC := domain.Principal{UserID: "user-c", IsActive: true}

	_, err := service.CreateBooking(ctx, userA, "match-1")
	require.NoError(t, err)
	assert.Equal(t, 1, store.snapshot().PlayersLeft)

	_, err = service.CreateBooking(ctx, userB, "match-1")
	require.NoError(t, err)
	assert.Equal(t, 0, store.snapshot().PlayersLeft)

	_, err = service.CreateBooking(ctx, userC, "match-1")
	assert.ErrorIs(t, err, domain.ErrMatchFull)

	// One hour later user A cancels, well inside the refund window.
	clock = clock.Add(time.Hour)
	refund, err := service.CancelBooking(ctx, userA, "match-1")
	require.NoError(t, err)
	assert.Equal(t, 299.0, refund)
	assert.Equal(t, 1, store.snapshot().PlayersLeft)

	// A second cancel finds no active booking and must not double-release.
	_, err = service.CancelBooking(ctx, userA, "match-1")
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	assert.Equal(t, 1, store.snapshot().PlayersLeft)

	// The cancelled booking no longer blocks a rebook.
	_, err = service.CreateBooking(ctx, userA, "match-1")
	require.NoError(t, err)
	assert.Equal(t, 0, store.snapshot().PlayersLeft)
}
