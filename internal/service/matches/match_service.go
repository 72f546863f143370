package matches

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/savichev/kickora/internal/domain"
	"github.com/savichev/kickora/internal/repository"
	"go.uber.org/zap"
)

type MatchUseCase interface {
	List(ctx context.Context, activeOnly bool, skip, limit int) ([]domain.Match, error)
	GetByID(ctx context.Context, id string) (*domain.Match, error)
	Create(ctx context.Context, principal domain.Principal, input CreateMatchInput) (*domain.Match, error)
	Update(ctx context.Context, principal domain.Principal, id string, input UpdateMatchInput) (*domain.Match, error)
	Delete(ctx context.Context, principal domain.Principal, id string) error
}

type Cache interface {
	GetMatches(ctx context.Context, skip, limit int) ([]domain.Match, error)
	SetMatches(ctx context.Context, skip, limit int, matches []domain.Match) error
	InvalidateMatches(ctx context.Context) error
}

// maxListLimit bounds a single listing page.
const maxListLimit = 100

type CreateMatchInput struct {
	Date       string  `json:"date"`
	Time       string  `json:"time"`
	Location   string  `json:"location"`
	Price      float64 `json:"price"`
	MaxPlayers int     `json:"max_players"`
}

// UpdateMatchInput carries partial edits. MaxPlayers is deliberately
// absent: capacity is fixed once the match exists.
type UpdateMatchInput struct {
	Date     *string  `json:"date"`
	Time     *string  `json:"time"`
	Location *string  `json:"location"`
	Price    *float64 `json:"price"`
	IsActive *bool    `json:"is_active"`
}

type MatchService struct {
	repo  repository.MatchRepository
	cache Cache
	log   *zap.Logger
}

func NewMatchService(repo repository.MatchRepository, cache Cache, log *zap.Logger) *MatchService {
	if log == nil {
		log = zap.NewNop()
	}
	return &MatchService{repo: repo, cache: cache, log: log}
}

// List returns matches ordered by date then time. Active-only pages go
// through the cache; the unfiltered admin view always hits storage.
func (s *MatchService) List(ctx context.Context, activeOnly bool, skip, limit int) ([]domain.Match, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	if activeOnly && s.cache != nil {
		if cached, err := s.cache.GetMatches(ctx, skip, limit); err == nil && cached != nil {
			return cached, nil
		}
	}

	matches, err := s.repo.List(ctx, activeOnly, skip, limit)
	if err != nil {
		return nil, err
	}
	if activeOnly && s.cache != nil {
		if err := s.cache.SetMatches(ctx, skip, limit, matches); err != nil {
			s.log.Warn("failed to cache matches page", zap.Error(err))
		}
	}
	return matches, nil
}

func (s *MatchService) GetByID(ctx context.Context, id string) (*domain.Match, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *MatchService) Create(ctx context.Context, principal domain.Principal, input CreateMatchInput) (*domain.Match, error) {
	if !principal.IsAdmin {
		return nil, domain.ErrForbidden
	}
	if input.MaxPlayers <= 0 {
		return nil, errors.New("max_players must be positive")
	}
	if input.Price < 0 {
		return nil, errors.New("price must not be negative")
	}

	match := &domain.Match{
		ID:          uuid.NewString(),
		Date:        input.Date,
		Time:        input.Time,
		Location:    input.Location,
		Price:       input.Price,
		MaxPlayers:  input.MaxPlayers,
		PlayersLeft: input.MaxPlayers,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, match); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return match, nil
}

func (s *MatchService) Update(ctx context.Context, principal domain.Principal, id string, input UpdateMatchInput) (*domain.Match, error) {
	if !principal.IsAdmin {
		return nil, domain.ErrForbidden
	}

	match, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Date != nil {
		match.Date = *input.Date
	}
	if input.Time != nil {
		match.Time = *input.Time
	}
	if input.Location != nil {
		match.Location = *input.Location
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, errors.New("price must not be negative")
		}
		match.Price = *input.Price
	}
	if input.IsActive != nil {
		match.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, match); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return match, nil
}

// Delete removes a match. The repository refuses while active bookings
// still reference it, so slots already sold are never orphaned.
func (s *MatchService) Delete(ctx context.Context, principal domain.Principal, id string) error {
	if !principal.IsAdmin {
		return domain.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *MatchService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateMatches(ctx); err != nil {
		s.log.Warn("failed to invalidate matches cache", zap.Error(err))
	}
}

var _ MatchUseCase = (*MatchService)(nil)
