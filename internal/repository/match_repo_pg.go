package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/savichev/kickora/internal/domain"
)

type MatchRepository interface {
	List(ctx context.Context, activeOnly bool, skip, limit int) ([]domain.Match, error)
	GetByID(ctx context.Context, id string) (*domain.Match, error)
	Create(ctx context.Context, match *domain.Match) error
	Update(ctx context.Context, match *domain.Match) error
	Delete(ctx context.Context, id string) error
	CapacityDrift(ctx context.Context) ([]CapacityDrift, error)
}

// CapacityDrift reports a match whose active booking count disagrees with
// max_players - players_left.
type CapacityDrift struct {
	MatchID        string
	MaxPlayers     int
	PlayersLeft    int
	ActiveBookings int
}

type PGMatchRepository struct {
	db *pgxpool.Pool
}

func NewMatchRepository(db *pgxpool.Pool) MatchRepository {
	return &PGMatchRepository{db: db}
}

const matchColumns = `id, date, time, location, price, max_players, players_left, is_active, created_at, updated_at`

func scanMatch(row pgx.Row) (*domain.Match, error) {
	var m domain.Match
	if err := row.Scan(&m.ID, &m.Date, &m.Time, &m.Location, &m.Price, &m.MaxPlayers, &m.PlayersLeft, &m.IsActive, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PGMatchRepository) List(ctx context.Context, activeOnly bool, skip, limit int) ([]domain.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY date, time OFFSET $1 LIMIT $2`

	rows, err := r.db.Query(ctx, query, skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]domain.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

func (r *PGMatchRepository) GetByID(ctx context.Context, id string) (*domain.Match, error) {
	row := r.db.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id=$1`, id)
	m, err := scanMatch(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrMatchNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *PGMatchRepository) Create(ctx context.Context, match *domain.Match) error {
	return r.db.QueryRow(ctx, `INSERT INTO matches (id, date, time, location, price, max_players, players_left, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		match.ID, match.Date, match.Time, match.Location, match.Price, match.MaxPlayers, match.PlayersLeft, match.IsActive).
		Scan(&match.CreatedAt, &match.UpdatedAt)
}

// Update never touches max_players or players_left: capacity is fixed at
// creation and the capacity counter belongs to the booking repository.
func (r *PGMatchRepository) Update(ctx context.Context, match *domain.Match) error {
	row := r.db.QueryRow(ctx, `UPDATE matches SET date=$1, time=$2, location=$3, price=$4, is_active=$5, updated_at=now()
		WHERE id=$6
		RETURNING `+matchColumns, match.Date, match.Time, match.Location, match.Price, match.IsActive, match.ID)
	updated, err := scanMatch(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrMatchNotFound
	}
	if err != nil {
		return err
	}
	*match = *updated
	return nil
}

// Delete refuses to remove a match that still has active bookings.
func (r *PGMatchRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var active int
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM bookings WHERE match_id=$1 AND NOT is_cancelled`, id).Scan(&active); err != nil {
		return err
	}
	if active > 0 {
		return domain.ErrMatchHasBookings
	}

	cmd, err := tx.Exec(ctx, `DELETE FROM matches WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrMatchNotFound
	}
	return tx.Commit(ctx)
}

func (r *PGMatchRepository) CapacityDrift(ctx context.Context) ([]CapacityDrift, error) {
	rows, err := r.db.Query(ctx, `
		SELECT m.id, m.max_players, m.players_left, count(b.id) FILTER (WHERE NOT b.is_cancelled)
		FROM matches m
		LEFT JOIN bookings b ON b.match_id = m.id
		GROUP BY m.id, m.max_players, m.players_left
		HAVING count(b.id) FILTER (WHERE NOT b.is_cancelled) <> m.max_players - m.players_left`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drift []CapacityDrift
	for rows.Next() {
		var d CapacityDrift
		if err := rows.Scan(&d.MatchID, &d.MaxPlayers, &d.PlayersLeft, &d.ActiveBookings); err != nil {
			return nil, err
		}
		drift = append(drift, d)
	}
	return drift, rows.Err()
}

var _ MatchRepository = (*PGMatchRepository)(nil)
