package domain

import "time"

// Match is a bookable slot on the turf. MaxPlayers is fixed at creation;
// PlayersLeft is only ever mutated through the booking repository so that
// 0 <= PlayersLeft <= MaxPlayers holds at all times.
type Match struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Location    string    `json:"location"`
	Price       float64   `json:"price"`
	MaxPlayers  int       `json:"max_players"`
	PlayersLeft int       `json:"players_left"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
