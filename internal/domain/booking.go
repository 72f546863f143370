package domain

import "time"

// Booking binds one user to one match. A user holds at most one active
// (non-cancelled) booking per match; cancellation is one-way.
type Booking struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	MatchID      string     `json:"match_id"`
	BookingTime  time.Time  `json:"booking_time"`
	IsCancelled  bool       `json:"is_cancelled"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	RefundAmount *float64   `json:"refund_amount,omitempty"`
}
