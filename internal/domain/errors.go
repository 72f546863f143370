package domain

import "errors"

// Terminal booking failures. All of them are client errors: the caller
// translates them into a user-facing message and does not retry.
var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrMatchInactive    = errors.New("match is not active")
	ErrMatchFull        = errors.New("match is full")
	ErrAlreadyBooked    = errors.New("match already booked by this user")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrMatchHasBookings = errors.New("match has active bookings")
	ErrUserInactive     = errors.New("user is not active")
	ErrForbidden        = errors.New("operation requires admin")
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrDuplicatePayment = errors.New("payment already exists for this booking")
)

// ErrTxConflict marks a storage-level serialization conflict. Unlike the
// errors above it is transient and eligible for a bounded retry.
var ErrTxConflict = errors.New("transaction conflict")
