package booking

import "time"

// DefaultRefundWindow is how long after booking a cancellation still
// returns the full match price.
const DefaultRefundWindow = 24 * time.Hour

// RefundAmount implements the cancellation refund policy: cancelling within
// the window of the booking time refunds the full price, later nothing.
// The boundary is inclusive, exactly at the window edge is a full refund.
func RefundAmount(bookedAt, cancelledAt time.Time, window time.Duration, price float64) float64 {
	if cancelledAt.Sub(bookedAt) <= window {
		return price
	}
	return 0
}
