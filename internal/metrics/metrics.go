package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder counts booking lifecycle outcomes. A nil Recorder is a no-op so
// services can run without metrics in tests.
type Recorder struct {
	bookingsCreated   prometheus.Counter
	bookingsCancelled prometheus.Counter
	capacityConflicts prometheus.Counter
	duplicateRejects  prometheus.Counter
	refundsIssued     prometheus.Counter
}

func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		bookingsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "kickora_bookings_created_total",
			Help: "Bookings successfully created.",
		}),
		bookingsCancelled: factory.NewCounter(prometheus.CounterOpts{
			Name: "kickora_bookings_cancelled_total",
			Help: "Bookings cancelled by their owner.",
		}),
		capacityConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "kickora_capacity_conflicts_total",
			Help: "Booking attempts rejected because the match was full.",
		}),
		duplicateRejects: factory.NewCounter(prometheus.CounterOpts{
			Name: "kickora_duplicate_bookings_total",
			Help: "Booking attempts rejected as duplicates.",
		}),
		refundsIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "kickora_refunds_issued_total",
			Help: "Cancellations that produced a non-zero refund.",
		}),
	}
}

func (r *Recorder) BookingCreated() {
	if r != nil {
		r.bookingsCreated.Inc()
	}
}

func (r *Recorder) BookingCancelled() {
	if r != nil {
		r.bookingsCancelled.Inc()
	}
}

func (r *Recorder) CapacityConflict() {
	if r != nil {
		r.capacityConflicts.Inc()
	}
}

func (r *Recorder) DuplicateRejected() {
	if r != nil {
		r.duplicateRejects.Inc()
	}
}

func (r *Recorder) RefundIssued() {
	if r != nil {
		r.refundsIssued.Inc()
	}
}
