package email

import (
	"context"

	"github.com/savichev/kickora/internal/kafka"
	"go.uber.org/zap"
)

// Sender is the notification sink for booking events. Delivery is a stub:
// the real gateway sits behind an external service.
type Sender struct {
	log *zap.Logger
}

func NewSender(log *zap.Logger) *Sender {
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	s.log.Info("send booking notification",
		zap.String("type", event.Type),
		zap.String("user_id", event.UserID),
		zap.String("match_id", event.MatchID),
		zap.String("booking_id", event.BookingID),
	)
	return nil
}
