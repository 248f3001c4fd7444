package dispatcher

import (
	"context"
	"log/slog"

	"github.com/finflow-payment-approval/internal/domain/notification"
)

// Deliverer hands a notification event to its final transport. Implementations
// exist per channel; email, chat and webhook deliverers all satisfy this
// interface.
type Deliverer interface {
	Deliver(ctx context.Context, event *notification.Event) error
}

// LogDeliverer writes notifications to the structured log. It is the default
// deliverer in environments without a real channel configured.
type LogDeliverer struct {
	logger *slog.Logger
}

// NewLogDeliverer creates a new log deliverer
func NewLogDeliverer(logger *slog.Logger) *LogDeliverer {
	return &LogDeliverer{logger: logger}
}

// Deliver logs the notification event
func (d *LogDeliverer) Deliver(_ context.Context, event *notification.Event) error {
	d.logger.Info("Delivering notification",
		"event_id", event.EventID.String(),
		"payment_id", event.PaymentID,
		"kind", event.Kind,
		"target_actor_id", event.TargetActorID,
	)
	return nil
}
