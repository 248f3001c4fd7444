package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/finflow-payment-approval/internal/domain/notification"
	"github.com/finflow-payment-approval/internal/platform/messaging/producers"
)

// EventPublisher pushes outbox messages onto the notification stream
type EventPublisher interface {
	PublishEvent(ctx context.Context, message *notification.Message) error
}

// EventPublisherImpl implements EventPublisher on top of Kafka. Messages are
// keyed by payment id so all events for one payment land on one partition,
// preserving their order for consumers.
type EventPublisherImpl struct {
	outboxRepo notification.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

// NewEventPublisher creates a new publisher
func NewEventPublisher(
	outboxRepo notification.Repository,
	producer producers.MessagePublisher,
	logger *slog.Logger,
) EventPublisher {
	return &EventPublisherImpl{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishEvent publishes one outbox message and marks it processed
func (p *EventPublisherImpl) PublishEvent(ctx context.Context, message *notification.Message) error {
	event, err := message.GetEvent()
	if err != nil {
		p.logger.Error("Failed to unmarshal notification event from outbox payload",
			"outbox_id", message.ID, "payment_id", message.PaymentID, "error", err,
		)
		// A payload that does not parse will never parse; park it instead of retrying
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, notification.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	// Add correlation ID to logger
	logger := p.logger
	if event.CorrelationID != "" {
		logger = p.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Attempting to publish outbox message to notification stream",
		"outbox_id", message.ID, "payment_id", message.PaymentID, "kind", event.Kind,
	)

	key := strconv.FormatInt(message.PaymentID, 10)
	if err := p.producer.Publish(ctx, key, event); err != nil {
		return fmt.Errorf("failed to publish notification event %s: %w", event.EventID, err)
	}

	// Mark outbox message as processed
	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, notification.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "payment_id", message.PaymentID, "error", err,
		)
		return fmt.Errorf("publish for event %s OK, but failed to mark outbox %d as PROCESSED: %w", event.EventID, message.ID, err)
	}

	logger.Info("Outbox message successfully published and marked as PROCESSED", "outbox_id", message.ID, "payment_id", message.PaymentID)
	return nil
}
