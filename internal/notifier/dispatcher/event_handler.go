package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/finflow-payment-approval/internal/domain/notification"
	"github.com/finflow-payment-approval/internal/platform/messaging/producers"
)

// NotificationEventHandler handles incoming notification events from Kafka
type NotificationEventHandler struct {
	deliverer Deliverer
	producer  producers.DeadLetterPublisher
	logger    *slog.Logger
}

// NewNotificationEventHandler creates a new handler
func NewNotificationEventHandler(
	logger *slog.Logger,
	deliverer Deliverer,
	producer producers.DeadLetterPublisher,
) *NotificationEventHandler {
	return &NotificationEventHandler{
		deliverer: deliverer,
		producer:  producer,
		logger:    logger,
	}
}

// HandleMessage processes Kafka messages
func (h *NotificationEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event notification.Event
	if err := json.Unmarshal(value, &event); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal notification event from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		// Send to DLQ if available
		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
				// Return original error if DLQ fails
			} else {
				h.logger.Info("Successfully published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
				// Message handled, commit offset
				return nil
			}
		}
		// Allow Kafka retries
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	// Add correlation ID to logger
	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Received notification event for delivery",
		"event_id", event.EventID.String(),
		"payment_id", event.PaymentID,
		"kind", event.Kind,
		"target_actor_id", event.TargetActorID,
	)

	if err := h.deliverer.Deliver(ctx, &event); err != nil {
		logger.Error("Failed to deliver notification",
			"event_id", event.EventID.String(),
			"payment_id", event.PaymentID,
			"error", err,
		)
		return fmt.Errorf("delivering notification %s failed: %w", event.EventID.String(), err)
	}

	logger.Info("Successfully delivered notification", "event_id", event.EventID.String())
	return nil // Success, commit offset
}
