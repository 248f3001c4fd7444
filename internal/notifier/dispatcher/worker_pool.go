package dispatcher

import (
	"context"
	"log/slog"

	"github.com/panjf2000/ants/v2"

	"github.com/finflow-payment-approval/internal/domain/notification"
)

// WorkerPoolDeliverer fans event delivery out over a bounded worker pool so a
// slow downstream channel cannot stall the Kafka consumer loop.
type WorkerPoolDeliverer struct {
	baseDeliverer Deliverer
	pool          *ants.Pool
	logger        *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolDeliverer(
	baseDeliverer Deliverer,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolDeliverer, error) {
	// Create a new worker pool with the specified size
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolDeliverer{
		baseDeliverer: baseDeliverer,
		pool:          pool,
		logger:        logger,
	}, nil
}

// Deliver submits an event to the worker pool and waits for its outcome.
func (d *WorkerPoolDeliverer) Deliver(ctx context.Context, event *notification.Event) error {
	logger := d.logger
	if event.CorrelationID != "" {
		logger = d.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Submitting notification to worker pool",
		"event_id", event.EventID.String(),
		"payment_id", event.PaymentID,
	)

	// Buffered so the worker never blocks on a caller that already returned
	resultChan := make(chan error, 1)

	// Copy the event so the worker never races the caller's pointer
	eventCopy := *event

	err := d.pool.Submit(func() {
		resultChan <- d.baseDeliverer.Deliver(ctx, &eventCopy)
	})
	if err != nil {
		logger.Error("Failed to submit notification to worker pool",
			"event_id", event.EventID.String(),
			"error", err,
		)
		return err
	}

	// Wait for the result from the worker
	return <-resultChan
}

// Shutdown gracefully shuts down the worker pool.
func (d *WorkerPoolDeliverer) Shutdown() {
	d.logger.Info("Shutting down worker pool", "running_workers", d.pool.Running())
	d.pool.Release()
}

// Running returns the number of running workers in the pool.
func (d *WorkerPoolDeliverer) Running() int {
	return d.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (d *WorkerPoolDeliverer) Capacity() int {
	return d.pool.Cap()
}
