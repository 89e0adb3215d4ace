package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/iho/assetledger/internal/domain"
	"github.com/iho/assetledger/internal/infrastructure/metrics"
)

// collaborators are the optional dependencies shared by the use cases.
// Every field may be left unset.
type collaborators struct {
	logger    zerolog.Logger
	metrics   *metrics.Metrics
	publisher EventPublisher
	queue     RepairQueue
	retrier   Retrier
}

// Option configures an optional collaborator of a use case.
type Option func(*collaborators)

// WithLogger sets the logger used for operational messages.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *collaborators) {
		c.logger = logger
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *collaborators) {
		c.metrics = m
	}
}

// WithEventPublisher publishes ledger events after each operation.
func WithEventPublisher(p EventPublisher) Option {
	return func(c *collaborators) {
		c.publisher = p
	}
}

// WithRepairQueue enqueues txids whose projection did not complete.
func WithRepairQueue(q RepairQueue) Option {
	return func(c *collaborators) {
		c.queue = q
	}
}

// WithRetrier retries store calls that fail with a transient error.
func WithRetrier(r Retrier) Option {
	return func(c *collaborators) {
		c.retrier = r
	}
}

func newCollaborators(opts []Option) collaborators {
	c := collaborators{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// withRetry runs operation through the retrier when one is configured.
func withRetry(ctx context.Context, r Retrier, operation func() error) error {
	if r == nil {
		return operation()
	}
	return r.Retry(ctx, operation)
}

// publish delivers event when a publisher is configured. Delivery failures
// are logged and never fail the operation.
func publish(ctx context.Context, c collaborators, event *domain.LedgerEvent) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.Warn().
			Err(err).
			Str("event_type", event.Type).
			Str("txid", event.TxID).
			Msg("failed to publish ledger event")
	}
}
