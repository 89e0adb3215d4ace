package eventpublisher

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/iho/assetledger/internal/domain"
)

// LogPublisher writes ledger events to the log. It stands in for the redis
// publisher when redis is disabled.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event.
func (p *LogPublisher) Publish(_ context.Context, event *domain.LedgerEvent) error {
	entry := p.logger.Info().
		Str("event_type", event.Type).
		Str("asset", event.Asset).
		Time("occurred_at", event.OccurredAt)

	if event.TxID != "" {
		entry = entry.Str("txid", event.TxID)
	}
	if event.Owner != "" {
		entry = entry.Str("owner", event.Owner)
	}
	if event.From != "" {
		entry = entry.Str("from", event.From)
	}
	if event.To != "" {
		entry = entry.Str("to", event.To)
	}
	if event.Amount != "" {
		entry = entry.Str("amount", event.Amount)
	}
	if len(event.PendingIDs) > 0 {
		entry = entry.Strs("pending_ids", event.PendingIDs)
	}

	entry.Msg("ledger event")
	return nil
}
