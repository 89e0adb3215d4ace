package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/iho/assetledger/internal/domain"
)

// EventsChannel is the pub/sub channel ledger events are published on.
const EventsChannel = "ledger_events"

// Publisher implements usecase.EventPublisher with Redis PUBLISH.
type Publisher struct {
	client  redis.UniversalClient
	channel string
}

// NewPublisher creates a publisher on EventsChannel.
func NewPublisher(client redis.UniversalClient) *Publisher {
	return &Publisher{
		client:  client,
		channel: EventsChannel,
	}
}

// Publish sends event as JSON to subscribers of the channel.
func (p *Publisher) Publish(ctx context.Context, event *domain.LedgerEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return domain.StorageError("publish event", err)
	}

	return nil
}
