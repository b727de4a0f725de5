// Package events publishes ledger mutation events on redis pub/sub so
// other processes (dashboards, exports) can react without polling.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	EventProductUpserted = "product.upserted"
	EventSaleRecorded    = "sale.recorded"
	EventSaleDeleted     = "sale.deleted"
)

// LedgerEvent is the wire payload published after a successful mutation.
type LedgerEvent struct {
	EventType    string      `json:"event_type"`
	ProductID    string      `json:"product_id,omitempty"`
	CustomerName string      `json:"customer_name,omitempty"`
	Timestamp    time.Time   `json:"timestamp"`
	Data         interface{} `json:"data,omitempty"`
}

// Publisher fans events out to a per-type channel and a firehose channel.
// With no redis client it is a no-op, so callers never need a nil check.
type Publisher struct {
	redis *redis.Client
}

func NewPublisher(redisClient *redis.Client) *Publisher {
	return &Publisher{redis: redisClient}
}

func (p *Publisher) Publish(ctx context.Context, event LedgerEvent) error {
	if p.redis == nil {
		return nil
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channel := fmt.Sprintf("ledger:events:%s", event.EventType)
	if err := p.redis.Publish(ctx, channel, eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	if err := p.redis.Publish(ctx, "ledger:events:all", eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish to all channel: %w", err)
	}

	return nil
}
