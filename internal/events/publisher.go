// Package events publishes pipeline status transitions to real-time
// subscribers over a Redis pub/sub channel. Delivery is best-effort: the
// controller logs publish failures and moves on.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	r "github.com/redis/go-redis/v9"
)

// Channel is the pub/sub channel carrying status transition events.
const Channel = "channel:events"

// Event describes a single status transition of an application.
type Event struct {
	BambooID int    `json:"bambooId"`
	Step     string `json:"step"`
	Status   string `json:"status"`
}

type Publisher struct {
	rdb *r.Client
}

func NewPublisher(rdb *r.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

func (p *Publisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.rdb.Publish(ctx, Channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", Channel, err)
	}

	return nil
}
