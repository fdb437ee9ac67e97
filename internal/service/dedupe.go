package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDedupe remembers recently evaluated work orders so a cron does not
// re-request or re-counter the same posting on every poll.
type RedisDedupe struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDedupe wraps a Redis client with the dedupe key schema.
func NewRedisDedupe(client *redis.Client, ttl time.Duration) *RedisDedupe {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisDedupe{client: client, ttl: ttl}
}

// MarkEvaluated returns true the first time a cron sees a work order within
// the TTL window. When Redis is unavailable the work order is treated as
// unseen so an outage degrades to duplicate evaluations, not missed ones.
func (d *RedisDedupe) MarkEvaluated(ctx context.Context, cronID, workOrderID string) (bool, error) {
	if d == nil || d.client == nil {
		return true, nil
	}
	key := fmt.Sprintf("dispatch:seen:%s:%s", cronID, workOrderID)
	first, err := d.client.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		return true, fmt.Errorf("dedupe setnx: %w", err)
	}
	return first, nil
}

// Forget clears the dedupe marker, re-arming evaluation for a work order.
func (d *RedisDedupe) Forget(ctx context.Context, cronID, workOrderID string) error {
	if d == nil || d.client == nil {
		return nil
	}
	key := fmt.Sprintf("dispatch:seen:%s:%s", cronID, workOrderID)
	return d.client.Del(ctx, key).Err()
}
