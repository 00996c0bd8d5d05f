package payments

import (
	"context"
	"fmt"
	"time"

	redispkg "github.com/xourcebase/backend/pkg/redis"
)

// dedupTTL bounds how long processed event ids are remembered.
const dedupTTL = 24 * time.Hour

// RedisDeduper remembers processed webhook event ids in Redis.
type RedisDeduper struct {
	client *redispkg.Client
}

// NewRedisDeduper creates a Redis-backed event deduper.
func NewRedisDeduper(client *redispkg.Client) *RedisDeduper {
	return &RedisDeduper{client: client}
}

func dedupKey(eventID string) string {
	return "webhook:event:" + eventID
}

// MarkProcessed sets the event marker if absent and reports whether this
// delivery was the first.
func (d *RedisDeduper) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	first, err := d.client.SetNX(ctx, dedupKey(eventID), 1, dedupTTL).Result()
	if err != nil {
		return false, fmt.Errorf("mark event processed: %w", err)
	}
	return first, nil
}

// Forget drops the event marker so the gateway's redelivery is processed
// again. Called when handling failed after the marker was already set.
func (d *RedisDeduper) Forget(ctx context.Context, eventID string) error {
	if err := d.client.Del(ctx, dedupKey(eventID)).Err(); err != nil {
		return fmt.Errorf("release event marker: %w", err)
	}
	return nil
}
