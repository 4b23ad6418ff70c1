package redis

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// StreamPublisher appends entries to Redis streams
type StreamPublisher struct {
	rdb    redis.Cmdable
	maxLen int64
}

// NewStreamPublisher returns a publisher trimming each stream to roughly
// maxLen entries. maxLen <= 0 disables trimming.
func NewStreamPublisher(rdb redis.Cmdable, maxLen int64) *StreamPublisher {
	return &StreamPublisher{rdb: rdb, maxLen: maxLen}
}

// Publish adds one entry and returns its stream id
func (p *StreamPublisher) Publish(ctx context.Context, stream string, values map[string]interface{}) (string, error) {
	args := &redis.XAddArgs{Stream: stream, Values: values}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	id, err := p.rdb.XAdd(ctx, args).Result()
	if err != nil {
		return "", fmt.Errorf("failed to publish to %s: %w", stream, err)
	}
	return id, nil
}

// EnsureGroup creates the consumer group and the stream if missing.
// New groups start at the end of the stream.
func EnsureGroup(ctx context.Context, rdb redis.Cmdable, stream, group string) error {
	err := rdb.XGroupCreateMkStream(ctx, stream, group, "$").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group %s on %s: %w", group, stream, err)
	}
	return nil
}
