package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	domain "github.com/Voridan/giveaway-platform/internal/domain/user"
)

// UserCache is a read-through Redis cache in front of a user reader.
// Cache failures degrade to the backing reader.
type UserCache struct {
	client goredis.Cmdable
	next   domain.Reader
	ttl    time.Duration
	log    zerolog.Logger
}

func NewUserCache(client goredis.Cmdable, next domain.Reader, ttl time.Duration, log zerolog.Logger) *UserCache {
	return &UserCache{client: client, next: next, ttl: ttl, log: log}
}

func (c *UserCache) keyByID(id int64) string { return fmt.Sprintf("users:%d", id) }

// GetByID returns the cached user or loads and caches it. Absent users are not cached.
func (c *UserCache) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	v, err := c.client.Get(ctx, c.keyByID(id)).Bytes()
	if err == nil {
		var u domain.User
		if err := json.Unmarshal(v, &u); err == nil {
			return &u, nil
		}
	} else if !errors.Is(err, goredis.Nil) {
		c.log.Warn().Err(err).Int64("user_id", id).Msg("user cache read failed")
	}

	u, err := c.next.GetByID(ctx, id)
	if err != nil || u == nil {
		return u, err
	}
	if err := c.Set(ctx, u); err != nil {
		c.log.Warn().Err(err).Int64("user_id", id).Msg("user cache write failed")
	}
	return u, nil
}

// GetManyByID always reads through; partner validation must see fresh rows.
func (c *UserCache) GetManyByID(ctx context.Context, ids []int64) ([]domain.User, error) {
	return c.next.GetManyByID(ctx, ids)
}

// Set stores user by id key.
func (c *UserCache) Set(ctx context.Context, u *domain.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.keyByID(u.ID), b, c.ttl).Err()
}
