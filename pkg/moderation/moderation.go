// Package moderation implements the active-timeout check the response
// hot path gates on (§7 kind 7: "user in timeout → cold response").
// Timeout state is a TTL'd Redis key, the same key/TTL layout
// pkg/taskqueue uses for its idempotency markers and pkg/artifacts uses
// for pending artifacts — moderation decisions themselves are made
// elsewhere (a Discord/Matrix moderation command, an admin tool); this
// package only stores and checks the resulting timeout window.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Checker is a Redis-backed timeout store, keyed per (user, bot).
type Checker struct {
	rdb       *redis.Client
	keyPrefix string
	log       zerolog.Logger
}

// New builds a Checker bound to one Redis client and key namespace.
func New(rdb *redis.Client, keyPrefix string, log zerolog.Logger) *Checker {
	return &Checker{rdb: rdb, keyPrefix: keyPrefix, log: log.With().Str("component", "moderation").Logger()}
}

func (c *Checker) key(userID string) string {
	return fmt.Sprintf("%smoderation_timeout:%s", c.keyPrefix, userID)
}

// StartTimeout puts userID into an active timeout for dur, blocking every
// positive trust delta and routing replies to the cold script until it
// expires (§4.4, §7 kind 7).
func (c *Checker) StartTimeout(ctx context.Context, userID string, dur time.Duration) error {
	if err := c.rdb.Set(ctx, c.key(userID), "1", dur).Err(); err != nil {
		return fmt.Errorf("moderation: start timeout: %w", err)
	}
	return nil
}

// ClearTimeout ends userID's timeout early, if any is active.
func (c *Checker) ClearTimeout(ctx context.Context, userID string) error {
	if err := c.rdb.Del(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("moderation: clear timeout: %w", err)
	}
	return nil
}

// IsInTimeout implements respond.ModerationChecker.
func (c *Checker) IsInTimeout(ctx context.Context, userID string) (bool, error) {
	_, err := c.rdb.Get(ctx, c.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("moderation: get timeout: %w", err)
	}
	return true, nil
}
