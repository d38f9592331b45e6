package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Gsus07/tichat-push/internal/push"
)

// PreferencesCache is a read-through cache in front of the preferences
// table. A cache problem is never an error the caller sees; misses just
// fall through to the database.
type PreferencesCache interface {
	Get(ctx context.Context, userID string) (*push.Preferences, bool)
	Set(ctx context.Context, userID string, prefs push.Preferences)
	Invalidate(ctx context.Context, userID string)
}

type redisPreferencesCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPreferencesCache wraps a redis client. TTL bounds staleness if an
// invalidation is ever lost.
func NewPreferencesCache(client *redis.Client, ttl time.Duration) PreferencesCache {
	return &redisPreferencesCache{client: client, ttl: ttl}
}

func (c *redisPreferencesCache) key(userID string) string {
	return "notifications:preferences:" + userID
}

func (c *redisPreferencesCache) Get(ctx context.Context, userID string) (*push.Preferences, bool) {
	value, err := c.client.Get(ctx, c.key(userID)).Result()
	if err != nil {
		return nil, false
	}
	var prefs push.Preferences
	if err := json.Unmarshal([]byte(value), &prefs); err != nil {
		return nil, false
	}
	return &prefs, true
}

func (c *redisPreferencesCache) Set(ctx context.Context, userID string, prefs push.Preferences) {
	data, err := json.Marshal(prefs)
	if err != nil {
		return
	}
	c.client.Set(ctx, c.key(userID), data, c.ttl)
}

func (c *redisPreferencesCache) Invalidate(ctx context.Context, userID string) {
	c.client.Del(ctx, c.key(userID))
}
