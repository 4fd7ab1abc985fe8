package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	customErrors "contactbook/internal/domain/errors"
	"contactbook/internal/domain/model"
)

const keyPrefix = "session:"

// SessionCache is a write-through TTL cache of user snapshots. It is
// advisory only: the user store remains the source of truth, entries are
// replaced wholesale and die by expiry.
type SessionCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewSessionCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *SessionCache {
	return &SessionCache{client: client, ttl: ttl, log: log}
}

// Get returns the cached snapshot for username. A missing key and an entry
// that no longer deserializes both read as a miss; only backend I/O failures
// surface as errors.
func (c *SessionCache) Get(ctx context.Context, username string) (model.User, bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+username).Bytes()
	switch {
	case err == redis.Nil:
		return model.User{}, false, nil
	case err != nil:
		return model.User{}, false, customErrors.WrapInternal(err, "session cache get")
	}

	var user model.User
	if err := json.Unmarshal(raw, &user); err != nil {
		// Stale or corrupt snapshot: fail open to the user store.
		c.log.Warn("dropping undecodable session snapshot",
			zap.String("username", username), zap.Error(err))
		return model.User{}, false, nil
	}
	return user, true, nil
}

func (c *SessionCache) Put(ctx context.Context, username string, user model.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return customErrors.WrapInternal(err, "session cache marshal")
	}
	if err := c.client.Set(ctx, keyPrefix+username, raw, c.ttl).Err(); err != nil {
		return customErrors.WrapInternal(err, "session cache put")
	}
	return nil
}
