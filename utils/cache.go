// File: utils/cache.go
package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"servicedesk/config"
	"servicedesk/models"

	"github.com/go-redis/redis/v8"
)

// AuthCacheClient is the dedicated client for authorization caching.
var AuthCacheClient *redis.Client

// InitAuthCache connects the auth cache client. It returns nil without a
// client when REDIS_ADDR is empty.
func InitAuthCache() error {
	if config.AppConfig.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisAuthDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("failed to connect to Redis (Auth Cache): %w", err)
	}
	AuthCacheClient = client
	return nil
}

// UserCache caches the user behind a token so that every request does not
// hit the user store.
type UserCache interface {
	Get(ctx context.Context, uid string) (*models.User, bool)
	Set(ctx context.Context, user models.User)
	Invalidate(ctx context.Context, uid string)
}

// RedisUserCache is a UserCache over the auth cache client. Cache errors are
// logged and treated as misses.
type RedisUserCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisUserCache(client *redis.Client) *RedisUserCache {
	return &RedisUserCache{Client: client, TTL: AuthCacheTTL}
}

func (c *RedisUserCache) Get(ctx context.Context, uid string) (*models.User, bool) {
	data, err := c.Client.Get(ctx, AuthCachePrefix+uid).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			GetLogger().Sugar().Warnf("auth cache get %s: %v", uid, err)
		}
		return nil, false
	}
	var u models.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, false
	}
	return &u, true
}

func (c *RedisUserCache) Set(ctx context.Context, user models.User) {
	data, err := json.Marshal(user)
	if err != nil {
		return
	}
	if err := c.Client.Set(ctx, AuthCachePrefix+user.UID, data, c.TTL).Err(); err != nil {
		GetLogger().Sugar().Warnf("auth cache set %s: %v", user.UID, err)
	}
}

func (c *RedisUserCache) Invalidate(ctx context.Context, uid string) {
	if err := c.Client.Del(ctx, AuthCachePrefix+uid).Err(); err != nil {
		GetLogger().Sugar().Warnf("auth cache invalidate %s: %v", uid, err)
	}
}

// NoopUserCache is used when Redis is not configured.
type NoopUserCache struct{}

func (NoopUserCache) Get(context.Context, string) (*models.User, bool) { return nil, false }
func (NoopUserCache) Set(context.Context, models.User)                 {}
func (NoopUserCache) Invalidate(context.Context, string)               {}
