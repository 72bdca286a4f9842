package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/ikkim/screening-backend/config"
	"github.com/ikkim/screening-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// Init initializes Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", logger.Fields{
		"addr": cfg.Addr(),
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, logger.Fields{
			"addr": cfg.Addr(),
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully")
	return nil
}

// GetClient returns the Redis client instance, nil when Redis is disabled.
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection")
		return client.Close()
	}
	return nil
}

// RevokeToken marks a token id as revoked until it would have expired anyway.
func RevokeToken(ctx context.Context, tokenID string, expiry time.Duration) error {
	if client == nil {
		return nil
	}
	if expiry <= 0 {
		return nil
	}

	key := "revoked:" + tokenID
	if err := client.Set(ctx, key, "1", expiry).Err(); err != nil {
		logger.Error("Failed to revoke token", err)
		return err
	}

	logger.Debug("Token revoked", logger.Fields{"expiry": expiry.String()})
	return nil
}

// IsTokenRevoked reports whether RevokeToken was called for tokenID.
func IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	if client == nil {
		return false, nil
	}

	n, err := client.Exists(ctx, "revoked:"+tokenID).Result()
	if err != nil {
		logger.Error("Failed to check token revocation", err)
		return false, err
	}
	return n > 0, nil
}

// TokenStore adapts the package-level revocation helpers to an interface.
type TokenStore struct{}

func (TokenStore) RevokeToken(ctx context.Context, tokenID string, expiry time.Duration) error {
	return RevokeToken(ctx, tokenID, expiry)
}

func (TokenStore) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	return IsTokenRevoked(ctx, tokenID)
}

// PermissionCache keeps each user's permission set in a Redis set with a TTL.
type PermissionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPermissionCache(c *redis.Client, ttl time.Duration) *PermissionCache {
	return &PermissionCache{client: c, ttl: ttl}
}

func permissionKey(userID uint) string {
	return fmt.Sprintf("permissions:%d", userID)
}

// Get returns the cached permissions and whether the entry existed.
func (p *PermissionCache) Get(ctx context.Context, userID uint) ([]string, bool, error) {
	key := permissionKey(userID)
	n, err := p.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, false, err
	}
	if n == 0 {
		return nil, false, nil
	}

	members, err := p.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, false, err
	}
	permissions := make([]string, 0, len(members))
	for _, m := range members {
		if m != "" {
			permissions = append(permissions, m)
		}
	}
	return permissions, true, nil
}

// Set replaces the cached permission set. An empty set is stored as a
// placeholder member so that "no permissions" is cached too.
func (p *PermissionCache) Set(ctx context.Context, userID uint, permissions []string) error {
	key := permissionKey(userID)
	members := make([]interface{}, 0, len(permissions)+1)
	members = append(members, "")
	for _, perm := range permissions {
		members = append(members, perm)
	}

	pipe := p.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.SAdd(ctx, key, members...)
	pipe.Expire(ctx, key, p.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (p *PermissionCache) Invalidate(ctx context.Context, userID uint) error {
	return p.client.Del(ctx, permissionKey(userID)).Err()
}
