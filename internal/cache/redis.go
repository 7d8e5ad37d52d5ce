package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/business-admin-api/internal/config"
	"github.com/redis/go-redis/v9"
)

type Client struct {
	Client *redis.Client
}

// NewClient creates a new Redis client
func NewClient(cfg *config.RedisConfig) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{Client: client}, nil
}

// Get retrieves a value from Redis
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

// Set sets a value in Redis with expiration
func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.Client.Set(ctx, key, value, expiration).Err()
}

// Delete removes a key from Redis
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	return c.Client.Del(ctx, keys...).Err()
}

// Exists checks if a key exists in Redis
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	count, err := c.Client.Exists(ctx, key).Result()
	return count > 0, err
}

// GetUserRole retrieves the cached role name for a user
func (c *Client) GetUserRole(ctx context.Context, userID string) (string, error) {
	key := fmt.Sprintf("user:role:%s", userID)
	return c.Get(ctx, key)
}

// SetUserRole caches the role name for a user
func (c *Client) SetUserRole(ctx context.Context, userID, role string, expiration time.Duration) error {
	key := fmt.Sprintf("user:role:%s", userID)
	return c.Set(ctx, key, role, expiration)
}

// InvalidateUserRole removes the cached role for a user.
// Must be called whenever a user's type changes.
func (c *Client) InvalidateUserRole(ctx context.Context, userID string) error {
	key := fmt.Sprintf("user:role:%s", userID)
	return c.Delete(ctx, key)
}

// Close closes the Redis client
func (c *Client) Close() error {
	return c.Client.Close()
}
