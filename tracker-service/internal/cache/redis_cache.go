package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/atdaga/skrm-server/tracker-service/internal/config"
	"github.com/atdaga/skrm-server/tracker-service/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// RedisMembershipCache stores roles in a per-organization hash, so an
// organization's entries can be dropped with one DEL.
type RedisMembershipCache struct {
	client *redis.Client
	prefix string
}

func NewRedisMembershipCache(client *redis.Client, prefix string) *RedisMembershipCache {
	return &RedisMembershipCache{client: client, prefix: prefix}
}

// BuildKeyByUser returns the key of one membership entry.
func (c *RedisMembershipCache) BuildKeyByUser(orgID, userID string) string {
	return fmt.Sprintf("%s:member:%s:%s", c.prefix, orgID, userID)
}

// BuildIndexKey returns the set tracking an organization's cached users.
func (c *RedisMembershipCache) BuildIndexKey(orgID string) string {
	return fmt.Sprintf("%s:members:%s", c.prefix, orgID)
}

func (c *RedisMembershipCache) GetRole(ctx context.Context, orgID, userID string) (domain.MemberRole, error) {
	role, err := c.client.Get(ctx, c.BuildKeyByUser(orgID, userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCacheMiss
		}
		return "", fmt.Errorf("failed to get from redis: %w", err)
	}
	return domain.MemberRole(role), nil
}

func (c *RedisMembershipCache) SetRole(ctx context.Context, orgID, userID string, role domain.MemberRole, ttl time.Duration) error {
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, c.BuildKeyByUser(orgID, userID), string(role), ttl)
	pipe.SAdd(ctx, c.BuildIndexKey(orgID), userID)
	pipe.Expire(ctx, c.BuildIndexKey(orgID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}
	return nil
}

func (c *RedisMembershipCache) Invalidate(ctx context.Context, orgID string, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}

	keys := make([]string, len(userIDs))
	members := make([]interface{}, len(userIDs))
	for i, id := range userIDs {
		keys[i] = c.BuildKeyByUser(orgID, id)
		members[i] = id
	}

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, keys...)
	pipe.SRem(ctx, c.BuildIndexKey(orgID), members...)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// InvalidateOrganization drops every cached role of orgID.
func (c *RedisMembershipCache) InvalidateOrganization(ctx context.Context, orgID string) error {
	users, err := c.client.SMembers(ctx, c.BuildIndexKey(orgID)).Result()
	if err != nil {
		return fmt.Errorf("failed to read index from redis: %w", err)
	}

	keys := []string{c.BuildIndexKey(orgID)}
	for _, id := range users {
		keys = append(keys, c.BuildKeyByUser(orgID, id))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}
