package sequence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/atdaga/skrm-server/pkg/log"
	"github.com/atdaga/skrm-server/pkg/scopedid"
)

// RedisAllocator allocates numbers with INCR. Once a counter passes
// MaxSequence every further call fails; the overshoot is a tolerated gap.
type RedisAllocator struct {
	client *redis.Client
	prefix string
}

// NewRedisAllocator creates a RedisAllocator whose keys start with prefix.
func NewRedisAllocator(client *redis.Client, prefix string) *RedisAllocator {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisAllocator{client: client, prefix: prefix}
}

// BuildCounterKey returns "<prefix>:seq:<org>:<kind>".
func (a *RedisAllocator) BuildCounterKey(org uuid.UUID, kind scopedid.Kind) string {
	return fmt.Sprintf("%s:seq:%s:%s", a.prefix, org.String(), kind)
}

func (a *RedisAllocator) Allocate(ctx context.Context, org uuid.UUID, kind scopedid.Kind) (int64, error) {
	n, err := a.client.Incr(ctx, a.BuildCounterKey(org, kind)).Result()
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldOrgID, org.String()).Str(log.FieldKind, string(kind)).Msg("failed to allocate sequence number")
		return 0, fmt.Errorf("failed to increment counter: %w", err)
	}
	if n > scopedid.MaxSequence {
		return 0, &scopedid.ExhaustedNamespaceError{Kind: kind, Organization: org}
	}
	return n, nil
}

// Current returns the last number issued for the pair, 0 if none.
func (a *RedisAllocator) Current(ctx context.Context, org uuid.UUID, kind scopedid.Kind) (int64, error) {
	n, err := a.client.Get(ctx, a.BuildCounterKey(org, kind)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if n > scopedid.MaxSequence {
		n = scopedid.MaxSequence
	}
	return n, nil
}
