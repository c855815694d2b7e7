package sequence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/atdaga/skrm-server/pkg/scopedid"
)

const (
	DriverDatabase = "database"
	DriverRedis    = "redis"
	DriverMemory   = "memory"

	DefaultKeyPrefix = "skrm"
)

// Config selects the allocator backend.
type Config struct {
	Driver    string `mapstructure:"driver"` // "database", "redis", "memory"
	KeyPrefix string `mapstructure:"key_prefix"`
}

// Allocator is a scopedid.Allocator that can also report its counters.
type Allocator interface {
	scopedid.Allocator
	Current(ctx context.Context, org uuid.UUID, kind scopedid.Kind) (int64, error)
}

// New returns the configured allocator. db is required for the database
// driver and client for the redis driver.
func New(cfg Config, db *gorm.DB, client *redis.Client) (Allocator, error) {
	switch cfg.Driver {
	case DriverDatabase, "":
		if db == nil {
			return nil, fmt.Errorf("sequence driver %q needs a database", DriverDatabase)
		}
		return NewGormAllocator(db), nil
	case DriverRedis:
		if client == nil {
			return nil, fmt.Errorf("sequence driver %q needs a redis client", DriverRedis)
		}
		return NewRedisAllocator(client, cfg.KeyPrefix), nil
	case DriverMemory:
		return memoryAllocator{scopedid.NewMemoryAllocator()}, nil
	default:
		return nil, fmt.Errorf("unsupported sequence driver: %s", cfg.Driver)
	}
}

// memoryAllocator adapts scopedid.MemoryAllocator to Allocator.
type memoryAllocator struct {
	*scopedid.MemoryAllocator
}

func (m memoryAllocator) Current(_ context.Context, org uuid.UUID, kind scopedid.Kind) (int64, error) {
	return m.MemoryAllocator.Current(org, kind), nil
}
