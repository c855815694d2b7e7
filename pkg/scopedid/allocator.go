package scopedid

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Allocator hands out sequence numbers per (organization, kind).
//
// Implementations must never return the same number twice for a pair,
// even across concurrent callers or after the owning entity is deleted.
// Gaps are allowed. Once MaxSequence numbers have been issued,
// Allocate fails with an ExhaustedNamespaceError.
type Allocator interface {
	Allocate(ctx context.Context, org uuid.UUID, kind Kind) (int64, error)
}

type counterKey struct {
	org  uuid.UUID
	kind Kind
}

// MemoryAllocator is an in-process Allocator. Counters live only as long
// as the value does.
type MemoryAllocator struct {
	mu   sync.Mutex
	last map[counterKey]int64
}

// NewMemoryAllocator creates an empty MemoryAllocator.
func NewMemoryAllocator() *MemoryAllocator {
	return &MemoryAllocator{last: make(map[counterKey]int64)}
}

func (a *MemoryAllocator) Allocate(ctx context.Context, org uuid.UUID, kind Kind) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	key := counterKey{org: org, kind: kind}
	if a.last[key] >= MaxSequence {
		return 0, &ExhaustedNamespaceError{Kind: kind, Organization: org}
	}
	a.last[key]++
	return a.last[key], nil
}

// Current returns the last number issued for the pair, 0 if none.
func (a *MemoryAllocator) Current(org uuid.UUID, kind Kind) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last[counterKey{org: org, kind: kind}]
}

// Seed sets the last issued number for the pair. Seeding below the
// current value is ignored so numbers are never handed out twice.
func (a *MemoryAllocator) Seed(org uuid.UUID, kind Kind, last int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := counterKey{org: org, kind: kind}
	if last > a.last[key] {
		a.last[key] = last
	}
}
