package sequence

import (
	"context"

	"github.com/google/uuid"

	"github.com/atdaga/skrm-server/pkg/metrics"
	"github.com/atdaga/skrm-server/pkg/scopedid"
)

// Instrument wraps a so every Allocate call is counted by kind and
// result.
func Instrument(a Allocator) Allocator {
	return instrumented{Allocator: a}
}

type instrumented struct {
	Allocator
}

func (i instrumented) Allocate(ctx context.Context, org uuid.UUID, kind scopedid.Kind) (int64, error) {
	n, err := i.Allocator.Allocate(ctx, org, kind)
	switch {
	case err == nil:
		metrics.ObserveAllocation(string(kind), metrics.ResultOK)
	case scopedid.IsExhausted(err):
		metrics.ObserveAllocation(string(kind), metrics.ResultExhausted)
	default:
		metrics.ObserveAllocation(string(kind), metrics.ResultError)
	}
	return n, err
}
