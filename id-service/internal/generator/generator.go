// Package generator issues, validates and parses the identifier types the
// platform uses.
package generator

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

const (
	TypeUUID    = "uuid"
	TypeUUID7   = "uuid7"
	TypeTask    = "task"
	TypeFeature = "feature"

	MaxBatch = 1000
)

var (
	ErrUnknownType       = errors.New("unknown id type")
	ErrNamespaceRequired = errors.New("namespace is required for scoped ids")
	ErrInvalidNamespace  = errors.New("namespace must be an organization uuid")
	ErrInvalidCount      = fmt.Errorf("count must be between 1 and %d", MaxBatch)
)

// Generator defines the interface for ID generation, validation, and parsing.
// Unscoped generators ignore namespace.
type Generator interface {
	Generate(ctx context.Context, namespace string) (string, error)
	GenerateBatch(ctx context.Context, namespace string, count int) ([]string, error)
	Validate(id string) (bool, string) // (valid, reason)
	Parse(id string) (*ParseResult, error)
}

// ParseResult holds the parsed fields from an ID.
type ParseResult struct {
	UUIDVersion int    `json:"uuid_version"`
	UUIDVariant string `json:"uuid_variant"`
	TimestampMs int64  `json:"timestamp_ms,omitempty"` // v7 only
	Namespace   string `json:"namespace,omitempty"`    // scoped only
	Kind        string `json:"kind,omitempty"`         // scoped only
	Sequence    int64  `json:"sequence,omitempty"`     // scoped only
}

// Registry maps type names to generators.
type Registry map[string]Generator

// Get returns the generator for typ.
func (r Registry) Get(typ string) (Generator, error) {
	gen, ok := r[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
	return gen, nil
}

// Types lists the registered type names in order.
func (r Registry) Types() []string {
	types := make([]string, 0, len(r))
	for t := range r {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func checkCount(count int) error {
	if count < 1 || count > MaxBatch {
		return ErrInvalidCount
	}
	return nil
}

func variantName(v uuid.Variant) string {
	switch v {
	case uuid.RFC4122:
		return "RFC4122"
	case uuid.Reserved:
		return "Reserved"
	case uuid.Microsoft:
		return "Microsoft"
	case uuid.Future:
		return "Future"
	default:
		return "Unknown"
	}
}
