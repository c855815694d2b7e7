package generator

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// UUIDGenerator generates random or time-ordered UUIDs. Organization ids
// are v4; sprint ids are v7.
type UUIDGenerator struct {
	version uuid.Version
	newID   func() (uuid.UUID, error)
}

// NewUUIDGenerator creates a v4 generator.
func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{version: 4, newID: uuid.NewRandom}
}

// NewUUID7Generator creates a v7 generator.
func NewUUID7Generator() *UUIDGenerator {
	return &UUIDGenerator{version: 7, newID: uuid.NewV7}
}

func (g *UUIDGenerator) Generate(_ context.Context, _ string) (string, error) {
	id, err := g.newID()
	if err != nil {
		return "", fmt.Errorf("failed to generate UUID: %w", err)
	}
	return id.String(), nil
}

func (g *UUIDGenerator) GenerateBatch(ctx context.Context, namespace string, count int) ([]string, error) {
	if err := checkCount(count); err != nil {
		return nil, err
	}
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		id, err := g.Generate(ctx, namespace)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (g *UUIDGenerator) Validate(id string) (bool, string) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return false, fmt.Sprintf("invalid UUID format: %v", err)
	}
	if parsed.Version() != g.version {
		return false, fmt.Sprintf("expected UUID v%d, got v%d", g.version, parsed.Version())
	}
	return true, ""
}

func (g *UUIDGenerator) Parse(id string) (*ParseResult, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID format: %w", err)
	}

	result := &ParseResult{
		UUIDVersion: int(parsed.Version()),
		UUIDVariant: variantName(parsed.Variant()),
	}
	if parsed.Version() == 7 {
		sec, nsec := parsed.Time().UnixTime()
		result.TimestampMs = sec*1000 + nsec/1_000_000
	}
	return result, nil
}
