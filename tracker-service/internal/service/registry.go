package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/atdaga/skrm-server/pkg/log"
	"github.com/atdaga/skrm-server/pkg/scopedid"
)

// MaxPrefixAttempts bounds how many random organization ids are tried
// before creation gives up.
const MaxPrefixAttempts = 10

// PrefixChecker reports whether a namespace prefix is already in use.
type PrefixChecker interface {
	PrefixExists(ctx context.Context, prefix string) (bool, error)
}

// NamespaceRegistry hands out organization ids whose namespace prefix is
// not used by any other organization.
type NamespaceRegistry struct {
	checker  PrefixChecker
	newID    func() uuid.UUID
	attempts int
}

// NewNamespaceRegistry creates a registry drawing random UUIDv4 ids.
func NewNamespaceRegistry(checker PrefixChecker) *NamespaceRegistry {
	return &NamespaceRegistry{checker: checker, newID: uuid.New, attempts: MaxPrefixAttempts}
}

// NewOrganizationID returns a fresh id whose prefix is unused, or
// ErrOrganizationCreationFailed after MaxPrefixAttempts collisions.
func (r *NamespaceRegistry) NewOrganizationID(ctx context.Context) (uuid.UUID, error) {
	l := log.Ctx(ctx)

	for attempt := 1; attempt <= r.attempts; attempt++ {
		id := r.newID()
		prefix := scopedid.PrefixOf(id)

		taken, err := r.checker.PrefixExists(ctx, string(prefix))
		if err != nil {
			return uuid.Nil, err
		}
		if !taken {
			return id, nil
		}
		l.Warn().Str("prefix", string(prefix)).Int("attempt", attempt).Msg("organization prefix collision")
	}
	return uuid.Nil, ErrOrganizationCreationFailed
}
