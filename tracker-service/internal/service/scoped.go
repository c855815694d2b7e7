package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/atdaga/skrm-server/pkg/log"
	"github.com/atdaga/skrm-server/pkg/scopedid"
	"github.com/atdaga/skrm-server/pkg/sequence"
)

var (
	taskCodec    = scopedid.Tasks
	featureCodec = scopedid.Features
)

// validateScopedID rejects ids that are malformed or live in another
// organization's namespace, returning invalid.
func validateScopedID(orgID uuid.UUID, raw string, codec scopedid.Codec, invalid error) error {
	id, err := uuid.Parse(raw)
	if err != nil || !codec.Owns(orgID, id) {
		return invalid
	}
	return nil
}

// nextScopedID allocates the next number of kind in orgID and encodes it.
func nextScopedID(ctx context.Context, allocator sequence.Allocator, orgID uuid.UUID, codec scopedid.Codec) (string, int64, error) {
	n, err := allocator.Allocate(ctx, orgID, codec.Kind())
	if err != nil {
		if scopedid.IsExhausted(err) {
			l := log.Ctx(ctx)
			l.Error().Err(err).Str(log.FieldOrgID, orgID.String()).Str(log.FieldKind, string(codec.Kind())).Msg("namespace exhausted")
			return "", 0, ErrNamespaceExhausted
		}
		return "", 0, err
	}

	id, err := codec.Encode(orgID, n)
	if err != nil {
		var rangeErr *scopedid.InvalidSequenceNumberError
		if errors.As(err, &rangeErr) {
			return "", 0, ErrNamespaceExhausted
		}
		return "", 0, err
	}
	return id.String(), n, nil
}
