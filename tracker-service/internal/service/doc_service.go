package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/atdaga/skrm-server/pkg/storage"
	"github.com/atdaga/skrm-server/tracker-service/internal/audit"
	"github.com/atdaga/skrm-server/tracker-service/internal/domain"
	"github.com/atdaga/skrm-server/tracker-service/internal/repository"
)

const (
	docFileName    = "doc.md"
	docContentType = "text/markdown; charset=utf-8"
	// MaxDocSize caps a feature document body.
	MaxDocSize = 1 << 20
)

// DocService stores the markdown document attached to a feature.
type DocService interface {
	PutDoc(ctx context.Context, actor Actor, orgID uuid.UUID, featureID, content string) (*domain.FeatureDoc, error)
	GetDoc(ctx context.Context, actor Actor, orgID uuid.UUID, featureID string) (*domain.FeatureDoc, error)
	DeleteDoc(ctx context.Context, actor Actor, orgID uuid.UUID, featureID string) error
}

type docServiceImpl struct {
	store    storage.Storage
	features repository.FeatureRepository
	access   *AccessChecker
}

func NewDocService(store storage.Storage, features repository.FeatureRepository, access *AccessChecker) DocService {
	return &docServiceImpl{store: store, features: features, access: access}
}

func featureDocPrefix(orgID, featureID string) string {
	return fmt.Sprintf("orgs/%s/features/%s/", orgID, featureID)
}

// FeatureDocKey is the object key of a feature's document.
func FeatureDocKey(orgID, featureID string) string {
	return featureDocPrefix(orgID, featureID) + docFileName
}

func (s *docServiceImpl) PutDoc(ctx context.Context, actor Actor, orgID uuid.UUID, featureID, content string) (*domain.FeatureDoc, error) {
	if len(content) > MaxDocSize {
		return nil, ErrDocTooLarge
	}
	id, err := s.resolve(ctx, actor, orgID, featureID)
	if err != nil {
		return nil, err
	}

	key := FeatureDocKey(id, featureID)
	if err := s.store.Write(ctx, key, strings.NewReader(content), int64(len(content)), docContentType); err != nil {
		return nil, err
	}

	audit.Log(ctx, audit.ActionPutFeatureDoc, actor.UserID, id, featureID, "feature document stored")
	return &domain.FeatureDoc{FeatureID: featureID, Key: key, Content: content}, nil
}

func (s *docServiceImpl) GetDoc(ctx context.Context, actor Actor, orgID uuid.UUID, featureID string) (*domain.FeatureDoc, error) {
	id, err := s.resolve(ctx, actor, orgID, featureID)
	if err != nil {
		return nil, err
	}

	key := FeatureDocKey(id, featureID)
	rc, err := s.store.Read(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrDocNotFound
		}
		return nil, err
	}
	defer rc.Close()

	body, err := io.ReadAll(io.LimitReader(rc, MaxDocSize+1))
	if err != nil {
		return nil, fmt.Errorf("read feature document: %w", err)
	}
	return &domain.FeatureDoc{FeatureID: featureID, Key: key, Content: string(body)}, nil
}

func (s *docServiceImpl) DeleteDoc(ctx context.Context, actor Actor, orgID uuid.UUID, featureID string) error {
	id, err := s.resolve(ctx, actor, orgID, featureID)
	if err != nil {
		return err
	}

	key := FeatureDocKey(id, featureID)
	exists, err := s.store.Exists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		return ErrDocNotFound
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return err
	}

	audit.Log(ctx, audit.ActionDeleteFeatureDoc, actor.UserID, id, featureID, "feature document deleted")
	return nil
}

// resolve checks membership and that the feature exists, returning the
// organization id in text form.
func (s *docServiceImpl) resolve(ctx context.Context, actor Actor, orgID uuid.UUID, featureID string) (string, error) {
	if err := validateScopedID(orgID, featureID, featureCodec, ErrInvalidFeatureID); err != nil {
		return "", err
	}
	id := orgID.String()
	if _, err := s.access.RequireMember(ctx, id, actor); err != nil {
		return "", err
	}
	if _, err := s.features.GetByID(ctx, id, featureID); err != nil {
		if errors.Is(err, repository.ErrFeatureNotFound) {
			return "", ErrFeatureNotFound
		}
		return "", err
	}
	return id, nil
}
