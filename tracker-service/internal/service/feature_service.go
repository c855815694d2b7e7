package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/atdaga/skrm-server/pkg/log"
	"github.com/atdaga/skrm-server/pkg/pubsub"
	"github.com/atdaga/skrm-server/pkg/sequence"
	"github.com/atdaga/skrm-server/pkg/storage"
	"github.com/atdaga/skrm-server/tracker-service/internal/audit"
	"github.com/atdaga/skrm-server/tracker-service/internal/domain"
	"github.com/atdaga/skrm-server/tracker-service/internal/repository"
)

// maxFeatureDepth bounds the parent walk when checking for cycles.
const maxFeatureDepth = 64

// FeatureService defines feature business logic.
type FeatureService interface {
	CreateFeature(ctx context.Context, actor Actor, orgID uuid.UUID, req *domain.CreateFeatureRequest) (*domain.Feature, error)
	GetFeature(ctx context.Context, actor Actor, orgID uuid.UUID, featureID string) (*domain.Feature, error)
	ListFeatures(ctx context.Context, actor Actor, orgID uuid.UUID, req domain.ListRequest) (*domain.ListResponse[domain.Feature], error)
	UpdateFeature(ctx context.Context, actor Actor, orgID uuid.UUID, featureID string, req *domain.UpdateFeatureRequest) (*domain.Feature, error)
	DeleteFeature(ctx context.Context, actor Actor, orgID uuid.UUID, featureID string, hard bool) error
}

type featureServiceImpl struct {
	repo      repository.FeatureRepository
	allocator sequence.Allocator
	store     storage.Storage
	access    *AccessChecker
	events    eventEmitter
}

// NewFeatureService creates a FeatureService. store may be nil when
// feature documents are disabled.
func NewFeatureService(repo repository.FeatureRepository, allocator sequence.Allocator, store storage.Storage, access *AccessChecker, publisher pubsub.Publisher) FeatureService {
	return &featureServiceImpl{
		repo:      repo,
		allocator: allocator,
		store:     store,
		access:    access,
		events:    newEventEmitter(publisher),
	}
}

func (s *featureServiceImpl) CreateFeature(ctx context.Context, actor Actor, orgID uuid.UUID, req *domain.CreateFeatureRequest) (*domain.Feature, error) {
	id := orgID.String()
	if _, err := s.access.RequireMember(ctx, id, actor); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if err := s.checkName(ctx, id, name, ""); err != nil {
		return nil, err
	}
	parentID := req.ParentID
	if parentID != nil && *parentID == "" {
		parentID = nil
	}
	if parentID != nil {
		if err := s.checkParent(ctx, orgID, "", *parentID); err != nil {
			return nil, err
		}
	}

	featureID, number, err := nextScopedID(ctx, s.allocator, orgID, featureCodec)
	if err != nil {
		return nil, err
	}

	feature := &domain.Feature{
		ID:             featureID,
		Number:         number,
		OrgID:          id,
		Name:           name,
		ParentID:       parentID,
		FeatureType:    req.FeatureType,
		Summary:        req.Summary,
		Notes:          req.Notes,
		Guestimate:     req.Guestimate,
		ReviewResult:   req.ReviewResult,
		Meta:           req.Meta,
		CreatedBy:      actor.UserID,
		LastModifiedBy: actor.UserID,
	}
	if err := s.repo.Create(ctx, feature); err != nil {
		if errors.Is(err, repository.ErrFeatureExists) {
			return nil, ErrFeatureExists
		}
		return nil, err
	}

	audit.Log(ctx, audit.ActionCreateFeature, actor.UserID, id, feature.ID, "feature created")
	s.events.emit(ctx, id, pubsub.EntityFeature, pubsub.ActionCreated, feature)
	return feature, nil
}

func (s *featureServiceImpl) GetFeature(ctx context.Context, actor Actor, orgID uuid.UUID, featureID string) (*domain.Feature, error) {
	if err := validateScopedID(orgID, featureID, featureCodec, ErrInvalidFeatureID); err != nil {
		return nil, err
	}
	if _, err := s.access.RequireMember(ctx, orgID.String(), actor); err != nil {
		return nil, err
	}
	return s.get(ctx, orgID.String(), featureID)
}

func (s *featureServiceImpl) ListFeatures(ctx context.Context, actor Actor, orgID uuid.UUID, req domain.ListRequest) (*domain.ListResponse[domain.Feature], error) {
	if _, err := s.access.RequireMember(ctx, orgID.String(), actor); err != nil {
		return nil, err
	}
	req.Normalize()
	features, total, err := s.repo.List(ctx, orgID.String(), req)
	if err != nil {
		return nil, err
	}
	return domain.NewListResponse(features, total, req), nil
}

// UpdateFeature applies the non-nil fields of req. An empty parent id
// makes the feature a root.
func (s *featureServiceImpl) UpdateFeature(ctx context.Context, actor Actor, orgID uuid.UUID, featureID string, req *domain.UpdateFeatureRequest) (*domain.Feature, error) {
	if err := validateScopedID(orgID, featureID, featureCodec, ErrInvalidFeatureID); err != nil {
		return nil, err
	}
	id := orgID.String()
	if _, err := s.access.RequireMember(ctx, id, actor); err != nil {
		return nil, err
	}

	feature, err := s.get(ctx, id, featureID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != feature.Name {
			if err := s.checkName(ctx, id, name, feature.ID); err != nil {
				return nil, err
			}
		}
		feature.Name = name
	}
	if req.ParentID != nil {
		if *req.ParentID == "" {
			feature.ParentID = nil
		} else {
			if err := s.checkParent(ctx, orgID, feature.ID, *req.ParentID); err != nil {
				return nil, err
			}
			feature.ParentID = req.ParentID
		}
	}
	if req.FeatureType != nil {
		feature.FeatureType = *req.FeatureType
	}
	if req.Summary != nil {
		feature.Summary = *req.Summary
	}
	if req.Notes != nil {
		feature.Notes = *req.Notes
	}
	if req.Guestimate != nil {
		feature.Guestimate = req.Guestimate
	}
	if req.ReviewResult != nil {
		feature.ReviewResult = req.ReviewResult
	}
	if req.Meta != nil {
		feature.Meta = req.Meta
	}
	feature.LastModifiedBy = actor.UserID

	if err := s.repo.Update(ctx, feature); err != nil {
		switch {
		case errors.Is(err, repository.ErrFeatureExists):
			return nil, ErrFeatureExists
		case errors.Is(err, repository.ErrFeatureNotFound):
			return nil, ErrFeatureNotFound
		}
		return nil, err
	}

	updated, err := s.get(ctx, id, featureID)
	if err != nil {
		return nil, err
	}
	audit.Log(ctx, audit.ActionUpdateFeature, actor.UserID, id, featureID, "feature updated")
	s.events.emit(ctx, id, pubsub.EntityFeature, pubsub.ActionUpdated, updated)
	return updated, nil
}

// DeleteFeature removes a feature and detaches its children. A hard delete
// also removes the feature's stored documents.
func (s *featureServiceImpl) DeleteFeature(ctx context.Context, actor Actor, orgID uuid.UUID, featureID string, hard bool) error {
	if err := validateScopedID(orgID, featureID, featureCodec, ErrInvalidFeatureID); err != nil {
		return err
	}
	id := orgID.String()
	if err := requireDeleteRole(ctx, s.access, id, actor, hard); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id, featureID, hard); err != nil {
		if errors.Is(err, repository.ErrFeatureNotFound) {
			return ErrFeatureNotFound
		}
		return err
	}

	if hard && s.store != nil {
		if err := s.store.DeletePrefix(ctx, featureDocPrefix(id, featureID)); err != nil {
			l := log.Ctx(ctx)
			l.Warn().Err(err).Str(log.FieldEntityID, featureID).Msg("failed to delete feature documents")
		}
	}

	audit.LogWithDetail(ctx, audit.ActionDeleteFeature, actor.UserID, id, featureID, deleteDetail(hard), "feature deleted")
	s.events.emit(ctx, id, pubsub.EntityFeature, pubsub.ActionDeleted, deletedPayload{ID: featureID, Hard: hard})
	return nil
}

func (s *featureServiceImpl) checkName(ctx context.Context, orgID, name, excludeID string) error {
	taken, err := s.repo.NameTaken(ctx, orgID, name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return ErrFeatureExists
	}
	return nil
}

// checkParent verifies that parentID is a live feature of the organization
// and that featureID does not appear among its ancestors.
func (s *featureServiceImpl) checkParent(ctx context.Context, orgID uuid.UUID, featureID, parentID string) error {
	if err := validateScopedID(orgID, parentID, featureCodec, ErrInvalidParent); err != nil {
		return err
	}
	if parentID == featureID {
		return ErrInvalidParent
	}

	current := parentID
	for depth := 0; depth < maxFeatureDepth; depth++ {
		parent, err := s.repo.GetByID(ctx, orgID.String(), current)
		if err != nil {
			if errors.Is(err, repository.ErrFeatureNotFound) {
				if current == parentID {
					return ErrInvalidParent
				}
				return nil
			}
			return err
		}
		if parent.ParentID == nil {
			return nil
		}
		if *parent.ParentID == featureID {
			return ErrInvalidParent
		}
		current = *parent.ParentID
	}
	return fmt.Errorf("%w: hierarchy deeper than %d", ErrInvalidParent, maxFeatureDepth)
}

func (s *featureServiceImpl) get(ctx context.Context, orgID, featureID string) (*domain.Feature, error) {
	feature, err := s.repo.GetByID(ctx, orgID, featureID)
	if err != nil {
		if errors.Is(err, repository.ErrFeatureNotFound) {
			return nil, ErrFeatureNotFound
		}
		return nil, err
	}
	return feature, nil
}
