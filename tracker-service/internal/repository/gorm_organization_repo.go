package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/atdaga/skrm-server/pkg/log"
	"github.com/atdaga/skrm-server/tracker-service/internal/domain"
)

// GormOrganizationRepository implements OrganizationRepository using GORM.
type GormOrganizationRepository struct {
	db *gorm.DB
}

func NewGormOrganizationRepository(db *gorm.DB) *GormOrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// Create inserts the organization and its owner in one transaction. A
// duplicate key is reported as ErrPrefixTaken when the prefix is the
// culprit, ErrOrganizationExists otherwise.
func (r *GormOrganizationRepository) Create(ctx context.Context, org *domain.Organization, owner *domain.Member) error {
	l := log.Ctx(ctx)

	model := domain.OrganizationToModel(org)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		return tx.Create(domain.MemberToModel(owner)).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if taken, perr := r.PrefixExists(ctx, org.Prefix); perr == nil && taken {
				return ErrPrefixTaken
			}
			return ErrOrganizationExists
		}
		l.Error().Err(err).Msg("failed to create organization in db")
		return err
	}

	org.CreatedAt = model.CreatedAt
	org.UpdatedAt = model.UpdatedAt
	org.Meta = model.ToDomain().Meta
	l.Debug().Str(log.FieldOrgID, org.ID).Msg("organization created in db")
	return nil
}

func (r *GormOrganizationRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	var model domain.OrganizationModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Str(log.FieldOrgID, id).Msg("failed to get organization by id")
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// ListByUser lists the organizations userID belongs to, by name.
func (r *GormOrganizationRepository) ListByUser(ctx context.Context, userID string, req domain.ListRequest) ([]domain.OrganizationWithRole, int, error) {
	l := log.Ctx(ctx)

	query := r.db.WithContext(ctx).Model(&domain.OrganizationModel{}).
		Joins("JOIN organization_members m ON m.org_id = organizations.id").
		Where("m.user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to count organizations")
		return nil, 0, err
	}

	type row struct {
		domain.OrganizationModel
		Role string
	}
	var rows []row
	if err := query.Select("organizations.*, m.role AS role").
		Order("organizations.name ASC").
		Offset(req.Offset()).Limit(req.PageSize).
		Scan(&rows).Error; err != nil {
		l.Error().Err(err).Str(log.FieldUserID, userID).Msg("failed to list organizations")
		return nil, 0, err
	}

	orgs := make([]domain.OrganizationWithRole, len(rows))
	for i := range rows {
		orgs[i] = domain.OrganizationWithRole{
			Organization: *rows[i].OrganizationModel.ToDomain(),
			Role:         domain.MemberRole(rows[i].Role),
		}
	}
	return orgs, int(total), nil
}

func (r *GormOrganizationRepository) Update(ctx context.Context, org *domain.Organization) error {
	model := domain.OrganizationToModel(org)
	result := r.db.WithContext(ctx).Model(&domain.OrganizationModel{}).
		Where("id = ?", org.ID).
		Updates(map[string]interface{}{
			"name":             model.Name,
			"alias":            model.Alias,
			"description":      model.Description,
			"meta":             model.Meta,
			"last_modified_by": model.LastModifiedBy,
		})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrOrganizationExists
		}
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Str(log.FieldOrgID, org.ID).Msg("failed to update organization")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrganizationNotFound
	}
	return nil
}

// Delete soft-deletes the organization. Its prefix stays reserved.
func (r *GormOrganizationRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&domain.OrganizationModel{}, "id = ?", id)
	if result.Error != nil {
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Str(log.FieldOrgID, id).Msg("failed to delete organization")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrganizationNotFound
	}
	return nil
}

func (r *GormOrganizationRepository) PrefixExists(ctx context.Context, prefix string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&domain.OrganizationModel{}).
		Where("prefix = ?", prefix).
		Count(&count).Error
	return count > 0, err
}

// NameOrAliasTaken checks live and deleted organizations, matching the
// unique indexes.
func (r *GormOrganizationRepository) NameOrAliasTaken(ctx context.Context, name, alias, excludeID string) (bool, error) {
	query := r.db.WithContext(ctx).Unscoped().Model(&domain.OrganizationModel{}).
		Where("(name = ? OR alias = ?)", name, alias)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}
