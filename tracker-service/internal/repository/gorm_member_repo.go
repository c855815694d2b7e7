package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/atdaga/skrm-server/pkg/log"
	"github.com/atdaga/skrm-server/tracker-service/internal/domain"
)

// GormMemberRepository implements MemberRepository using GORM.
type GormMemberRepository struct {
	db *gorm.DB
}

func NewGormMemberRepository(db *gorm.DB) *GormMemberRepository {
	return &GormMemberRepository{db: db}
}

func (r *GormMemberRepository) Get(ctx context.Context, orgID, userID string) (*domain.Member, error) {
	var model domain.MemberModel
	result := r.db.WithContext(ctx).First(&model, "org_id = ? AND user_id = ?", orgID, userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Str(log.FieldOrgID, orgID).Str(log.FieldUserID, userID).Msg("failed to get member")
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

func (r *GormMemberRepository) List(ctx context.Context, orgID string) ([]domain.Member, error) {
	var models []domain.MemberModel
	if err := r.db.WithContext(ctx).Where("org_id = ?", orgID).Order("created_at ASC, user_id ASC").Find(&models).Error; err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldOrgID, orgID).Msg("failed to list members")
		return nil, err
	}
	members := make([]domain.Member, len(models))
	for i := range models {
		members[i] = *models[i].ToDomain()
	}
	return members, nil
}

// Upsert adds the member or updates the role of an existing one.
func (r *GormMemberRepository) Upsert(ctx context.Context, member *domain.Member) error {
	model := domain.MemberToModel(member)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "org_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldOrgID, member.OrgID).Str(log.FieldUserID, member.UserID).Msg("failed to upsert member")
		return err
	}
	member.CreatedAt = model.CreatedAt
	return nil
}

func (r *GormMemberRepository) Delete(ctx context.Context, orgID, userID string) error {
	result := r.db.WithContext(ctx).Delete(&domain.MemberModel{}, "org_id = ? AND user_id = ?", orgID, userID)
	if result.Error != nil {
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Str(log.FieldOrgID, orgID).Str(log.FieldUserID, userID).Msg("failed to delete member")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *GormMemberRepository) CountByRole(ctx context.Context, orgID string, role domain.MemberRole) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.MemberModel{}).
		Where("org_id = ? AND role = ?", orgID, string(role)).
		Count(&count).Error
	return count, err
}
