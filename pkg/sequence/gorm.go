// Package sequence provides persistent scopedid.Allocator backends.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/atdaga/skrm-server/pkg/log"
	"github.com/atdaga/skrm-server/pkg/scopedid"
)

// CounterModel is the GORM model for the sequence_counters table. One row
// per (organization, kind) holds the last number handed out.
type CounterModel struct {
	OrgID     string    `gorm:"type:varchar(36);primaryKey"`
	Kind      string    `gorm:"type:varchar(32);primaryKey"`
	LastValue int64     `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (CounterModel) TableName() string {
	return "sequence_counters"
}

// errExhausted aborts the allocation transaction.
var errExhausted = errors.New("sequence exhausted")

// GormAllocator allocates numbers from a counter table. Each allocation is
// a single conditional UPDATE, so concurrent callers on any connection
// serialize on the row and never observe the same value.
type GormAllocator struct {
	db *gorm.DB
}

// NewGormAllocator creates a GormAllocator. The caller migrates
// CounterModel.
func NewGormAllocator(db *gorm.DB) *GormAllocator {
	return &GormAllocator{db: db}
}

func (a *GormAllocator) Allocate(ctx context.Context, org uuid.UUID, kind scopedid.Kind) (int64, error) {
	l := log.Ctx(ctx)

	var next int64
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := CounterModel{OrgID: org.String(), Kind: string(kind), UpdatedAt: time.Now().UTC()}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return fmt.Errorf("failed to seed counter: %w", err)
		}

		result := tx.Model(&CounterModel{}).
			Where("org_id = ? AND kind = ? AND last_value < ?", org.String(), string(kind), scopedid.MaxSequence).
			Updates(map[string]interface{}{
				"last_value": gorm.Expr("last_value + 1"),
				"updated_at": time.Now().UTC(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to increment counter: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return errExhausted
		}

		var row CounterModel
		if err := tx.Where("org_id = ? AND kind = ?", org.String(), string(kind)).Take(&row).Error; err != nil {
			return fmt.Errorf("failed to read counter: %w", err)
		}
		next = row.LastValue
		return nil
	})
	if errors.Is(err, errExhausted) {
		l.Warn().Str(log.FieldOrgID, org.String()).Str(log.FieldKind, string(kind)).Msg("sequence exhausted")
		return 0, &scopedid.ExhaustedNamespaceError{Kind: kind, Organization: org}
	}
	if err != nil {
		l.Error().Err(err).Str(log.FieldOrgID, org.String()).Str(log.FieldKind, string(kind)).Msg("failed to allocate sequence number")
		return 0, err
	}

	l.Debug().Str(log.FieldOrgID, org.String()).Str(log.FieldKind, string(kind)).Int64(log.FieldSequence, next).Msg("sequence number allocated")
	return next, nil
}

// Current returns the last number issued for the pair, 0 if none.
func (a *GormAllocator) Current(ctx context.Context, org uuid.UUID, kind scopedid.Kind) (int64, error) {
	var row CounterModel
	err := a.db.WithContext(ctx).Where("org_id = ? AND kind = ?", org.String(), string(kind)).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.LastValue, nil
}

// Seed raises the counter to at least last. Used when importing entities
// numbered elsewhere so that new numbers continue after them.
func (a *GormAllocator) Seed(ctx context.Context, org uuid.UUID, kind scopedid.Kind, last int64) error {
	if last < 0 || last > scopedid.MaxSequence {
		return &scopedid.InvalidSequenceNumberError{
			Kind:      kind,
			Namespace: scopedid.PrefixOf(org),
			Value:     last,
			Min:       0,
			Max:       scopedid.MaxSequence,
		}
	}

	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := CounterModel{OrgID: org.String(), Kind: string(kind), UpdatedAt: time.Now().UTC()}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return err
		}
		return tx.Model(&CounterModel{}).
			Where("org_id = ? AND kind = ? AND last_value < ?", org.String(), string(kind), last).
			Updates(map[string]interface{}{"last_value": last, "updated_at": time.Now().UTC()}).Error
	})
}
