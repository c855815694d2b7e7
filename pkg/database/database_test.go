package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type widgetModel struct {
	ID   string  `gorm:"type:varchar(36);primaryKey"`
	Name string  `gorm:"type:varchar(100);uniqueIndex"`
	Meta JSONMap `gorm:"type:text"`
}

func TestNew_SQLiteRoundTrip(t *testing.T) {
	db, err := New(&Config{
		Driver:       "sqlite",
		FilePath:     filepath.Join(t.TempDir(), "widgets.db"),
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db, &widgetModel{}))

	ctx := context.Background()
	w := &widgetModel{ID: "w1", Name: "gear", Meta: JSONMap{"teeth": float64(12)}}
	require.NoError(t, db.WithContext(ctx).Create(w).Error)

	var got widgetModel
	require.NoError(t, db.WithContext(ctx).First(&got, "id = ?", "w1").Error)
	assert.Equal(t, float64(12), got.Meta["teeth"])

	dup := &widgetModel{ID: "w2", Name: "gear"}
	err = db.WithContext(ctx).Create(dup).Error
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New(&Config{Driver: "oracle"})
	assert.Error(t, err)
}
