package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/siftbridge/internal/settings/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Get(ctx context.Context, key string) (string, error) {
	var setting domain.Setting
	err := r.db.WithContext(ctx).Where("key = ?", key).Limit(1).Find(&setting).Error
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (r *repo) Set(ctx context.Context, key, value string) error {
	setting := domain.Setting{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&setting).Error
}
