package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/hybridlms/backend/internal/logger"
	"github.com/hybridlms/backend/internal/types"
)

type RecommendationSettingsRepo interface {
	GetOrCreate(ctx context.Context, tx *gorm.DB) (*types.RecommendationSettings, error)
	Update(ctx context.Context, tx *gorm.DB, settings *types.RecommendationSettings) (*types.RecommendationSettings, error)
}

type recommendationSettingsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecommendationSettingsRepo(db *gorm.DB, baseLog *logger.Logger) RecommendationSettingsRepo {
	repoLog := baseLog.With("repo", "RecommendationSettingsRepo")
	return &recommendationSettingsRepo{db: db, log: repoLog}
}

func (r *recommendationSettingsRepo) GetOrCreate(ctx context.Context, tx *gorm.DB) (*types.RecommendationSettings, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.RecommendationSettings
	err := transaction.WithContext(ctx).Where("id = ?", 1).First(&result).Error
	if err == nil {
		return &result, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	seeded := types.DefaultRecommendationSettings()
	if err := transaction.WithContext(ctx).Create(seeded).Error; err != nil {
		return nil, err
	}
	return seeded, nil
}

func (r *recommendationSettingsRepo) Update(ctx context.Context, tx *gorm.DB, settings *types.RecommendationSettings) (*types.RecommendationSettings, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	settings.ID = 1
	if err := transaction.WithContext(ctx).Save(settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}
