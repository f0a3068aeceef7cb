package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hybridlms/backend/internal/logger"
	"github.com/hybridlms/backend/internal/types"
)

type RecommendationProfileRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, profile *types.RecommendationProfile) (*types.RecommendationProfile, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.RecommendationProfile, error)
}

type recommendationProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecommendationProfileRepo(db *gorm.DB, baseLog *logger.Logger) RecommendationProfileRepo {
	repoLog := baseLog.With("repo", "RecommendationProfileRepo")
	return &recommendationProfileRepo{db: db, log: repoLog}
}

func (r *recommendationProfileRepo) Upsert(ctx context.Context, tx *gorm.DB, profile *types.RecommendationProfile) (*types.RecommendationProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"preferred_category_ids", "preferred_difficulty_levels",
				"preferred_learning_styles", "completed_course_ids",
				"viewed_course_ids", "feature_vector", "last_active_at",
				"total_learning_minutes", "updated_at",
			}),
		}).
		Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *recommendationProfileRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.RecommendationProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.RecommendationProfile
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}
