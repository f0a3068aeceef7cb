package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hybridlms/backend/internal/logger"
	"github.com/hybridlms/backend/internal/types"
)

type RecommendationFeedbackRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, feedback *types.RecommendationFeedback) (*types.RecommendationFeedback, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.RecommendationFeedback, error)
	ListByRecommendation(ctx context.Context, tx *gorm.DB, recommendationID uuid.UUID) ([]*types.RecommendationFeedback, error)
}

type recommendationFeedbackRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecommendationFeedbackRepo(db *gorm.DB, baseLog *logger.Logger) RecommendationFeedbackRepo {
	repoLog := baseLog.With("repo", "RecommendationFeedbackRepo")
	return &recommendationFeedbackRepo{db: db, log: repoLog}
}

// Upsert keeps one feedback row per (user, recommendation); a second
// submission overwrites the first.
func (r *recommendationFeedbackRepo) Upsert(ctx context.Context, tx *gorm.DB, feedback *types.RecommendationFeedback) (*types.RecommendationFeedback, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "recommendation_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"feedback_type", "comment", "updated_at"}),
		}).
		Create(feedback).Error; err != nil {
		return nil, err
	}
	return feedback, nil
}

func (r *recommendationFeedbackRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.RecommendationFeedback, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.RecommendationFeedback
	if userID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *recommendationFeedbackRepo) ListByRecommendation(ctx context.Context, tx *gorm.DB, recommendationID uuid.UUID) ([]*types.RecommendationFeedback, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.RecommendationFeedback
	if err := transaction.WithContext(ctx).
		Where("recommendation_id = ?", recommendationID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
