package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hybridlms/backend/internal/logger"
	"github.com/hybridlms/backend/internal/types"
)

type RecommendationFilter struct {
	Type             string
	Algorithm        string
	IncludeDismissed bool
	Limit            int
	Offset           int
}

type RecommendationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, recs []*types.Recommendation) ([]*types.Recommendation, error)
	GetByIDAndUser(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) (*types.Recommendation, error)
	ListActiveByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, now time.Time, filter RecommendationFilter) ([]*types.Recommendation, int64, error)
	ExpireActiveByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
	LatestGeneratedAt(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*time.Time, error)
	MarkClicked(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error
	MarkDismissed(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error
}

type recommendationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecommendationRepo(db *gorm.DB, baseLog *logger.Logger) RecommendationRepo {
	repoLog := baseLog.With("repo", "RecommendationRepo")
	return &recommendationRepo{db: db, log: repoLog}
}

func (r *recommendationRepo) Create(ctx context.Context, tx *gorm.DB, recs []*types.Recommendation) ([]*types.Recommendation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(recs) == 0 {
		return []*types.Recommendation{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *recommendationRepo) GetByIDAndUser(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) (*types.Recommendation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.Recommendation
	err := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *recommendationRepo) ListActiveByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, now time.Time, filter RecommendationFilter) ([]*types.Recommendation, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	query := transaction.WithContext(ctx).
		Model(&types.Recommendation{}).
		Where("user_id = ? AND is_expired = ? AND expires_at > ?", userID, false, now)
	if !filter.IncludeDismissed {
		query = query.Where("is_dismissed = ?", false)
	}
	if filter.Type != "" {
		query = query.Where("recommendation_type = ?", filter.Type)
	}
	if filter.Algorithm != "" {
		query = query.Where("algorithm_used = ?", filter.Algorithm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var results []*types.Recommendation
	if err := query.
		Preload("Course").
		Order("score DESC, id ASC").
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *recommendationRepo) ExpireActiveByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Recommendation{}).
		Where("user_id = ? AND is_expired = ?", userID, false).
		Update("is_expired", true).Error
}

func (r *recommendationRepo) LatestGeneratedAt(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*time.Time, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.Recommendation
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("generated_at DESC").
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result.GeneratedAt, nil
}

func (r *recommendationRepo) MarkClicked(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Recommendation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_clicked": true,
			"clicked_at": at,
		}).Error
}

func (r *recommendationRepo) MarkDismissed(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Recommendation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_dismissed": true,
			"dismissed_at": at,
		}).Error
}
