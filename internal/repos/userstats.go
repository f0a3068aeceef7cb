package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hybridlms/backend/internal/logger"
	"github.com/hybridlms/backend/internal/types"
)

type UserStatsRepo interface {
	GetOrCreate(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserStats, error)
	Save(ctx context.Context, tx *gorm.DB, stats *types.UserStats) error
	// TopByPoints orders by points descending; ties break by earlier
	// last activity, then by user id ascending, so ranks are stable.
	TopByPoints(ctx context.Context, tx *gorm.DB, limit int) ([]*types.UserStats, error)
	RankOf(ctx context.Context, tx *gorm.DB, stats *types.UserStats) (int64, error)
}

type userStatsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserStatsRepo(db *gorm.DB, baseLog *logger.Logger) UserStatsRepo {
	repoLog := baseLog.With("repo", "UserStatsRepo")
	return &userStatsRepo{db: db, log: repoLog}
}

func (r *userStatsRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserStats, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.UserStats
	err := transaction.WithContext(ctx).Where("user_id = ?", userID).First(&result).Error
	if err == nil {
		return &result, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	now := time.Now()
	created := &types.UserStats{
		ID:             uuid.New(),
		UserID:         userID,
		CurrentLevel:   1,
		LastActivityAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := transaction.WithContext(ctx).Create(created).Error; err != nil {
		return nil, err
	}
	return created, nil
}

func (r *userStatsRepo) Save(ctx context.Context, tx *gorm.DB, stats *types.UserStats) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(stats).Error
}

func (r *userStatsRepo) TopByPoints(ctx context.Context, tx *gorm.DB, limit int) ([]*types.UserStats, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.UserStats
	query := transaction.WithContext(ctx).
		Order("total_points DESC, last_activity_at ASC, user_id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userStatsRepo) RankOf(ctx context.Context, tx *gorm.DB, stats *types.UserStats) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var higher int64
	err := transaction.WithContext(ctx).
		Model(&types.UserStats{}).
		Where("total_points > ? OR (total_points = ? AND last_activity_at < ?) OR (total_points = ? AND last_activity_at = ? AND user_id < ?)",
			stats.TotalPoints, stats.TotalPoints, stats.LastActivityAt,
			stats.TotalPoints, stats.LastActivityAt, stats.UserID).
		Count(&higher).Error
	if err != nil {
		return 0, err
	}
	return higher + 1, nil
}
