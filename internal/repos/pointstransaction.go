package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hybridlms/backend/internal/logger"
	"github.com/hybridlms/backend/internal/types"
)

type PointsTransactionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, transactions []*types.PointsTransaction) ([]*types.PointsTransaction, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.PointsTransaction, error)
}

type pointsTransactionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPointsTransactionRepo(db *gorm.DB, baseLog *logger.Logger) PointsTransactionRepo {
	repoLog := baseLog.With("repo", "PointsTransactionRepo")
	return &pointsTransactionRepo{db: db, log: repoLog}
}

func (r *pointsTransactionRepo) Create(ctx context.Context, tx *gorm.DB, transactions []*types.PointsTransaction) ([]*types.PointsTransaction, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(transactions) == 0 {
		return []*types.PointsTransaction{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

func (r *pointsTransactionRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.PointsTransaction, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.PointsTransaction
	if userID == uuid.Nil {
		return results, nil
	}
	query := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
