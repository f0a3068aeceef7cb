package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hybridlms/backend/internal/logger"
	"github.com/hybridlms/backend/internal/types"
)

type InteractionRepo interface {
	// Upsert reports whether it inserted a new row; a repeat of the same
	// (user, course, type) refreshes the stored row instead.
	Upsert(ctx context.Context, tx *gorm.DB, interaction *types.Interaction) (*types.Interaction, bool, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time, limit int) ([]*types.Interaction, error)
	GetAllSince(ctx context.Context, tx *gorm.DB, since time.Time) ([]*types.Interaction, error)
}

type interactionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInteractionRepo(db *gorm.DB, baseLog *logger.Logger) InteractionRepo {
	repoLog := baseLog.With("repo", "InteractionRepo")
	return &interactionRepo{db: db, log: repoLog}
}

// Upsert keeps the log at one row per (user, course, type); repeating an
// action refreshes the existing row instead of appending.
func (r *interactionRepo) Upsert(ctx context.Context, tx *gorm.DB, interaction *types.Interaction) (*types.Interaction, bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var existing types.Interaction
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND course_id = ? AND type = ?",
			interaction.UserID, interaction.CourseID, interaction.Type).
		First(&existing).Error
	created := err == gorm.ErrRecordNotFound
	if err != nil && !created {
		return nil, false, err
	}
	if !created {
		// Keep the stored row's identity; only the payload refreshes.
		interaction.ID = existing.ID
		interaction.CreatedAt = existing.CreatedAt
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "course_id"}, {Name: "type"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"rating", "time_spent_minutes", "metadata", "occurred_at", "updated_at",
			}),
		}).
		Create(interaction).Error; err != nil {
		return nil, false, err
	}
	return interaction, created, nil
}

func (r *interactionRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time, limit int) ([]*types.Interaction, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Interaction
	if userID == uuid.Nil {
		return results, nil
	}
	query := transaction.WithContext(ctx).
		Where("user_id = ? AND occurred_at >= ?", userID, since).
		Order("occurred_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *interactionRepo) GetAllSince(ctx context.Context, tx *gorm.DB, since time.Time) ([]*types.Interaction, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Interaction
	if err := transaction.WithContext(ctx).
		Where("occurred_at >= ?", since).
		Order("occurred_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
