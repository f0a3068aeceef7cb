package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hybridlms/backend/internal/apperr"
	"github.com/hybridlms/backend/internal/logger"
	"github.com/hybridlms/backend/internal/repos"
	"github.com/hybridlms/backend/internal/types"
)

// RecordInteractionInput is the validated payload for one user action
// against a course.
type RecordInteractionInput struct {
	UserID           uuid.UUID
	CourseID         uuid.UUID
	Type             string
	Rating           *int
	TimeSpentMinutes int
	Metadata         datatypes.JSON
	OccurredAt       time.Time
}

type InteractionService interface {
	// Record validates and upserts one interaction. A repeat of the same
	// (user, course, type) updates the stored row instead of duplicating
	// it. Rated interactions refresh the course rating aggregates.
	Record(ctx context.Context, tx *gorm.DB, input RecordInteractionInput) (*types.Interaction, error)
	ListByUser(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]*types.Interaction, error)
}

type interactionService struct {
	db              *gorm.DB
	log             *logger.Logger
	interactionRepo repos.InteractionRepo
	courseRepo      repos.CourseRepo
	gamification    GamificationService
}

func NewInteractionService(
	db *gorm.DB,
	log *logger.Logger,
	interactionRepo repos.InteractionRepo,
	courseRepo repos.CourseRepo,
	gamification GamificationService,
) InteractionService {
	serviceLog := log.With("service", "InteractionService")
	return &interactionService{
		db:              db,
		log:             serviceLog,
		interactionRepo: interactionRepo,
		courseRepo:      courseRepo,
		gamification:    gamification,
	}
}

func (is *interactionService) Record(ctx context.Context, tx *gorm.DB, input RecordInteractionInput) (*types.Interaction, error) {
	if !types.ValidInteractionType(input.Type) {
		return nil, fmt.Errorf("%w: unknown interaction type %q", apperr.ErrInvalidState, input.Type)
	}
	if input.Rating != nil {
		if input.Type != types.InteractionRated {
			return nil, fmt.Errorf("%w: rating only allowed on rated interactions", apperr.ErrInvalidState)
		}
		if *input.Rating < 1 || *input.Rating > 5 {
			return nil, fmt.Errorf("%w: rating %d outside 1..5", apperr.ErrInvalidState, *input.Rating)
		}
	}
	if input.Type == types.InteractionRated && input.Rating == nil {
		return nil, fmt.Errorf("%w: rated interaction requires a rating", apperr.ErrInvalidState)
	}
	if input.TimeSpentMinutes < 0 {
		return nil, fmt.Errorf("%w: negative time spent", apperr.ErrInvalidState)
	}

	courses, err := is.courseRepo.GetByIDs(ctx, tx, []uuid.UUID{input.CourseID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch course: %w", err)
	}
	if len(courses) == 0 {
		return nil, fmt.Errorf("%w: course %s", apperr.ErrNotFound, input.CourseID)
	}

	occurredAt := input.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	interaction := &types.Interaction{
		ID:               uuid.New(),
		UserID:           input.UserID,
		CourseID:         input.CourseID,
		Type:             input.Type,
		Rating:           input.Rating,
		TimeSpentMinutes: input.TimeSpentMinutes,
		Metadata:         input.Metadata,
		OccurredAt:       occurredAt,
	}

	run := func(tx *gorm.DB) error {
		stored, created, err := is.interactionRepo.Upsert(ctx, tx, interaction)
		if err != nil {
			return fmt.Errorf("failed to upsert interaction: %w", err)
		}
		interaction = stored
		if input.Type == types.InteractionRated {
			if err := is.courseRepo.RefreshRatingAggregates(ctx, tx, input.CourseID); err != nil {
				return fmt.Errorf("failed to refresh rating aggregates: %w", err)
			}
		}
		// Repeats of the same action refresh the log row without earning
		// points again.
		if !created {
			return nil
		}
		return is.gamification.AwardForInteraction(ctx, tx, input.UserID, input.Type)
	}

	if tx != nil {
		if err := run(tx); err != nil {
			return nil, err
		}
	} else if err := is.db.WithContext(ctx).Transaction(run); err != nil {
		return nil, err
	}
	return interaction, nil
}

func (is *interactionService) ListByUser(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]*types.Interaction, error) {
	return is.interactionRepo.GetByUserID(ctx, nil, userID, since, limit)
}
