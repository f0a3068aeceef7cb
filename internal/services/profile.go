package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hybridlms/backend/internal/logger"
	"github.com/hybridlms/backend/internal/recommender"
	"github.com/hybridlms/backend/internal/repos"
	"github.com/hybridlms/backend/internal/types"
)

// Interaction window feeding profile rebuilds.
const (
	profileWindow          = 365 * 24 * time.Hour
	profileInteractionsCap = 1000
)

type ProfileService interface {
	// Rebuild recomputes the materialized profile from the interaction
	// window and persists it. The returned features feed the scoring
	// algorithms directly so a generation run reads its own snapshot.
	Rebuild(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.RecommendationProfile, *recommender.UserFeatures, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*types.RecommendationProfile, error)
}

type profileService struct {
	db              *gorm.DB
	log             *logger.Logger
	interactionRepo repos.InteractionRepo
	courseRepo      repos.CourseRepo
	profileRepo     repos.RecommendationProfileRepo
}

func NewProfileService(
	db *gorm.DB,
	log *logger.Logger,
	interactionRepo repos.InteractionRepo,
	courseRepo repos.CourseRepo,
	profileRepo repos.RecommendationProfileRepo,
) ProfileService {
	serviceLog := log.With("service", "ProfileService")
	return &profileService{
		db:              db,
		log:             serviceLog,
		interactionRepo: interactionRepo,
		courseRepo:      courseRepo,
		profileRepo:     profileRepo,
	}
}

func (ps *profileService) Rebuild(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.RecommendationProfile, *recommender.UserFeatures, error) {
	since := time.Now().Add(-profileWindow)
	interactions, err := ps.interactionRepo.GetByUserID(ctx, tx, userID, since, profileInteractionsCap)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load interaction window: %w", err)
	}
	courses, err := ps.courseRepo.ListPublished(ctx, tx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load course catalog: %w", err)
	}

	features := recommender.BuildFeatures(userID, interactions, courses)

	var lastActive time.Time
	for _, it := range interactions {
		if it.OccurredAt.After(lastActive) {
			lastActive = it.OccurredAt
		}
	}
	if lastActive.IsZero() {
		lastActive = time.Now()
	}

	profile := &types.RecommendationProfile{
		ID:                   uuid.New(),
		UserID:               userID,
		LastActiveAt:         lastActive,
		TotalLearningMinutes: features.TotalLearningMinutes,
	}
	if profile.PreferredCategoryIDs, err = marshalJSON(features.PreferredCategoryIDs); err != nil {
		return nil, nil, err
	}
	if profile.PreferredDifficultyLevels, err = marshalJSON(features.PreferredDifficulties); err != nil {
		return nil, nil, err
	}
	if profile.PreferredLearningStyles, err = marshalJSON(features.PreferredStyles); err != nil {
		return nil, nil, err
	}
	if profile.CompletedCourseIDs, err = marshalJSON(features.CompletedCourseIDs); err != nil {
		return nil, nil, err
	}
	if profile.ViewedCourseIDs, err = marshalJSON(features.ViewedCourseIDs); err != nil {
		return nil, nil, err
	}
	if profile.FeatureVector, err = marshalJSON(features.FeatureVector); err != nil {
		return nil, nil, err
	}

	stored, err := ps.profileRepo.Upsert(ctx, tx, profile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to persist profile: %w", err)
	}
	return stored, features, nil
}

func (ps *profileService) GetByUserID(ctx context.Context, userID uuid.UUID) (*types.RecommendationProfile, error) {
	return ps.profileRepo.GetByUserID(ctx, nil, userID)
}

func marshalJSON(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile field: %w", err)
	}
	return raw, nil
}
