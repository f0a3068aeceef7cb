package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/hybridlms/backend/internal/apperr"
	"github.com/hybridlms/backend/internal/logger"
	"github.com/hybridlms/backend/internal/recommender"
	"github.com/hybridlms/backend/internal/repos"
	"github.com/hybridlms/backend/internal/types"
)

// Concurrency cap for batch regeneration.
const regenerateWorkers = 4

// RegenerateSummary reports the outcome of a batch regeneration run.
type RegenerateSummary struct {
	Total     int `json:"total"`
	Generated int `json:"generated"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

type RecommendationService interface {
	// Generate rebuilds the user's profile, scores the catalog and
	// atomically replaces the user's active recommendation set.
	Generate(ctx context.Context, userID uuid.UUID) ([]*types.Recommendation, error)
	List(ctx context.Context, userID uuid.UUID, filter repos.RecommendationFilter) ([]*types.Recommendation, int64, error)
	Get(ctx context.Context, userID, recommendationID uuid.UUID) (*types.Recommendation, error)
	RecordClick(ctx context.Context, userID, recommendationID uuid.UUID) (*types.Recommendation, error)
	RecordDismiss(ctx context.Context, userID, recommendationID uuid.UUID) (*types.Recommendation, error)
	RecordFeedback(ctx context.Context, userID, recommendationID uuid.UUID, feedbackType, comment string) (*types.RecommendationFeedback, error)
	ListFeedback(ctx context.Context, userID uuid.UUID) ([]*types.RecommendationFeedback, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*types.RecommendationProfile, error)
	GetSettings(ctx context.Context) (*types.RecommendationSettings, error)
	UpdateSettings(ctx context.Context, settings *types.RecommendationSettings) (*types.RecommendationSettings, error)
	// RegenerateAll refreshes every user whose active set is stale, or
	// every user when force is set.
	RegenerateAll(ctx context.Context, force bool) (*RegenerateSummary, error)
}

type recommendationService struct {
	db                 *gorm.DB
	log                *logger.Logger
	userRepo           repos.UserRepo
	courseRepo         repos.CourseRepo
	enrollmentRepo     repos.EnrollmentRepo
	interactionRepo    repos.InteractionRepo
	recommendationRepo repos.RecommendationRepo
	feedbackRepo       repos.RecommendationFeedbackRepo
	settingsRepo       repos.RecommendationSettingsRepo
	profiles           ProfileService
	fallbackWeights    recommender.Weights
}

func NewRecommendationService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	courseRepo repos.CourseRepo,
	enrollmentRepo repos.EnrollmentRepo,
	interactionRepo repos.InteractionRepo,
	recommendationRepo repos.RecommendationRepo,
	feedbackRepo repos.RecommendationFeedbackRepo,
	settingsRepo repos.RecommendationSettingsRepo,
	profiles ProfileService,
	fallbackWeights recommender.Weights,
) RecommendationService {
	serviceLog := log.With("service", "RecommendationService")
	if err := fallbackWeights.Validate(); err != nil {
		serviceLog.Warn("invalid fallback weights, using defaults", "error", err)
		fallbackWeights = recommender.DefaultWeights()
	}
	return &recommendationService{
		db:                 db,
		log:                serviceLog,
		userRepo:           userRepo,
		courseRepo:         courseRepo,
		enrollmentRepo:     enrollmentRepo,
		interactionRepo:    interactionRepo,
		recommendationRepo: recommendationRepo,
		feedbackRepo:       feedbackRepo,
		settingsRepo:       settingsRepo,
		profiles:           profiles,
		fallbackWeights:    fallbackWeights,
	}
}

func (rs *recommendationService) Generate(ctx context.Context, userID uuid.UUID) ([]*types.Recommendation, error) {
	users, err := rs.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("%w: user %s", apperr.ErrNotFound, userID)
	}

	settings, err := rs.settingsRepo.GetOrCreate(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	weights := weightsFromSettings(settings)
	if err := weights.Validate(); err != nil {
		// Bad weights are rejected at write time, so this only happens
		// after a manual database edit. Fall back rather than fail the run.
		rs.log.Warn("stored weights invalid, using fallback", "error", err)
		weights = rs.fallbackWeights
	}

	var created []*types.Recommendation
	err = rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, features, err := rs.profiles.Rebuild(ctx, tx, userID)
		if err != nil {
			return err
		}
		catalog, err := rs.buildCatalog(ctx, tx)
		if err != nil {
			return err
		}
		if len(catalog.Courses) == 0 {
			return fmt.Errorf("%w: no published courses to recommend", apperr.ErrColdStart)
		}
		exclusions, err := rs.buildExclusions(ctx, tx, userID, settings)
		if err != nil {
			return err
		}

		combiner := recommender.NewCombiner(weights, rs.log)
		ranked := combiner.Combine(features, catalog, exclusions, settings.MaxRecommendationsPerUser)

		if err := rs.recommendationRepo.ExpireActiveByUser(ctx, tx, userID); err != nil {
			return fmt.Errorf("failed to expire previous recommendations: %w", err)
		}

		now := time.Now()
		expiresAt := now.Add(time.Duration(settings.RecommendationExpiryDays) * 24 * time.Hour)
		recs := make([]*types.Recommendation, 0, len(ranked))
		for _, r := range ranked {
			courseID := r.CourseID
			reasonData, err := json.Marshal(r.ReasonData)
			if err != nil {
				return fmt.Errorf("failed to marshal reason data: %w", err)
			}
			recs = append(recs, &types.Recommendation{
				ID:                 uuid.New(),
				UserID:             userID,
				RecommendationType: types.RecommendationCourse,
				CourseID:           &courseID,
				AlgorithmUsed:      types.AlgorithmHybrid,
				Score:              r.Score,
				Reason:             r.Reason,
				ReasonData:         reasonData,
				GeneratedAt:        now,
				ExpiresAt:          expiresAt,
			})
		}
		if len(recs) > 0 {
			if _, err := rs.recommendationRepo.Create(ctx, tx, recs); err != nil {
				return fmt.Errorf("failed to store recommendations: %w", err)
			}
		}
		created = recs
		return nil
	})
	if err != nil {
		return nil, err
	}
	rs.log.Info("generated recommendations", "user_id", userID, "count", len(created))
	return created, nil
}

func (rs *recommendationService) List(ctx context.Context, userID uuid.UUID, filter repos.RecommendationFilter) ([]*types.Recommendation, int64, error) {
	return rs.recommendationRepo.ListActiveByUser(ctx, nil, userID, time.Now(), filter)
}

func (rs *recommendationService) Get(ctx context.Context, userID, recommendationID uuid.UUID) (*types.Recommendation, error) {
	rec, err := rs.recommendationRepo.GetByIDAndUser(ctx, nil, recommendationID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recommendation: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: recommendation %s", apperr.ErrNotFound, recommendationID)
	}
	return rec, nil
}

func (rs *recommendationService) RecordClick(ctx context.Context, userID, recommendationID uuid.UUID) (*types.Recommendation, error) {
	rec, err := rs.Get(ctx, userID, recommendationID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if !rec.Active(now) {
		return nil, fmt.Errorf("%w: recommendation is expired or dismissed", apperr.ErrInvalidState)
	}
	if err := rs.recommendationRepo.MarkClicked(ctx, nil, rec.ID, now); err != nil {
		return nil, fmt.Errorf("failed to record click: %w", err)
	}
	rec.IsClicked = true
	rec.ClickedAt = &now
	return rec, nil
}

func (rs *recommendationService) RecordDismiss(ctx context.Context, userID, recommendationID uuid.UUID) (*types.Recommendation, error) {
	rec, err := rs.Get(ctx, userID, recommendationID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if rec.IsDismissed {
		return nil, fmt.Errorf("%w: recommendation already dismissed", apperr.ErrInvalidState)
	}
	if !rec.Active(now) {
		return nil, fmt.Errorf("%w: recommendation is expired", apperr.ErrInvalidState)
	}
	if err := rs.recommendationRepo.MarkDismissed(ctx, nil, rec.ID, now); err != nil {
		return nil, fmt.Errorf("failed to record dismissal: %w", err)
	}
	rec.IsDismissed = true
	rec.DismissedAt = &now
	return rec, nil
}

// RecordFeedback stores the signal for offline analysis. It never feeds
// back into scoring automatically.
func (rs *recommendationService) RecordFeedback(ctx context.Context, userID, recommendationID uuid.UUID, feedbackType, comment string) (*types.RecommendationFeedback, error) {
	if !types.ValidFeedbackType(feedbackType) {
		return nil, fmt.Errorf("%w: unknown feedback type %q", apperr.ErrInvalidState, feedbackType)
	}
	if _, err := rs.Get(ctx, userID, recommendationID); err != nil {
		return nil, err
	}
	feedback := &types.RecommendationFeedback{
		ID:               uuid.New(),
		UserID:           userID,
		RecommendationID: recommendationID,
		FeedbackType:     feedbackType,
		Comment:          comment,
	}
	stored, err := rs.feedbackRepo.Upsert(ctx, nil, feedback)
	if err != nil {
		return nil, fmt.Errorf("failed to store feedback: %w", err)
	}
	rs.log.Info("recorded recommendation feedback",
		"user_id", userID, "recommendation_id", recommendationID, "feedback_type", feedbackType)
	return stored, nil
}

func (rs *recommendationService) ListFeedback(ctx context.Context, userID uuid.UUID) ([]*types.RecommendationFeedback, error) {
	return rs.feedbackRepo.ListByUser(ctx, nil, userID)
}

// GetProfile returns the materialized profile, building it on first read.
func (rs *recommendationService) GetProfile(ctx context.Context, userID uuid.UUID) (*types.RecommendationProfile, error) {
	profile, err := rs.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	if profile == nil {
		profile, _, err = rs.profiles.Rebuild(ctx, nil, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to build profile: %w", err)
		}
	}
	return profile, nil
}

func (rs *recommendationService) GetSettings(ctx context.Context) (*types.RecommendationSettings, error) {
	return rs.settingsRepo.GetOrCreate(ctx, nil)
}

func (rs *recommendationService) UpdateSettings(ctx context.Context, settings *types.RecommendationSettings) (*types.RecommendationSettings, error) {
	if settings.MaxRecommendationsPerUser <= 0 {
		return nil, fmt.Errorf("%w: max recommendations per user must be positive", apperr.ErrConfiguration)
	}
	if settings.RecommendationExpiryDays <= 0 {
		return nil, fmt.Errorf("%w: recommendation expiry days must be positive", apperr.ErrConfiguration)
	}
	if settings.RefreshIntervalHours <= 0 {
		return nil, fmt.Errorf("%w: refresh interval hours must be positive", apperr.ErrConfiguration)
	}
	if settings.DefaultAlgorithm == "" {
		settings.DefaultAlgorithm = types.AlgorithmHybrid
	}
	if err := weightsFromSettings(settings).Validate(); err != nil {
		return nil, err
	}
	return rs.settingsRepo.Update(ctx, nil, settings)
}

func (rs *recommendationService) RegenerateAll(ctx context.Context, force bool) (*RegenerateSummary, error) {
	settings, err := rs.settingsRepo.GetOrCreate(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	userIDs, err := rs.userRepo.ListIDs(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	staleBefore := time.Now().Add(-time.Duration(settings.RefreshIntervalHours) * time.Hour)
	summary := &RegenerateSummary{Total: len(userIDs)}

	var group errgroup.Group
	group.SetLimit(regenerateWorkers)
	results := make([]int, len(userIDs)) // 0 generated, 1 skipped, 2 failed

	for i, userID := range userIDs {
		i, userID := i, userID
		group.Go(func() error {
			if !force {
				latest, err := rs.recommendationRepo.LatestGeneratedAt(ctx, nil, userID)
				if err == nil && latest != nil && latest.After(staleBefore) {
					results[i] = 1
					return nil
				}
			}
			if _, err := rs.Generate(ctx, userID); err != nil {
				rs.log.Warn("regeneration failed for user", "user_id", userID, "error", err)
				results[i] = 2
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	for _, r := range results {
		switch r {
		case 0:
			summary.Generated++
		case 1:
			summary.Skipped++
		case 2:
			summary.Failed++
		}
	}
	rs.log.Info("batch regeneration finished",
		"total", summary.Total, "generated", summary.Generated,
		"skipped", summary.Skipped, "failed", summary.Failed)
	return summary, nil
}

func (rs *recommendationService) buildCatalog(ctx context.Context, tx *gorm.DB) (*recommender.Catalog, error) {
	courses, err := rs.courseRepo.ListPublished(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to load published courses: %w", err)
	}
	catalog := &recommender.Catalog{Courses: courses}
	for _, c := range courses {
		if c.EnrollmentCount > catalog.MaxEnrollment {
			catalog.MaxEnrollment = c.EnrollmentCount
		}
		if c.RecentEnrollmentCount > catalog.MaxRecentEnrollment {
			catalog.MaxRecentEnrollment = c.RecentEnrollmentCount
		}
	}

	since := time.Now().Add(-profileWindow)
	interactions, err := rs.interactionRepo.GetAllSince(ctx, tx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load interaction snapshot: %w", err)
	}
	catalog.Others = groupInteractions(interactions)
	return catalog, nil
}

func (rs *recommendationService) buildExclusions(ctx context.Context, tx *gorm.DB, userID uuid.UUID, settings *types.RecommendationSettings) (recommender.Exclusions, error) {
	exclusions := recommender.Exclusions{
		ExcludeCompleted: settings.ExcludeCompletedCourses,
		ExcludeEnrolled:  settings.ExcludeEnrolledCourses,
		Completed:        map[uuid.UUID]bool{},
		Enrolled:         map[uuid.UUID]bool{},
	}
	enrollments, err := rs.enrollmentRepo.GetByUserID(ctx, tx, userID)
	if err != nil {
		return exclusions, fmt.Errorf("failed to load enrollments: %w", err)
	}
	for _, e := range enrollments {
		if e.Status == types.EnrollmentCompleted {
			exclusions.Completed[e.CourseID] = true
		} else {
			exclusions.Enrolled[e.CourseID] = true
		}
	}
	return exclusions, nil
}

// groupInteractions folds the interaction snapshot into per-user implicit
// score sets. Completions count 1.0, enrollments 0.8, ratings of 3 or more
// count rating/5; everything else keeps the course in the set at 0 so it
// still shapes similarity.
func groupInteractions(interactions []*types.Interaction) []recommender.UserInteractions {
	byUser := map[uuid.UUID]map[uuid.UUID]float64{}
	order := []uuid.UUID{}
	for _, it := range interactions {
		scores := byUser[it.UserID]
		if scores == nil {
			scores = map[uuid.UUID]float64{}
			byUser[it.UserID] = scores
			order = append(order, it.UserID)
		}
		score := 0.0
		switch it.Type {
		case types.InteractionCompleted:
			score = 1.0
		case types.InteractionEnrolled:
			score = 0.8
		case types.InteractionRated:
			if it.Rating != nil && *it.Rating >= 3 {
				score = float64(*it.Rating) / 5.0
			}
		}
		if score > scores[it.CourseID] {
			scores[it.CourseID] = score
		} else if _, ok := scores[it.CourseID]; !ok {
			scores[it.CourseID] = 0
		}
	}
	out := make([]recommender.UserInteractions, 0, len(order))
	for _, userID := range order {
		out = append(out, recommender.UserInteractions{UserID: userID, Scores: byUser[userID]})
	}
	return out
}

func weightsFromSettings(settings *types.RecommendationSettings) recommender.Weights {
	return recommender.Weights{
		Collaborative:  settings.CollaborativeWeight,
		ContentBased:   settings.ContentBasedWeight,
		Popularity:     settings.PopularityWeight,
		KnowledgeBased: settings.KnowledgeBasedWeight,
	}
}
