package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/hybridlms/backend/internal/logger"
	"github.com/hybridlms/backend/internal/repos"
	"github.com/hybridlms/backend/internal/types"
)

const leaderboardKey = "points:leaderboard"

// Points granted per interaction type.
var pointsConfig = map[string]int{
	types.InteractionCompleted:  100,
	types.InteractionEnrolled:   25,
	types.InteractionRated:      10,
	types.InteractionWishlisted: 5,
	types.InteractionViewed:     2,
	types.InteractionSearched:   1,
}

func PointsFor(interactionType string) int {
	return pointsConfig[interactionType]
}

type LeaderboardEntry struct {
	Rank   int64            `json:"rank"`
	UserID uuid.UUID        `json:"user_id"`
	Points int              `json:"points"`
	Level  int              `json:"level"`
	Stats  *types.UserStats `json:"stats,omitempty"`
}

type GamificationService interface {
	// AwardForInteraction grants the configured points for an interaction
	// type inside the caller's transaction. Unknown types grant nothing.
	AwardForInteraction(ctx context.Context, tx *gorm.DB, userID uuid.UUID, interactionType string) error
	AddPoints(ctx context.Context, tx *gorm.DB, userID uuid.UUID, points int, transactionType, description string) (*types.UserStats, error)
	GetStats(ctx context.Context, userID uuid.UUID) (*types.UserStats, error)
	GetRank(ctx context.Context, userID uuid.UUID) (int64, error)
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]*types.PointsTransaction, error)
}

type gamificationService struct {
	db         *gorm.DB
	log        *logger.Logger
	redis      *redis.Client
	statsRepo  repos.UserStatsRepo
	pointsRepo repos.PointsTransactionRepo
}

func NewGamificationService(
	db *gorm.DB,
	log *logger.Logger,
	redisClient *redis.Client,
	statsRepo repos.UserStatsRepo,
	pointsRepo repos.PointsTransactionRepo,
) GamificationService {
	serviceLog := log.With("service", "GamificationService")
	return &gamificationService{
		db:         db,
		log:        serviceLog,
		redis:      redisClient,
		statsRepo:  statsRepo,
		pointsRepo: pointsRepo,
	}
}

func (gs *gamificationService) AwardForInteraction(ctx context.Context, tx *gorm.DB, userID uuid.UUID, interactionType string) error {
	points := PointsFor(interactionType)
	if points == 0 {
		return nil
	}
	_, err := gs.AddPoints(ctx, tx, userID, points, interactionType,
		fmt.Sprintf("Points for %s interaction", interactionType))
	return err
}

func (gs *gamificationService) AddPoints(ctx context.Context, tx *gorm.DB, userID uuid.UUID, points int, transactionType, description string) (*types.UserStats, error) {
	stats, err := gs.statsRepo.GetOrCreate(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user stats: %w", err)
	}

	now := time.Now()
	record := &types.PointsTransaction{
		ID:              uuid.New(),
		UserID:          userID,
		Points:          points,
		TransactionType: transactionType,
		Description:     description,
		CreatedAt:       now,
	}
	if _, err := gs.pointsRepo.Create(ctx, tx, []*types.PointsTransaction{record}); err != nil {
		return nil, fmt.Errorf("failed to record points transaction: %w", err)
	}

	stats.TotalPoints += points
	if stats.TotalPoints < 0 {
		stats.TotalPoints = 0
	}
	previousLevel := stats.CurrentLevel
	stats.CurrentLevel = types.LevelForPoints(stats.TotalPoints)
	switch transactionType {
	case types.InteractionCompleted:
		stats.CoursesCompleted++
	case types.InteractionEnrolled:
		stats.CoursesEnrolled++
	case types.InteractionViewed:
		stats.LessonsViewed++
	}
	stats.LastActivityAt = now
	stats.UpdatedAt = now
	if err := gs.statsRepo.Save(ctx, tx, stats); err != nil {
		return nil, fmt.Errorf("failed to save user stats: %w", err)
	}
	if stats.CurrentLevel > previousLevel {
		gs.log.Info("user leveled up", "user_id", userID, "level", stats.CurrentLevel)
	}

	// Leaderboard cache update is best effort; the SQL table stays the
	// source of truth.
	if gs.redis != nil {
		if err := gs.redis.ZAdd(ctx, leaderboardKey, redis.Z{
			Score:  float64(stats.TotalPoints),
			Member: userID.String(),
		}).Err(); err != nil {
			gs.log.Warn("failed to update leaderboard cache", "error", err)
		}
	}
	return stats, nil
}

func (gs *gamificationService) GetStats(ctx context.Context, userID uuid.UUID) (*types.UserStats, error) {
	return gs.statsRepo.GetOrCreate(ctx, nil, userID)
}

func (gs *gamificationService) GetRank(ctx context.Context, userID uuid.UUID) (int64, error) {
	stats, err := gs.statsRepo.GetOrCreate(ctx, nil, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load user stats: %w", err)
	}
	return gs.statsRepo.RankOf(ctx, nil, stats)
}

func (gs *gamificationService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	if gs.redis != nil {
		entries, err := gs.leaderboardFromCache(ctx, limit)
		if err == nil {
			return entries, nil
		}
		gs.log.Warn("leaderboard cache unavailable, falling back to sql", "error", err)
	}
	return gs.leaderboardFromSQL(ctx, limit)
}

func (gs *gamificationService) ListTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]*types.PointsTransaction, error) {
	return gs.pointsRepo.ListByUser(ctx, nil, userID, limit)
}

func (gs *gamificationService) leaderboardFromCache(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	members, err := gs.redis.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("leaderboard cache empty")
	}
	entries := make([]LeaderboardEntry, 0, len(members))
	for i, member := range members {
		raw, _ := member.Member.(string)
		userID, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		points := int(member.Score)
		entries = append(entries, LeaderboardEntry{
			Rank:   int64(i + 1),
			UserID: userID,
			Points: points,
			Level:  types.LevelForPoints(points),
		})
	}
	return entries, nil
}

func (gs *gamificationService) leaderboardFromSQL(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	top, err := gs.statsRepo.TopByPoints(ctx, nil, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	entries := make([]LeaderboardEntry, 0, len(top))
	for i, stats := range top {
		entries = append(entries, LeaderboardEntry{
			Rank:   int64(i + 1),
			UserID: stats.UserID,
			Points: stats.TotalPoints,
			Level:  stats.CurrentLevel,
			Stats:  stats,
		})
	}
	return entries, nil
}
