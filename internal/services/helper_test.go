package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hybridlms/backend/internal/db"
	"github.com/hybridlms/backend/internal/logger"
	"github.com/hybridlms/backend/internal/recommender"
	"github.com/hybridlms/backend/internal/repos"
	"github.com/hybridlms/backend/internal/types"
)

type testEnv struct {
	db *gorm.DB

	userRepo           repos.UserRepo
	courseRepo         repos.CourseRepo
	enrollmentRepo     repos.EnrollmentRepo
	interactionRepo    repos.InteractionRepo
	recommendationRepo repos.RecommendationRepo

	auth            AuthService
	users           UserService
	courses         CourseService
	interactions    InteractionService
	profiles        ProfileService
	recommendations RecommendationService
	gamification    GamificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	// Single connection keeps concurrent batch runs from tripping over
	// sqlite write locks.
	if sqlDB, err := gormDB.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := gormDB.AutoMigrate(db.Models()...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	log := logger.NewNop()
	userRepo := repos.NewUserRepo(gormDB, log)
	tokenRepo := repos.NewUserTokenRepo(gormDB, log)
	categoryRepo := repos.NewCategoryRepo(gormDB, log)
	courseRepo := repos.NewCourseRepo(gormDB, log)
	enrollmentRepo := repos.NewEnrollmentRepo(gormDB, log)
	interactionRepo := repos.NewInteractionRepo(gormDB, log)
	profileRepo := repos.NewRecommendationProfileRepo(gormDB, log)
	recommendationRepo := repos.NewRecommendationRepo(gormDB, log)
	feedbackRepo := repos.NewRecommendationFeedbackRepo(gormDB, log)
	settingsRepo := repos.NewRecommendationSettingsRepo(gormDB, log)
	statsRepo := repos.NewUserStatsRepo(gormDB, log)
	pointsRepo := repos.NewPointsTransactionRepo(gormDB, log)

	gamification := NewGamificationService(gormDB, log, nil, statsRepo, pointsRepo)
	interactions := NewInteractionService(gormDB, log, interactionRepo, courseRepo, gamification)
	courses := NewCourseService(gormDB, log, categoryRepo, courseRepo, enrollmentRepo, interactions)
	profiles := NewProfileService(gormDB, log, interactionRepo, courseRepo, profileRepo)
	recommendations := NewRecommendationService(gormDB, log,
		userRepo, courseRepo, enrollmentRepo, interactionRepo,
		recommendationRepo, feedbackRepo, settingsRepo, profiles,
		recommender.DefaultWeights())
	auth := NewAuthService(gormDB, log, userRepo, tokenRepo, "test-secret", 15*time.Minute, 24*time.Hour)
	users := NewUserService(gormDB, log, userRepo)

	return &testEnv{
		db:                 gormDB,
		userRepo:           userRepo,
		courseRepo:         courseRepo,
		enrollmentRepo:     enrollmentRepo,
		interactionRepo:    interactionRepo,
		recommendationRepo: recommendationRepo,
		auth:               auth,
		users:              users,
		courses:            courses,
		interactions:       interactions,
		profiles:           profiles,
		recommendations:    recommendations,
		gamification:       gamification,
	}
}

func (env *testEnv) createUser(t *testing.T, email string) *types.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  string(hashed),
		FirstName: "Test",
		LastName:  "User",
		Role:      types.RoleStudent,
	}
	if err := env.db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func (env *testEnv) createCategory(t *testing.T, name string) *types.Category {
	t.Helper()
	category := &types.Category{ID: uuid.New(), Name: name, Slug: strings.ToLower(strings.ReplaceAll(name, " ", "-"))}
	if err := env.db.Create(category).Error; err != nil {
		t.Fatalf("failed to create category: %v", err)
	}
	return category
}

func (env *testEnv) createCourse(t *testing.T, category *types.Category, instructor *types.User, title, difficulty, style string) *types.Course {
	t.Helper()
	course := &types.Course{
		ID:              uuid.New(),
		InstructorID:    instructor.ID,
		Title:           title,
		DifficultyLevel: difficulty,
		LearningStyle:   style,
		IsPublished:     true,
	}
	if category != nil {
		course.CategoryID = &category.ID
	}
	if err := env.db.Create(course).Error; err != nil {
		t.Fatalf("failed to create course: %v", err)
	}
	return course
}

func (env *testEnv) record(t *testing.T, userID, courseID uuid.UUID, interactionType string, rating *int) {
	t.Helper()
	_, err := env.interactions.Record(context.Background(), nil, RecordInteractionInput{
		UserID:   userID,
		CourseID: courseID,
		Type:     interactionType,
		Rating:   rating,
	})
	if err != nil {
		t.Fatalf("failed to record %s interaction: %v", interactionType, err)
	}
}

func intPtr(v int) *int { return &v }

func testUUID() uuid.UUID { return uuid.New() }
