package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hybridlms/backend/internal/db"
	"github.com/hybridlms/backend/internal/handlers"
	"github.com/hybridlms/backend/internal/logger"
	"github.com/hybridlms/backend/internal/middleware"
	"github.com/hybridlms/backend/internal/observability"
	"github.com/hybridlms/backend/internal/recommender"
	"github.com/hybridlms/backend/internal/repos"
	"github.com/hybridlms/backend/internal/server"
	"github.com/hybridlms/backend/internal/services"
	"github.com/hybridlms/backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	serverPort := utils.GetEnv("SERVER_PORT", "8080", log)
	allowedOrigins := strings.Split(utils.GetEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173", log), ",")
	schedulerEnabled := utils.GetEnvAsBool("SCHEDULER_ENABLED", true, log)

	// Tracing
	shutdownOTel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "hybridlms-backend",
		Environment: utils.GetEnv("DEPLOY_ENV", "development", log),
		Version:     utils.GetEnv("SERVICE_VERSION", "dev", log),
	})
	if shutdownOTel != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownOTel(ctx); err != nil {
				log.Warn("OTel shutdown failed", "error", err)
			}
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Redis (optional, leaderboard cache only)
	redisService, err := db.NewRedisService(log)
	if err != nil {
		log.Warn("Redis unavailable, leaderboard falls back to SQL", "error", err)
	}

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	categoryRepo := repos.NewCategoryRepo(thePG, log)
	courseRepo := repos.NewCourseRepo(thePG, log)
	enrollmentRepo := repos.NewEnrollmentRepo(thePG, log)
	interactionRepo := repos.NewInteractionRepo(thePG, log)
	profileRepo := repos.NewRecommendationProfileRepo(thePG, log)
	recommendationRepo := repos.NewRecommendationRepo(thePG, log)
	feedbackRepo := repos.NewRecommendationFeedbackRepo(thePG, log)
	settingsRepo := repos.NewRecommendationSettingsRepo(thePG, log)
	statsRepo := repos.NewUserStatsRepo(thePG, log)
	pointsRepo := repos.NewPointsTransactionRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, jwtSecretKey,
		time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	userService := services.NewUserService(thePG, log, userRepo)
	gamificationService := services.NewGamificationService(thePG, log, redisService.Client(), statsRepo, pointsRepo)
	interactionService := services.NewInteractionService(thePG, log, interactionRepo, courseRepo, gamificationService)
	courseService := services.NewCourseService(thePG, log, categoryRepo, courseRepo, enrollmentRepo, interactionService)
	profileService := services.NewProfileService(thePG, log, interactionRepo, courseRepo, profileRepo)
	fallbackWeights := recommender.DefaultWeights()
	if weightsFile := utils.GetEnv("RECOMMENDER_WEIGHTS_FILE", "", log); weightsFile != "" {
		if loaded, err := recommender.LoadWeightsFile(weightsFile); err != nil {
			log.Warn("Failed to load weights file, using defaults", "path", weightsFile, "error", err)
		} else {
			fallbackWeights = loaded
		}
	}
	recommendationService := services.NewRecommendationService(thePG, log,
		userRepo, courseRepo, enrollmentRepo, interactionRepo,
		recommendationRepo, feedbackRepo, settingsRepo, profileService,
		fallbackWeights)

	// Scheduler
	if schedulerEnabled {
		scheduler := services.NewScheduler(log, recommendationService)
		if err := scheduler.Start(); err != nil {
			log.Error("Failed to start scheduler", "error", err)
			os.Exit(1)
		}
		defer scheduler.Stop()
	}

	// Handlers
	log.Info("Setting up handlers from main...")
	healthcheckHandler := handlers.NewHealthcheckHandler()
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	courseHandler := handlers.NewCourseHandler(courseService)
	interactionHandler := handlers.NewInteractionHandler(interactionService)
	recommendationHandler := handlers.NewRecommendationHandler(recommendationService)
	gamificationHandler := handlers.NewGamificationHandler(gamificationService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	router := server.NewRouter(server.RouterConfig{
		ServiceName:           "hybridlms-backend",
		AllowedOrigins:        allowedOrigins,
		AuthMiddleware:        authMiddleware,
		HealthcheckHandler:    healthcheckHandler,
		AuthHandler:           authHandler,
		UserHandler:           userHandler,
		CourseHandler:         courseHandler,
		InteractionHandler:    interactionHandler,
		RecommendationHandler: recommendationHandler,
		GamificationHandler:   gamificationHandler,
	})

	log.Info("Starting server...", "port", serverPort)
	if err := router.Run(":" + serverPort); err != nil {
		log.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
