package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/hybridlms/backend/internal/handlers"
	"github.com/hybridlms/backend/internal/middleware"
)

type RouterConfig struct {
	ServiceName           string
	AllowedOrigins        []string
	AuthMiddleware        *middleware.AuthMiddleware
	HealthcheckHandler    *handlers.HealthcheckHandler
	AuthHandler           *handlers.AuthHandler
	UserHandler           *handlers.UserHandler
	CourseHandler         *handlers.CourseHandler
	InteractionHandler    *handlers.InteractionHandler
	RecommendationHandler *handlers.RecommendationHandler
	GamificationHandler   *handlers.GamificationHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-Refresh-Token"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", cfg.HealthcheckHandler.Healthcheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)

	// User
	protected.GET("/user", cfg.UserHandler.GetMe)

	// Catalog
	protected.GET("/categories", cfg.CourseHandler.ListCategories)
	protected.GET("/courses", cfg.CourseHandler.ListCourses)
	protected.GET("/courses/:id", cfg.CourseHandler.GetCourse)
	protected.POST("/courses/:id/enroll", cfg.CourseHandler.Enroll)
	protected.POST("/courses/:id/complete", cfg.CourseHandler.Complete)
	protected.GET("/enrollments", cfg.CourseHandler.ListEnrollments)

	// Interactions
	protected.POST("/interactions", cfg.InteractionHandler.Record)
	protected.GET("/interactions", cfg.InteractionHandler.List)

	// Recommendations
	protected.POST("/recommendations/generate", cfg.RecommendationHandler.Generate)
	protected.GET("/recommendations", cfg.RecommendationHandler.List)
	protected.GET("/recommendations/:id", cfg.RecommendationHandler.Get)
	protected.POST("/recommendations/:id/click", cfg.RecommendationHandler.Click)
	protected.POST("/recommendations/:id/dismiss", cfg.RecommendationHandler.Dismiss)
	protected.POST("/recommendations/:id/feedback", cfg.RecommendationHandler.Feedback)
	protected.GET("/recommendations/feedback", cfg.RecommendationHandler.ListFeedback)
	protected.GET("/recommendations/profile", cfg.RecommendationHandler.GetProfile)

	// Gamification
	protected.GET("/gamification/stats", cfg.GamificationHandler.GetStats)
	protected.GET("/gamification/leaderboard", cfg.GamificationHandler.Leaderboard)
	protected.GET("/gamification/transactions", cfg.GamificationHandler.ListTransactions)

	// ===============
	// || Instructor||
	// ===============
	instructor := protected.Group("/")
	instructor.Use(cfg.AuthMiddleware.RequireInstructor())
	instructor.POST("/courses", cfg.CourseHandler.CreateCourse)

	// ===============
	// || Admin     ||
	// ===============
	admin := protected.Group("/admin")
	admin.Use(cfg.AuthMiddleware.RequireAdmin())
	admin.POST("/categories", cfg.CourseHandler.CreateCategory)
	admin.GET("/recommendations/settings", cfg.RecommendationHandler.GetSettings)
	admin.PUT("/recommendations/settings", cfg.RecommendationHandler.UpdateSettings)
	admin.POST("/recommendations/regenerate-all", cfg.RecommendationHandler.RegenerateAll)

	return router
}
