package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/bitwiseee/superstudy-backend/internal/handlers"
	"github.com/bitwiseee/superstudy-backend/internal/middleware"
)

type RouterConfig struct {
	AuthMiddleware   *middleware.AuthMiddleware
	AuthHandler      *handlers.AuthHandler
	ProfileHandler   *handlers.UserProfileHandler
	DocumentHandler  *handlers.DocumentHandler
	ChatHandler      *handlers.ChatHandler
	SummaryHandler   *handlers.SummaryHandler
	FlashcardHandler *handlers.FlashcardHandler
	QuizHandler      *handlers.QuizHandler
	DashboardHandler *handlers.DashboardHandler
	HealthHandler    *handlers.HealthHandler
	MediaRoot        string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware("superstudy-backend"))

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", cfg.HealthHandler.Healthcheck)
	router.Static("/media", cfg.MediaRoot)

	api := router.Group("/api")
	api.POST("/register", cfg.AuthHandler.Register)
	api.POST("/login", cfg.AuthHandler.Login)
	api.GET("/leaderboard/", cfg.DashboardHandler.Leaderboard)

	// ===============
	// || Protected ||
	// ===============
	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Profile
	protected.GET("/profile/", cfg.ProfileHandler.GetProfile)
	protected.PUT("/profile/", cfg.ProfileHandler.UpdateLanguage)
	protected.POST("/profile/avatar/", cfg.ProfileHandler.UploadAvatar)
	// Documents
	protected.POST("/upload/", cfg.DocumentHandler.Upload)
	protected.GET("/documents/", cfg.DocumentHandler.List)
	protected.GET("/documents/:id/", cfg.DocumentHandler.Get)
	protected.DELETE("/documents/:id/", cfg.DocumentHandler.Delete)
	// Chat
	protected.POST("/chat/ask/", cfg.ChatHandler.Ask)
	protected.GET("/chat/history/:document_id/", cfg.ChatHandler.History)
	protected.POST("/chat/:id/audio/", cfg.ChatHandler.GenerateAudio)
	// Summaries
	protected.POST("/summaries/generate/", cfg.SummaryHandler.Generate)
	protected.GET("/summaries/:document_id/", cfg.SummaryHandler.Get)
	// Flashcards
	protected.POST("/flashcards/generate/", cfg.FlashcardHandler.Generate)
	protected.GET("/flashcards/:document_id/", cfg.FlashcardHandler.List)
	// Quizzes
	protected.POST("/quizzes/generate/", cfg.QuizHandler.Generate)
	protected.GET("/quizzes/:id/", cfg.QuizHandler.Get)
	protected.GET("/quizzes/document/:document_id/", cfg.QuizHandler.ListByDocument)
	protected.POST("/quizzes/submit/", cfg.QuizHandler.Submit)
	// Dashboard
	protected.GET("/dashboard/", cfg.DashboardHandler.Dashboard)

	return router
}
