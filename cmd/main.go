package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/bitwiseee/superstudy-backend/internal/cache"
	"github.com/bitwiseee/superstudy-backend/internal/db"
	"github.com/bitwiseee/superstudy-backend/internal/handlers"
	"github.com/bitwiseee/superstudy-backend/internal/languages"
	"github.com/bitwiseee/superstudy-backend/internal/media"
	"github.com/bitwiseee/superstudy-backend/internal/middleware"
	"github.com/bitwiseee/superstudy-backend/internal/observability"
	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
	"github.com/bitwiseee/superstudy-backend/internal/repos"
	"github.com/bitwiseee/superstudy-backend/internal/server"
	"github.com/bitwiseee/superstudy-backend/internal/services"
	"github.com/bitwiseee/superstudy-backend/internal/utils"
)

func main() {
	// Env files are optional; deployments set the environment directly.
	_ = godotenv.Load()

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

	// Tracing
	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "superstudy-backend",
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "", log),
	})
	if otelShutdown != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(ctx)
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
	gdb := postgresService.DB()

	// Media store
	store, err := media.NewStore(utils.GetEnv("MEDIA_ROOT", "./media", log), log)
	if err != nil {
		log.Error("Could not init media store", "error", err)
		os.Exit(1)
	}

	// Languages
	langs, err := languages.NewRegistry()
	if err != nil {
		log.Error("Could not load language registry", "error", err)
		os.Exit(1)
	}

	// Cache
	responseCache := buildCache(log)

	// Repos
	log.Info("Setting up repos from main...")
	userRepo := repos.NewUserRepo(gdb, log)
	profileRepo := repos.NewUserProfileRepo(gdb, log)
	progressRepo := repos.NewUserProgressRepo(gdb, log)
	docRepo := repos.NewDocumentRepo(gdb, log)
	summaryRepo := repos.NewSummaryRepo(gdb, log)
	flashcardRepo := repos.NewFlashcardRepo(gdb, log)
	quizRepo := repos.NewQuizRepo(gdb, log)
	questionRepo := repos.NewQuizQuestionRepo(gdb, log)
	attemptRepo := repos.NewQuizAttemptRepo(gdb, log)
	chatRepo := repos.NewChatRepo(gdb, log)

	// Services
	log.Info("Setting up services from main...")
	avatarService := services.NewAvatarService(store, userRepo, log)
	authService := services.NewAuthService(gdb, userRepo, profileRepo, progressRepo, avatarService, langs, log)
	profileService := services.NewUserProfileService(profileRepo, userRepo, avatarService, langs, log)
	progressService := services.NewProgressService(progressRepo, log)
	extractor := services.NewTextExtractor(log)
	documentService := services.NewDocumentService(docRepo, summaryRepo, flashcardRepo, quizRepo, chatRepo, profileRepo, progressService, extractor, store, langs, log)
	geminiClient := services.NewGeminiClient(log)
	aiService := services.NewAIService(geminiClient, responseCache, langs, log)
	ttsClient := services.NewTTSClient(log)
	audioService := services.NewAudioService(ttsClient, store, langs, log)
	chatService := services.NewChatService(chatRepo, docRepo, profileRepo, progressService, aiService, audioService, langs, log)
	summaryService := services.NewSummaryService(summaryRepo, docRepo, profileRepo, progressService, aiService, langs, log)
	flashcardService := services.NewFlashcardService(gdb, flashcardRepo, docRepo, profileRepo, progressService, aiService, langs, log)
	quizService := services.NewQuizService(gdb, quizRepo, questionRepo, attemptRepo, docRepo, profileRepo, progressService, aiService, langs, log)
	dashboardService := services.NewDashboardService(progressService, progressRepo, docRepo, chatRepo, attemptRepo, log)

	// Stale chat audio is swept once at startup rather than on a timer.
	maxAgeDays := utils.GetEnvAsInt("AUDIO_MAX_AGE_DAYS", 7, log)
	if removed := audioService.CleanupOldAudio(time.Duration(maxAgeDays) * 24 * time.Hour); removed > 0 {
		log.Info("Removed stale audio files", "count", removed)
	}

	// Handlers
	log.Info("Setting up handlers from main...")
	healthHandler := handlers.NewHealthHandler(gdb)
	authHandler := handlers.NewAuthHandler(log, authService)
	profileHandler := handlers.NewUserProfileHandler(log, profileService)
	documentHandler := handlers.NewDocumentHandler(log, documentService, store)
	chatHandler := handlers.NewChatHandler(log, chatService, store)
	summaryHandler := handlers.NewSummaryHandler(log, summaryService)
	flashcardHandler := handlers.NewFlashcardHandler(log, flashcardService)
	quizHandler := handlers.NewQuizHandler(log, quizService)
	dashboardHandler := handlers.NewDashboardHandler(log, dashboardService, store)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthMiddleware:   authMiddleware,
		AuthHandler:      authHandler,
		ProfileHandler:   profileHandler,
		DocumentHandler:  documentHandler,
		ChatHandler:      chatHandler,
		SummaryHandler:   summaryHandler,
		FlashcardHandler: flashcardHandler,
		QuizHandler:      quizHandler,
		DashboardHandler: dashboardHandler,
		HealthHandler:    healthHandler,
		MediaRoot:        store.Root(),
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func buildCache(log *logger.Logger) cache.Cache {
	backend := strings.ToLower(utils.GetEnv("CACHE_BACKEND", "memory", log))
	if backend == "redis" {
		client, err := cache.NewRedisClient(log)
		if err != nil {
			log.Warn("Redis unavailable, falling back to in-memory cache", "error", err)
			return cache.NewMemoryCache(log)
		}
		return cache.NewRedisCache(client, log)
	}
	return cache.NewMemoryCache(log)
}
