package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/bitwiseee/superstudy-backend/internal/media"
	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
	"github.com/bitwiseee/superstudy-backend/internal/requestdata"
	"github.com/bitwiseee/superstudy-backend/internal/services"
	"github.com/bitwiseee/superstudy-backend/internal/types"
)

type DashboardHandler struct {
	log     *logger.Logger
	dashSvc services.DashboardService
	store   *media.Store
}

func NewDashboardHandler(log *logger.Logger, dashSvc services.DashboardService, store *media.Store) *DashboardHandler {
	return &DashboardHandler{
		log:     log.With("handler", "DashboardHandler"),
		dashSvc: dashSvc,
		store:   store,
	}
}

// GET /api/dashboard/
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())

	dash, err := h.dashSvc.Dashboard(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("failed to build dashboard", "user_id", userID, "error", err)
		RespondServiceError(c, "dashboard_failed", "Failed to load dashboard", err)
		return
	}

	recentDocs := make([]gin.H, 0, len(dash.RecentDocuments))
	for _, doc := range dash.RecentDocuments {
		recentDocs = append(recentDocs, documentPayload(doc, h.store.URL(doc.FilePath)))
	}
	recentChats := make([]gin.H, 0, len(dash.RecentChats))
	for _, chat := range dash.RecentChats {
		recentChats = append(recentChats, chatPayload(chat, h.store))
	}
	recentAttempts := make([]gin.H, 0, len(dash.RecentAttempts))
	for _, attempt := range dash.RecentAttempts {
		recentAttempts = append(recentAttempts, attemptPayload(attempt))
	}

	RespondOK(c, gin.H{
		"progress":             progressPayload(dash.Progress, dash.Badges),
		"recent_documents":     recentDocs,
		"recent_chats":         recentChats,
		"recent_quiz_attempts": recentAttempts,
		"stats":                dash.Stats,
	})
}

// GET /api/leaderboard/
func (h *DashboardHandler) Leaderboard(c *gin.Context) {
	entries, err := h.dashSvc.Leaderboard(c.Request.Context())
	if err != nil {
		h.log.Error("failed to build leaderboard", "error", err)
		RespondServiceError(c, "dashboard_failed", "Failed to load leaderboard", err)
		return
	}
	RespondOK(c, entries)
}

// progressPayload serializes a progress row with its derived level and
// badges.
func progressPayload(progress *types.UserProgress, badges []services.Badge) gin.H {
	return gin.H{
		"points":              progress.Points,
		"level":               progress.Level(),
		"streak":              progress.Streak,
		"documents_uploaded":  progress.DocumentsUploaded,
		"questions_asked":     progress.QuestionsAsked,
		"quizzes_completed":   progress.QuizzesCompleted,
		"flashcards_created":  progress.FlashcardsCreated,
		"summaries_generated": progress.SummariesGenerated,
		"badges":              badges,
		"last_activity":       progress.LastActivity,
	}
}
