package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
	"github.com/bitwiseee/superstudy-backend/internal/requestdata"
	"github.com/bitwiseee/superstudy-backend/internal/services"
)

type SummaryHandler struct {
	log        *logger.Logger
	summarySvc services.SummaryService
}

func NewSummaryHandler(log *logger.Logger, summarySvc services.SummaryService) *SummaryHandler {
	return &SummaryHandler{
		log:        log.With("handler", "SummaryHandler"),
		summarySvc: summarySvc,
	}
}

// POST /api/summaries/generate/
func (h *SummaryHandler) Generate(c *gin.Context) {
	var req struct {
		DocumentID uuid.UUID `json:"document_id"`
		Language   string    `json:"language"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.DocumentID == uuid.Nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("document_id is required"))
		return
	}

	userID := requestdata.UserID(c.Request.Context())
	result, err := h.summarySvc.Generate(c.Request.Context(), userID, req.DocumentID, req.Language)
	if err != nil {
		if IsInternal(err) {
			h.log.Error("summary generation failed", "document_id", req.DocumentID, "error", err)
		}
		RespondServiceError(c, "summary_failed", "Failed to generate summary", err)
		return
	}

	// An already existing summary comes back as-is without a new award.
	if !result.Created {
		RespondOK(c, result.Summary)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"summary":       result.Summary,
		"points_earned": result.PointsEarned,
		"total_points":  totalPoints(result.Progress),
	})
}

// GET /api/summaries/:document_id/
func (h *SummaryHandler) Get(c *gin.Context) {
	docID, ok := parseIDParam(c, "document_id")
	if !ok {
		return
	}
	userID := requestdata.UserID(c.Request.Context())

	summary, err := h.summarySvc.Get(c.Request.Context(), userID, docID)
	if err != nil {
		if IsInternal(err) {
			h.log.Error("failed to load summary", "document_id", docID, "error", err)
		}
		RespondServiceError(c, "summary_failed", "Failed to load summary", err)
		return
	}
	RespondOK(c, summary)
}
