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

type FlashcardHandler struct {
	log          *logger.Logger
	flashcardSvc services.FlashcardService
}

func NewFlashcardHandler(log *logger.Logger, flashcardSvc services.FlashcardService) *FlashcardHandler {
	return &FlashcardHandler{
		log:          log.With("handler", "FlashcardHandler"),
		flashcardSvc: flashcardSvc,
	}
}

// POST /api/flashcards/generate/
func (h *FlashcardHandler) Generate(c *gin.Context) {
	var req struct {
		DocumentID uuid.UUID `json:"document_id"`
		Language   string    `json:"language"`
		NumCards   int       `json:"num_cards"`
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
	result, err := h.flashcardSvc.Generate(c.Request.Context(), userID, req.DocumentID, req.Language, req.NumCards)
	if err != nil {
		if IsInternal(err) {
			h.log.Error("flashcard generation failed", "document_id", req.DocumentID, "error", err)
		}
		RespondServiceError(c, "flashcards_failed", "Failed to generate flashcards", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"flashcards":    result.Flashcards,
		"count":         len(result.Flashcards),
		"points_earned": result.PointsEarned,
		"total_points":  totalPoints(result.Progress),
	})
}

// GET /api/flashcards/:document_id/
func (h *FlashcardHandler) List(c *gin.Context) {
	docID, ok := parseIDParam(c, "document_id")
	if !ok {
		return
	}
	userID := requestdata.UserID(c.Request.Context())

	cards, err := h.flashcardSvc.List(c.Request.Context(), userID, docID)
	if err != nil {
		if IsInternal(err) {
			h.log.Error("failed to load flashcards", "document_id", docID, "error", err)
		}
		RespondServiceError(c, "flashcards_failed", "Failed to load flashcards", err)
		return
	}
	RespondOK(c, cards)
}
