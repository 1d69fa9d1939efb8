package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bitwiseee/superstudy-backend/internal/media"
	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
	"github.com/bitwiseee/superstudy-backend/internal/requestdata"
	"github.com/bitwiseee/superstudy-backend/internal/services"
	"github.com/bitwiseee/superstudy-backend/internal/types"
)

type ChatHandler struct {
	log     *logger.Logger
	chatSvc services.ChatService
	store   *media.Store
}

func NewChatHandler(log *logger.Logger, chatSvc services.ChatService, store *media.Store) *ChatHandler {
	return &ChatHandler{
		log:     log.With("handler", "ChatHandler"),
		chatSvc: chatSvc,
		store:   store,
	}
}

// POST /api/chat/ask/
func (h *ChatHandler) Ask(c *gin.Context) {
	var req struct {
		DocumentID    uuid.UUID `json:"document_id"`
		Question      string    `json:"question"`
		Language      string    `json:"language"`
		GenerateAudio bool      `json:"generate_audio"`
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
	result, err := h.chatSvc.Ask(c.Request.Context(), userID, req.DocumentID, req.Question, req.Language, req.GenerateAudio)
	if err != nil {
		if IsInternal(err) {
			h.log.Error("ask failed", "user_id", userID, "document_id", req.DocumentID, "error", err)
		}
		RespondServiceError(c, "chat_failed", "Failed to process question", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"chat":          chatPayload(result.Chat, h.store),
		"points_earned": result.PointsEarned,
		"total_points":  totalPoints(result.Progress),
	})
}

// GET /api/chat/history/:document_id/
func (h *ChatHandler) History(c *gin.Context) {
	docID, ok := parseIDParam(c, "document_id")
	if !ok {
		return
	}
	userID := requestdata.UserID(c.Request.Context())

	chats, err := h.chatSvc.History(c.Request.Context(), userID, docID)
	if err != nil {
		if IsInternal(err) {
			h.log.Error("failed to load chat history", "document_id", docID, "error", err)
		}
		RespondServiceError(c, "chat_failed", "Failed to load chat history", err)
		return
	}

	payloads := make([]gin.H, 0, len(chats))
	for _, chat := range chats {
		payloads = append(payloads, chatPayload(chat, h.store))
	}
	RespondOK(c, payloads)
}

// POST /api/chat/:id/audio/
func (h *ChatHandler) GenerateAudio(c *gin.Context) {
	chatID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := requestdata.UserID(c.Request.Context())

	relPath, err := h.chatSvc.GenerateChatAudio(c.Request.Context(), userID, chatID)
	if err != nil {
		if IsInternal(err) {
			h.log.Error("audio generation failed", "chat_id", chatID, "error", err)
		}
		RespondServiceError(c, "audio_failed", "Failed to generate audio", err)
		return
	}

	RespondOK(c, gin.H{
		"audio_url": h.store.URL(relPath),
		"message":   "Audio generated successfully",
	})
}

func chatPayload(chat *types.Chat, store *media.Store) gin.H {
	payload := gin.H{
		"id":          chat.ID,
		"document_id": chat.DocumentID,
		"question":    chat.Question,
		"answer":      chat.Answer,
		"language":    chat.Language,
		"audio_path":  chat.AudioPath,
		"audio_url":   nil,
		"created_at":  chat.CreatedAt,
	}
	if chat.AudioPath != "" {
		payload["audio_url"] = store.URL(chat.AudioPath)
	}
	return payload
}
