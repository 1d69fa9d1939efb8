package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
	"github.com/bitwiseee/superstudy-backend/internal/requestdata"
	"github.com/bitwiseee/superstudy-backend/internal/services"
)

type UserProfileHandler struct {
	log        *logger.Logger
	profileSvc services.UserProfileService
}

func NewUserProfileHandler(log *logger.Logger, profileSvc services.UserProfileService) *UserProfileHandler {
	return &UserProfileHandler{
		log:        log.With("handler", "UserProfileHandler"),
		profileSvc: profileSvc,
	}
}

// GET /api/profile/
func (h *UserProfileHandler) GetProfile(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())

	view, err := h.profileSvc.Get(c.Request.Context(), userID)
	if err != nil {
		if IsInternal(err) {
			h.log.Error("failed to load profile", "user_id", userID, "error", err)
		}
		RespondServiceError(c, "profile_failed", "Failed to load profile", err)
		return
	}
	RespondOK(c, profilePayload(view))
}

// PUT /api/profile/
func (h *UserProfileHandler) UpdateLanguage(c *gin.Context) {
	var req struct {
		Language string `json:"language"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	userID := requestdata.UserID(c.Request.Context())
	_, displayName, err := h.profileSvc.UpdateLanguage(c.Request.Context(), userID, req.Language)
	if err != nil {
		if IsInternal(err) {
			h.log.Error("failed to update language", "user_id", userID, "error", err)
		}
		RespondServiceError(c, "profile_failed", "Failed to update language preference", err)
		return
	}

	RespondOK(c, gin.H{
		"message":  "Language preference updated",
		"language": displayName,
	})
}

// POST /api/profile/avatar/
func (h *UserProfileHandler) UploadAvatar(c *gin.Context) {
	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("avatar file is required"))
		return
	}
	raw, err := readUploadedFile(fileHeader)
	if err != nil {
		h.log.Error("failed to read avatar upload", "error", err)
		RespondError(c, http.StatusInternalServerError, "profile_failed", errors.New("Failed to read uploaded file"))
		return
	}

	userID := requestdata.UserID(c.Request.Context())
	user, err := h.profileSvc.UpdateAvatar(c.Request.Context(), userID, raw)
	if err != nil {
		if IsInternal(err) {
			h.log.Error("failed to update avatar", "user_id", userID, "error", err)
		}
		RespondServiceError(c, "profile_failed", "Failed to update avatar", err)
		return
	}

	RespondOK(c, gin.H{
		"message":    "Avatar updated",
		"avatar_url": user.AvatarURL,
	})
}

func profilePayload(view *services.ProfileView) gin.H {
	return gin.H{
		"id":                 view.Profile.ID,
		"username":           view.User.Username,
		"preferred_language": view.Profile.PreferredLanguage,
		"created_at":         view.Profile.CreatedAt,
		"user":               view.User,
	}
}
