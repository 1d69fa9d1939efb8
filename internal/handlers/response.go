package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/bitwiseee/superstudy-backend/internal/pkg/errors"
	"github.com/bitwiseee/superstudy-backend/internal/types"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondServiceError maps a service error onto the HTTP error taxonomy.
// Sentinel validation and lookup errors keep their message; anything else is
// answered with fallbackMessage under fallbackCode so internals never leak.
func RespondServiceError(c *gin.Context, fallbackCode, fallbackMessage string, err error) {
	switch {
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
	case errors.Is(err, pkgerrors.ErrDocumentNotProcessed):
		RespondError(c, http.StatusBadRequest, "document_not_processed", err)
	case errors.Is(err, pkgerrors.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, pkgerrors.ErrUnauthorized):
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, pkgerrors.ErrGenerationFormat):
		RespondError(c, http.StatusInternalServerError, "generation_format_error", err)
	default:
		RespondError(c, http.StatusInternalServerError, fallbackCode, errors.New(fallbackMessage))
	}
}

// IsInternal reports whether err maps to a 500 rather than a caller mistake,
// which decides whether the handler logs it at error level.
func IsInternal(err error) bool {
	return !errors.Is(err, pkgerrors.ErrInvalidArgument) &&
		!errors.Is(err, pkgerrors.ErrDocumentNotProcessed) &&
		!errors.Is(err, pkgerrors.ErrNotFound) &&
		!errors.Is(err, gorm.ErrRecordNotFound) &&
		!errors.Is(err, pkgerrors.ErrUnauthorized)
}

// parseIDParam reads a uuid path parameter; a malformed id answers 404 the
// same way a lookup miss would.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusNotFound, "not_found", fmt.Errorf("invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

// totalPoints tolerates the nil progress row left behind by a best-effort
// award that could not be recorded.
func totalPoints(p *types.UserProgress) int {
	if p == nil {
		return 0
	}
	return p.Points
}
