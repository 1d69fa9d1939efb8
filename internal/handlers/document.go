package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bitwiseee/superstudy-backend/internal/media"
	pkgerrors "github.com/bitwiseee/superstudy-backend/internal/pkg/errors"
	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
	"github.com/bitwiseee/superstudy-backend/internal/requestdata"
	"github.com/bitwiseee/superstudy-backend/internal/services"
	"github.com/bitwiseee/superstudy-backend/internal/types"
)

type DocumentHandler struct {
	log    *logger.Logger
	docSvc services.DocumentService
	store  *media.Store
}

func NewDocumentHandler(log *logger.Logger, docSvc services.DocumentService, store *media.Store) *DocumentHandler {
	return &DocumentHandler{
		log:    log.With("handler", "DocumentHandler"),
		docSvc: docSvc,
		store:  store,
	}
}

// POST /api/upload/
func (h *DocumentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_file", errors.New("file is required"))
		return
	}
	data, err := readUploadedFile(fileHeader)
	if err != nil {
		h.log.Error("failed to read upload", "filename", fileHeader.Filename, "error", err)
		RespondError(c, http.StatusInternalServerError, "upload_failed", errors.New("Failed to process document"))
		return
	}

	userID := requestdata.UserID(c.Request.Context())
	doc, progress, points, err := h.docSvc.Upload(c.Request.Context(), userID, fileHeader.Filename, data, c.PostForm("language"))
	if err != nil {
		switch {
		case errors.Is(err, pkgerrors.ErrInvalidArgument), errors.Is(err, pkgerrors.ErrNoText):
			RespondError(c, http.StatusBadRequest, "invalid_file", err)
		default:
			h.log.Error("upload failed", "user_id", userID, "filename", fileHeader.Filename, "error", err)
			RespondError(c, http.StatusInternalServerError, "upload_failed", errors.New("Failed to process document"))
		}
		return
	}

	payload := documentPayload(doc, h.store.URL(doc.FilePath))
	payload["has_summary"] = false
	payload["flashcard_count"] = 0
	payload["quiz_count"] = 0

	c.JSON(http.StatusCreated, gin.H{
		"document":      payload,
		"points_earned": points,
		"total_points":  totalPoints(progress),
		"message":       "Document uploaded and processed successfully!",
	})
}

// GET /api/documents/
func (h *DocumentHandler) List(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())

	infos, err := h.docSvc.List(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("failed to list documents", "user_id", userID, "error", err)
		RespondServiceError(c, "documents_failed", "Failed to load documents", err)
		return
	}

	payloads := make([]gin.H, 0, len(infos))
	for _, info := range infos {
		payloads = append(payloads, documentInfoPayload(info))
	}
	RespondOK(c, payloads)
}

// GET /api/documents/:id/
func (h *DocumentHandler) Get(c *gin.Context) {
	docID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := requestdata.UserID(c.Request.Context())

	info, err := h.docSvc.Get(c.Request.Context(), userID, docID)
	if err != nil {
		if IsInternal(err) {
			h.log.Error("failed to load document", "document_id", docID, "error", err)
		}
		RespondServiceError(c, "documents_failed", "Failed to load document", err)
		return
	}
	RespondOK(c, documentInfoPayload(info))
}

// DELETE /api/documents/:id/
func (h *DocumentHandler) Delete(c *gin.Context) {
	docID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := requestdata.UserID(c.Request.Context())

	if err := h.docSvc.Delete(c.Request.Context(), userID, docID); err != nil {
		if IsInternal(err) {
			h.log.Error("failed to delete document", "document_id", docID, "error", err)
		}
		RespondServiceError(c, "documents_failed", "Failed to delete document", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// documentPayload is the API shape of a document row; the extracted text
// never leaves the server.
func documentPayload(doc *types.Document, fileURL string) gin.H {
	return gin.H{
		"id":          doc.ID,
		"title":       doc.Title,
		"file":        doc.FilePath,
		"file_url":    fileURL,
		"file_size":   doc.SizeBytes,
		"language":    doc.Language,
		"processed":   doc.Processed,
		"uploaded_at": doc.UploadedAt,
		"word_count":  doc.WordCount(),
		"page_count":  doc.PageCount(),
	}
}

// documentInfoPayload extends documentPayload with the study artifact
// counters.
func documentInfoPayload(info *services.DocumentInfo) gin.H {
	payload := documentPayload(info.Document, info.FileURL)
	payload["has_summary"] = info.HasSummary
	payload["flashcard_count"] = info.FlashcardCount
	payload["quiz_count"] = info.QuizCount
	return payload
}

func readUploadedFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}
