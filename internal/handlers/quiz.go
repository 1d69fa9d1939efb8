package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
	"github.com/bitwiseee/superstudy-backend/internal/requestdata"
	"github.com/bitwiseee/superstudy-backend/internal/services"
	"github.com/bitwiseee/superstudy-backend/internal/types"
)

type QuizHandler struct {
	log     *logger.Logger
	quizSvc services.QuizService
}

func NewQuizHandler(log *logger.Logger, quizSvc services.QuizService) *QuizHandler {
	return &QuizHandler{
		log:     log.With("handler", "QuizHandler"),
		quizSvc: quizSvc,
	}
}

// POST /api/quizzes/generate/
func (h *QuizHandler) Generate(c *gin.Context) {
	var req struct {
		DocumentID   uuid.UUID `json:"document_id"`
		Language     string    `json:"language"`
		NumQuestions int       `json:"num_questions"`
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
	quiz, err := h.quizSvc.Generate(c.Request.Context(), userID, req.DocumentID, req.Language, req.NumQuestions)
	if err != nil {
		if IsInternal(err) {
			h.log.Error("quiz generation failed", "document_id", req.DocumentID, "error", err)
		}
		RespondServiceError(c, "quiz_failed", "Failed to generate quiz", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"quiz":    quizPayload(quiz),
		"message": fmt.Sprintf("Quiz created with %d questions", len(quiz.Questions)),
	})
}

// GET /api/quizzes/:id/
func (h *QuizHandler) Get(c *gin.Context) {
	quizID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := requestdata.UserID(c.Request.Context())

	quiz, err := h.quizSvc.Get(c.Request.Context(), userID, quizID)
	if err != nil {
		if IsInternal(err) {
			h.log.Error("failed to load quiz", "quiz_id", quizID, "error", err)
		}
		RespondServiceError(c, "quiz_failed", "Failed to load quiz", err)
		return
	}
	RespondOK(c, quizPayload(quiz))
}

// GET /api/quizzes/document/:document_id/
func (h *QuizHandler) ListByDocument(c *gin.Context) {
	docID, ok := parseIDParam(c, "document_id")
	if !ok {
		return
	}
	userID := requestdata.UserID(c.Request.Context())

	quizzes, err := h.quizSvc.ListByDocument(c.Request.Context(), userID, docID)
	if err != nil {
		if IsInternal(err) {
			h.log.Error("failed to list quizzes", "document_id", docID, "error", err)
		}
		RespondServiceError(c, "quiz_failed", "Failed to load quizzes", err)
		return
	}

	payloads := make([]gin.H, 0, len(quizzes))
	for _, quiz := range quizzes {
		payloads = append(payloads, quizPayload(quiz))
	}
	RespondOK(c, payloads)
}

// POST /api/quizzes/submit/
func (h *QuizHandler) Submit(c *gin.Context) {
	var req struct {
		QuizID    uuid.UUID         `json:"quiz_id"`
		Answers   map[string]string `json:"answers"`
		TimeTaken *int              `json:"time_taken"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.QuizID == uuid.Nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("quiz_id is required"))
		return
	}

	userID := requestdata.UserID(c.Request.Context())
	submission, err := h.quizSvc.Submit(c.Request.Context(), userID, req.QuizID, req.Answers, req.TimeTaken)
	if err != nil {
		if IsInternal(err) {
			h.log.Error("quiz submission failed", "quiz_id", req.QuizID, "error", err)
		}
		RespondServiceError(c, "quiz_failed", "Failed to submit quiz", err)
		return
	}

	RespondOK(c, gin.H{
		"attempt":         attemptPayload(submission.Attempt),
		"score":           submission.Attempt.Score,
		"correct_answers": submission.Attempt.CorrectAnswers,
		"total_questions": submission.Attempt.TotalQuestions,
		"results":         submission.Results,
		"points_earned":   submission.PointsEarned,
		"total_points":    totalPoints(submission.Progress),
		"message":         submission.Message,
	})
}

// quizPayload is the API shape of a quiz with its ordered questions.
func quizPayload(quiz *types.Quiz) gin.H {
	return gin.H{
		"id":             quiz.ID,
		"document_id":    quiz.DocumentID,
		"title":          quiz.Title,
		"language":       quiz.Language,
		"questions":      quiz.Questions,
		"question_count": len(quiz.Questions),
		"created_at":     quiz.CreatedAt,
	}
}

func attemptPayload(attempt *types.QuizAttempt) gin.H {
	payload := gin.H{
		"id":              attempt.ID,
		"quiz_id":         attempt.QuizID,
		"score":           attempt.Score,
		"total_questions": attempt.TotalQuestions,
		"correct_answers": attempt.CorrectAnswers,
		"completed_at":    attempt.CompletedAt,
	}
	if attempt.TimeTakenSeconds != nil {
		payload["time_taken_seconds"] = *attempt.TimeTakenSeconds
	}
	if attempt.Quiz != nil {
		payload["quiz_title"] = attempt.Quiz.Title
	}
	return payload
}
