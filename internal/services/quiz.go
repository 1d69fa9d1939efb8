package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bitwiseee/superstudy-backend/internal/languages"
	pkgerrors "github.com/bitwiseee/superstudy-backend/internal/pkg/errors"
	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
	"github.com/bitwiseee/superstudy-backend/internal/repos"
	"github.com/bitwiseee/superstudy-backend/internal/types"
)

const (
	defaultQuizQuestions = 5
	minQuizQuestions     = 3
	maxQuizQuestions     = 15

	// quizTitleMaxChars clips the document title inside a quiz title.
	quizTitleMaxChars = 50
)

// QuestionResult is the graded outcome of a single question in a submission.
type QuestionResult struct {
	QuestionID    uuid.UUID `json:"question_id"`
	Question      string    `json:"question"`
	UserAnswer    string    `json:"user_answer"`
	CorrectAnswer string    `json:"correct_answer"`
	IsCorrect     bool      `json:"is_correct"`
	Explanation   string    `json:"explanation"`
}

// QuizSubmission is a graded attempt with its per-question breakdown.
type QuizSubmission struct {
	Attempt      *types.QuizAttempt
	Results      []QuestionResult
	Progress     *types.UserProgress
	PointsEarned int
	Message      string
}

// QuizService generates quizzes from documents and grades submissions.
// Points are earned on submission, never on generation.
type QuizService interface {
	Generate(ctx context.Context, userID, docID uuid.UUID, language string, numQuestions int) (*types.Quiz, error)
	Get(ctx context.Context, userID, quizID uuid.UUID) (*types.Quiz, error)
	ListByDocument(ctx context.Context, userID, docID uuid.UUID) ([]*types.Quiz, error)
	Submit(ctx context.Context, userID, quizID uuid.UUID, answers map[string]string, timeTakenSeconds *int) (*QuizSubmission, error)
}

type quizService struct {
	db           *gorm.DB
	quizRepo     repos.QuizRepo
	questionRepo repos.QuizQuestionRepo
	attemptRepo  repos.QuizAttemptRepo
	docRepo      repos.DocumentRepo
	profileRepo  repos.UserProfileRepo
	progress     ProgressService
	ai           AIService
	langs        *languages.Registry
	log          *logger.Logger
}

func NewQuizService(
	db *gorm.DB,
	quizRepo repos.QuizRepo,
	questionRepo repos.QuizQuestionRepo,
	attemptRepo repos.QuizAttemptRepo,
	docRepo repos.DocumentRepo,
	profileRepo repos.UserProfileRepo,
	progress ProgressService,
	ai AIService,
	langs *languages.Registry,
	baseLog *logger.Logger,
) QuizService {
	return &quizService{
		db:           db,
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		attemptRepo:  attemptRepo,
		docRepo:      docRepo,
		profileRepo:  profileRepo,
		progress:     progress,
		ai:           ai,
		langs:        langs,
		log:          baseLog.With("service", "QuizService"),
	}
}

// Generate builds a new quiz from a processed document. The quiz row and all
// its questions land in one transaction, so a quiz is never visible without
// its questions.
func (qs *quizService) Generate(ctx context.Context, userID, docID uuid.UUID, language string, numQuestions int) (*types.Quiz, error) {
	if numQuestions <= 0 {
		numQuestions = defaultQuizQuestions
	}
	if numQuestions < minQuizQuestions || numQuestions > maxQuizQuestions {
		return nil, fmt.Errorf("%w: num_questions must be between %d and %d", pkgerrors.ErrInvalidArgument, minQuizQuestions, maxQuizQuestions)
	}

	doc, err := qs.docRepo.GetByIDForUser(ctx, nil, docID, userID)
	if err != nil {
		return nil, err
	}
	if !doc.Processed {
		return nil, pkgerrors.ErrDocumentNotProcessed
	}

	lang := resolveLanguage(ctx, qs.profileRepo, qs.langs, userID, language)
	raw, err := qs.ai.GenerateQuiz(ctx, doc.TextContent, numQuestions, lang)
	if err != nil {
		return nil, fmt.Errorf("failed to generate quiz: %w", err)
	}

	parsed, err := ParseQuiz(raw)
	if err != nil {
		qs.log.Error("quiz output failed to parse", "document_id", doc.ID, "error", err)
		return nil, err
	}

	quiz := &types.Quiz{
		DocumentID: doc.ID,
		Title:      fmt.Sprintf("Quiz: %s", truncateRunes(doc.Title, quizTitleMaxChars)),
		Language:   lang,
	}
	questions := make([]*types.QuizQuestion, 0, len(parsed))

	err = qs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := qs.quizRepo.Create(ctx, tx, quiz); err != nil {
			return err
		}
		for i, q := range parsed {
			questions = append(questions, &types.QuizQuestion{
				QuizID:        quiz.ID,
				QuestionText:  q.Question,
				OptionA:       q.OptionA,
				OptionB:       q.OptionB,
				OptionC:       q.OptionC,
				OptionD:       q.OptionD,
				CorrectAnswer: q.Correct,
				Explanation:   q.Explanation,
				Position:      i,
			})
		}
		_, err := qs.questionRepo.CreateMany(ctx, tx, questions)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save quiz: %w", err)
	}

	quiz.Questions = make([]types.QuizQuestion, 0, len(questions))
	for _, q := range questions {
		quiz.Questions = append(quiz.Questions, *q)
	}

	qs.log.Info("quiz generated", "quiz_id", quiz.ID, "document_id", doc.ID,
		"questions", len(questions), "language", lang)
	return quiz, nil
}

func (qs *quizService) Get(ctx context.Context, userID, quizID uuid.UUID) (*types.Quiz, error) {
	return qs.quizRepo.GetByIDForUser(ctx, nil, quizID, userID)
}

func (qs *quizService) ListByDocument(ctx context.Context, userID, docID uuid.UUID) ([]*types.Quiz, error) {
	doc, err := qs.docRepo.GetByIDForUser(ctx, nil, docID, userID)
	if err != nil {
		return nil, err
	}
	quizzes, err := qs.quizRepo.ListByDocument(ctx, nil, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	return quizzes, nil
}

// Submit grades an answers map keyed by question ID. Unanswered questions
// count as wrong, answers compare case-insensitively and the score rounds to
// the nearest whole percent.
func (qs *quizService) Submit(ctx context.Context, userID, quizID uuid.UUID, answers map[string]string, timeTakenSeconds *int) (*QuizSubmission, error) {
	quiz, err := qs.quizRepo.GetByIDForUser(ctx, nil, quizID, userID)
	if err != nil {
		return nil, err
	}

	total := len(quiz.Questions)
	correct := 0
	results := make([]QuestionResult, 0, total)

	for _, q := range quiz.Questions {
		userAnswer := strings.ToUpper(strings.TrimSpace(answers[q.ID.String()]))
		isCorrect := userAnswer != "" && userAnswer == q.CorrectAnswer
		if isCorrect {
			correct++
		}
		results = append(results, QuestionResult{
			QuestionID:    q.ID,
			Question:      q.QuestionText,
			UserAnswer:    userAnswer,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     isCorrect,
			Explanation:   q.Explanation,
		})
	}

	score := quizScore(correct, total)
	attempt := &types.QuizAttempt{
		UserID:           userID,
		QuizID:           quiz.ID,
		Score:            score,
		TotalQuestions:   total,
		CorrectAnswers:   correct,
		TimeTakenSeconds: timeTakenSeconds,
	}
	if _, err := qs.attemptRepo.Create(ctx, nil, attempt); err != nil {
		return nil, fmt.Errorf("failed to save quiz attempt: %w", err)
	}

	submission := &QuizSubmission{
		Attempt: attempt,
		Results: results,
		Message: quizMessage(score),
	}
	progress, earned, err := qs.progress.RecordQuizCompletion(ctx, userID, score)
	if err != nil {
		qs.log.Warn("failed to record quiz points", "user_id", userID, "error", err)
		return submission, nil
	}
	submission.Progress = progress
	submission.PointsEarned = earned

	qs.log.Info("quiz submitted", "quiz_id", quiz.ID, "score", score,
		"correct", correct, "total", total)
	return submission, nil
}

// quizScore rounds 100*correct/total to the nearest integer.
func quizScore(correct, total int) int {
	if total == 0 {
		return 0
	}
	return (100*correct + total/2) / total
}

func quizMessage(score int) string {
	switch {
	case score >= 80:
		return "Excellent!"
	case score >= 60:
		return "Good job!"
	default:
		return "Keep practicing!"
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
