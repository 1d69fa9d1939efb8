package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
	"github.com/bitwiseee/superstudy-backend/internal/types"
)

type QuizRepo interface {
	Create(ctx context.Context, tx *gorm.DB, quiz *types.Quiz) (*types.Quiz, error)
	GetByIDForUser(ctx context.Context, tx *gorm.DB, quizID, userID uuid.UUID) (*types.Quiz, error)
	ListByDocument(ctx context.Context, tx *gorm.DB, docID uuid.UUID) ([]*types.Quiz, error)
	CountByDocument(ctx context.Context, tx *gorm.DB, docID uuid.UUID) (int64, error)
}

type quizRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizRepo(db *gorm.DB, baseLog *logger.Logger) QuizRepo {
	repoLog := baseLog.With("repo", "QuizRepo")
	return &quizRepo{db: db, log: repoLog}
}

func (qr *quizRepo) Create(ctx context.Context, tx *gorm.DB, quiz *types.Quiz) (*types.Quiz, error) {
	transaction := tx
	if transaction == nil {
		transaction = qr.db
	}

	if err := transaction.WithContext(ctx).Create(quiz).Error; err != nil {
		return nil, err
	}

	return quiz, nil
}

// GetByIDForUser resolves ownership through the quiz's document, so a quiz is
// only visible to the user who uploaded the underlying document.
func (qr *quizRepo) GetByIDForUser(ctx context.Context, tx *gorm.DB, quizID, userID uuid.UUID) (*types.Quiz, error) {
	transaction := tx
	if transaction == nil {
		transaction = qr.db
	}

	var result types.Quiz

	if err := transaction.WithContext(ctx).
		Joins(`JOIN "document" ON "document"."id" = "quiz"."document_id"`).
		Where(`"quiz"."id" = ? AND "document"."user_id" = ?`, quizID, userID).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (qr *quizRepo) ListByDocument(ctx context.Context, tx *gorm.DB, docID uuid.UUID) ([]*types.Quiz, error) {
	transaction := tx
	if transaction == nil {
		transaction = qr.db
	}

	var results []*types.Quiz

	if err := transaction.WithContext(ctx).
		Where("document_id = ?", docID).
		Order("created_at DESC").
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (qr *quizRepo) CountByDocument(ctx context.Context, tx *gorm.DB, docID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = qr.db
	}

	var count int64

	if err := transaction.WithContext(ctx).
		Model(&types.Quiz{}).
		Where("document_id = ?", docID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
