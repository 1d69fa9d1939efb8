package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
	"github.com/bitwiseee/superstudy-backend/internal/types"
)

type FlashcardRepo interface {
	CreateMany(ctx context.Context, tx *gorm.DB, cards []*types.Flashcard) ([]*types.Flashcard, error)
	ListByDocument(ctx context.Context, tx *gorm.DB, docID uuid.UUID) ([]*types.Flashcard, error)
	CountByDocument(ctx context.Context, tx *gorm.DB, docID uuid.UUID) (int64, error)
	DeleteByDocument(ctx context.Context, tx *gorm.DB, docID uuid.UUID) error
}

type flashcardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFlashcardRepo(db *gorm.DB, baseLog *logger.Logger) FlashcardRepo {
	repoLog := baseLog.With("repo", "FlashcardRepo")
	return &flashcardRepo{db: db, log: repoLog}
}

func (fr *flashcardRepo) CreateMany(ctx context.Context, tx *gorm.DB, cards []*types.Flashcard) ([]*types.Flashcard, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	if len(cards) == 0 {
		return []*types.Flashcard{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&cards).Error; err != nil {
		return nil, err
	}

	return cards, nil
}

func (fr *flashcardRepo) ListByDocument(ctx context.Context, tx *gorm.DB, docID uuid.UUID) ([]*types.Flashcard, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	var results []*types.Flashcard

	if err := transaction.WithContext(ctx).
		Where("document_id = ?", docID).
		Order("position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (fr *flashcardRepo) CountByDocument(ctx context.Context, tx *gorm.DB, docID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	var count int64

	if err := transaction.WithContext(ctx).
		Model(&types.Flashcard{}).
		Where("document_id = ?", docID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (fr *flashcardRepo) DeleteByDocument(ctx context.Context, tx *gorm.DB, docID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	return transaction.WithContext(ctx).
		Where("document_id = ?", docID).
		Delete(&types.Flashcard{}).Error
}
