package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
	"github.com/bitwiseee/superstudy-backend/internal/types"
)

type SummaryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, summary *types.Summary) (*types.Summary, error)
	GetByDocumentID(ctx context.Context, tx *gorm.DB, docID uuid.UUID) (*types.Summary, error)
	ExistsForDocument(ctx context.Context, tx *gorm.DB, docID uuid.UUID) (bool, error)
}

type summaryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSummaryRepo(db *gorm.DB, baseLog *logger.Logger) SummaryRepo {
	repoLog := baseLog.With("repo", "SummaryRepo")
	return &summaryRepo{db: db, log: repoLog}
}

func (sr *summaryRepo) Create(ctx context.Context, tx *gorm.DB, summary *types.Summary) (*types.Summary, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if err := transaction.WithContext(ctx).Create(summary).Error; err != nil {
		return nil, err
	}

	return summary, nil
}

func (sr *summaryRepo) GetByDocumentID(ctx context.Context, tx *gorm.DB, docID uuid.UUID) (*types.Summary, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var result types.Summary

	if err := transaction.WithContext(ctx).
		Where("document_id = ?", docID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (sr *summaryRepo) ExistsForDocument(ctx context.Context, tx *gorm.DB, docID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var count int64

	if err := transaction.WithContext(ctx).
		Model(&types.Summary{}).
		Where("document_id = ?", docID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
