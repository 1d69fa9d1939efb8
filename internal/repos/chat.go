package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
	"github.com/bitwiseee/superstudy-backend/internal/types"
)

type ChatRepo interface {
	Create(ctx context.Context, tx *gorm.DB, chat *types.Chat) (*types.Chat, error)
	GetByIDForUser(ctx context.Context, tx *gorm.DB, chatID, userID uuid.UUID) (*types.Chat, error)
	ListByDocumentForUser(ctx context.Context, tx *gorm.DB, docID, userID uuid.UUID, limit int) ([]*types.Chat, error)
	ListRecentByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.Chat, error)
	ListAudioPathsByDocument(ctx context.Context, tx *gorm.DB, docID uuid.UUID) ([]string, error)
	UpdateAudioPath(ctx context.Context, tx *gorm.DB, chatID uuid.UUID, audioPath string) error
	CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
}

type chatRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChatRepo(db *gorm.DB, baseLog *logger.Logger) ChatRepo {
	repoLog := baseLog.With("repo", "ChatRepo")
	return &chatRepo{db: db, log: repoLog}
}

func (cr *chatRepo) Create(ctx context.Context, tx *gorm.DB, chat *types.Chat) (*types.Chat, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	if err := transaction.WithContext(ctx).Create(chat).Error; err != nil {
		return nil, err
	}

	return chat, nil
}

func (cr *chatRepo) GetByIDForUser(ctx context.Context, tx *gorm.DB, chatID, userID uuid.UUID) (*types.Chat, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var result types.Chat

	if err := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", chatID, userID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (cr *chatRepo) ListByDocumentForUser(ctx context.Context, tx *gorm.DB, docID, userID uuid.UUID, limit int) ([]*types.Chat, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.Chat

	if err := transaction.WithContext(ctx).
		Where("document_id = ? AND user_id = ?", docID, userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *chatRepo) ListRecentByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.Chat, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var results []*types.Chat

	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListAudioPathsByDocument returns the stored audio files of a document's
// chats, for cleanup when the document goes away.
func (cr *chatRepo) ListAudioPathsByDocument(ctx context.Context, tx *gorm.DB, docID uuid.UUID) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var paths []string

	if err := transaction.WithContext(ctx).
		Model(&types.Chat{}).
		Where("document_id = ? AND audio_path <> ''", docID).
		Pluck("audio_path", &paths).Error; err != nil {
		return nil, err
	}
	return paths, nil
}

func (cr *chatRepo) UpdateAudioPath(ctx context.Context, tx *gorm.DB, chatID uuid.UUID, audioPath string) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Chat{}).
		Where("id = ?", chatID).
		Update("audio_path", audioPath).Error
}

func (cr *chatRepo) CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var count int64

	if err := transaction.WithContext(ctx).
		Model(&types.Chat{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
