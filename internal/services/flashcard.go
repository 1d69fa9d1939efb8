package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bitwiseee/superstudy-backend/internal/languages"
	pkgerrors "github.com/bitwiseee/superstudy-backend/internal/pkg/errors"
	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
	"github.com/bitwiseee/superstudy-backend/internal/repos"
	"github.com/bitwiseee/superstudy-backend/internal/types"
)

const (
	defaultFlashcards = 10
	minFlashcards     = 3
	maxFlashcards     = 20
)

type FlashcardResult struct {
	Flashcards   []*types.Flashcard
	Progress     *types.UserProgress
	PointsEarned int
}

// FlashcardService generates a document's flashcard deck. A document has one
// deck at a time; regenerating replaces it wholesale.
type FlashcardService interface {
	Generate(ctx context.Context, userID, docID uuid.UUID, language string, numCards int) (*FlashcardResult, error)
	List(ctx context.Context, userID, docID uuid.UUID) ([]*types.Flashcard, error)
}

type flashcardService struct {
	db            *gorm.DB
	flashcardRepo repos.FlashcardRepo
	docRepo       repos.DocumentRepo
	profileRepo   repos.UserProfileRepo
	progress      ProgressService
	ai            AIService
	langs         *languages.Registry
	log           *logger.Logger
}

func NewFlashcardService(
	db *gorm.DB,
	flashcardRepo repos.FlashcardRepo,
	docRepo repos.DocumentRepo,
	profileRepo repos.UserProfileRepo,
	progress ProgressService,
	ai AIService,
	langs *languages.Registry,
	baseLog *logger.Logger,
) FlashcardService {
	return &flashcardService{
		db:            db,
		flashcardRepo: flashcardRepo,
		docRepo:       docRepo,
		profileRepo:   profileRepo,
		progress:      progress,
		ai:            ai,
		langs:         langs,
		log:           baseLog.With("service", "FlashcardService"),
	}
}

// Generate builds a fresh deck for a processed document. The old deck and
// the new one swap inside a single transaction, so readers never see a
// half-replaced deck.
func (fs *flashcardService) Generate(ctx context.Context, userID, docID uuid.UUID, language string, numCards int) (*FlashcardResult, error) {
	if numCards <= 0 {
		numCards = defaultFlashcards
	}
	if numCards < minFlashcards || numCards > maxFlashcards {
		return nil, fmt.Errorf("%w: num_cards must be between %d and %d", pkgerrors.ErrInvalidArgument, minFlashcards, maxFlashcards)
	}

	doc, err := fs.docRepo.GetByIDForUser(ctx, nil, docID, userID)
	if err != nil {
		return nil, err
	}
	if !doc.Processed {
		return nil, pkgerrors.ErrDocumentNotProcessed
	}

	lang := resolveLanguage(ctx, fs.profileRepo, fs.langs, userID, language)
	raw, err := fs.ai.GenerateFlashcards(ctx, doc.TextContent, numCards, lang)
	if err != nil {
		return nil, fmt.Errorf("failed to generate flashcards: %w", err)
	}

	parsed, err := ParseFlashcards(raw)
	if err != nil {
		fs.log.Error("flashcard output failed to parse", "document_id", doc.ID, "error", err)
		return nil, err
	}

	cards := make([]*types.Flashcard, 0, len(parsed))
	for i, card := range parsed {
		cards = append(cards, &types.Flashcard{
			DocumentID: doc.ID,
			Question:   card.Question,
			Answer:     card.Answer,
			Language:   lang,
			Position:   i,
		})
	}

	err = fs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := fs.flashcardRepo.DeleteByDocument(ctx, tx, doc.ID); err != nil {
			return err
		}
		_, err := fs.flashcardRepo.CreateMany(ctx, tx, cards)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to replace flashcards: %w", err)
	}

	result := &FlashcardResult{Flashcards: cards}
	progress, earned, err := fs.progress.RecordFlashcards(ctx, userID, len(cards))
	if err != nil {
		fs.log.Warn("failed to record flashcard points", "user_id", userID, "error", err)
		return result, nil
	}
	result.Progress = progress
	result.PointsEarned = earned

	fs.log.Info("flashcards generated", "document_id", doc.ID, "count", len(cards), "language", lang)
	return result, nil
}

func (fs *flashcardService) List(ctx context.Context, userID, docID uuid.UUID) ([]*types.Flashcard, error) {
	doc, err := fs.docRepo.GetByIDForUser(ctx, nil, docID, userID)
	if err != nil {
		return nil, err
	}

	cards, err := fs.flashcardRepo.ListByDocument(ctx, nil, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list flashcards: %w", err)
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("%w: No flashcards found. Generate some first.", pkgerrors.ErrNotFound)
	}
	return cards, nil
}
