package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/bitwiseee/superstudy-backend/internal/languages"
	"github.com/bitwiseee/superstudy-backend/internal/media"
	pkgerrors "github.com/bitwiseee/superstudy-backend/internal/pkg/errors"
	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
	"github.com/bitwiseee/superstudy-backend/internal/repos"
	"github.com/bitwiseee/superstudy-backend/internal/types"
)

const maxUploadBytes = 10 * 1024 * 1024

var allowedUploadExtensions = []string{".pdf", ".pptx", ".ppt", ".txt"}

// DocumentInfo is a document together with the derived fields the API
// exposes alongside it.
type DocumentInfo struct {
	Document       *types.Document
	FileURL        string
	HasSummary     bool
	FlashcardCount int64
	QuizCount      int64
}

type DocumentService interface {
	Upload(ctx context.Context, userID uuid.UUID, filename string, data []byte, language string) (*types.Document, *types.UserProgress, int, error)
	List(ctx context.Context, userID uuid.UUID) ([]*DocumentInfo, error)
	Get(ctx context.Context, userID, docID uuid.UUID) (*DocumentInfo, error)
	Delete(ctx context.Context, userID, docID uuid.UUID) error
	ResolveLanguage(ctx context.Context, userID uuid.UUID, requested string) string
}

type documentService struct {
	docRepo       repos.DocumentRepo
	summaryRepo   repos.SummaryRepo
	flashcardRepo repos.FlashcardRepo
	quizRepo      repos.QuizRepo
	chatRepo      repos.ChatRepo
	profileRepo   repos.UserProfileRepo
	progress      ProgressService
	extractor     *TextExtractor
	store         *media.Store
	langs         *languages.Registry
	log           *logger.Logger
}

func NewDocumentService(
	docRepo repos.DocumentRepo,
	summaryRepo repos.SummaryRepo,
	flashcardRepo repos.FlashcardRepo,
	quizRepo repos.QuizRepo,
	chatRepo repos.ChatRepo,
	profileRepo repos.UserProfileRepo,
	progress ProgressService,
	extractor *TextExtractor,
	store *media.Store,
	langs *languages.Registry,
	baseLog *logger.Logger,
) DocumentService {
	return &documentService{
		docRepo:       docRepo,
		summaryRepo:   summaryRepo,
		flashcardRepo: flashcardRepo,
		quizRepo:      quizRepo,
		chatRepo:      chatRepo,
		profileRepo:   profileRepo,
		progress:      progress,
		extractor:     extractor,
		store:         store,
		langs:         langs,
		log:           baseLog.With("service", "DocumentService"),
	}
}

// Upload stores the file, creates the document row, extracts its text and
// marks it processed. A file that yields no usable text leaves nothing
// behind: both the row and the stored file are removed again.
func (ds *documentService) Upload(ctx context.Context, userID uuid.UUID, filename string, data []byte, language string) (*types.Document, *types.UserProgress, int, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !isAllowedUploadExtension(ext) {
		return nil, nil, 0, fmt.Errorf("%w: Unsupported file type. Allowed: %s",
			pkgerrors.ErrInvalidArgument, strings.Join(allowedUploadExtensions, ", "))
	}
	if int64(len(data)) > maxUploadBytes {
		return nil, nil, 0, fmt.Errorf("%w: File size too large. Maximum size is 10MB.", pkgerrors.ErrInvalidArgument)
	}
	if len(data) == 0 {
		return nil, nil, 0, fmt.Errorf("%w: uploaded file is empty", pkgerrors.ErrInvalidArgument)
	}

	relPath, err := ds.store.Save(media.SubdirDocuments, filename, data)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("failed to store uploaded file: %w", err)
	}

	doc := &types.Document{
		UserID:    userID,
		Title:     filename,
		FilePath:  relPath,
		SizeBytes: int64(len(data)),
		Language:  ds.ResolveLanguage(ctx, userID, language),
	}
	if _, err := ds.docRepo.Create(ctx, nil, doc); err != nil {
		ds.removeStoredFile(relPath)
		return nil, nil, 0, fmt.Errorf("failed to create document: %w", err)
	}

	text := ds.extractor.Extract(filename, data)
	if ok, reason := ds.extractor.ValidateForProcessing(text); !ok {
		ds.log.Warn("discarding upload with no usable text",
			"document_id", doc.ID, "title", doc.Title, "reason", reason)
		ds.discardDocument(ctx, doc)
		return nil, nil, 0, pkgerrors.ErrNoText
	}

	doc.TextContent = text
	doc.Processed = true
	if err := ds.docRepo.Save(ctx, nil, doc); err != nil {
		ds.discardDocument(ctx, doc)
		return nil, nil, 0, fmt.Errorf("failed to save processed document: %w", err)
	}

	progress, earned, err := ds.progress.RecordUpload(ctx, userID)
	if err != nil {
		// The document is already processed at this point; losing the
		// award is better than surfacing a failure for a finished upload.
		ds.log.Warn("failed to record upload points", "user_id", userID, "error", err)
		return doc, nil, 0, nil
	}

	ds.log.Info("document uploaded", "document_id", doc.ID, "title", doc.Title,
		"language", doc.Language, "word_count", doc.WordCount())
	return doc, progress, earned, nil
}

func (ds *documentService) List(ctx context.Context, userID uuid.UUID) ([]*DocumentInfo, error) {
	docs, err := ds.docRepo.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	infos := make([]*DocumentInfo, 0, len(docs))
	for _, doc := range docs {
		info, err := ds.buildInfo(ctx, doc)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (ds *documentService) Get(ctx context.Context, userID, docID uuid.UUID) (*DocumentInfo, error) {
	doc, err := ds.docRepo.GetByIDForUser(ctx, nil, docID, userID)
	if err != nil {
		return nil, err
	}
	return ds.buildInfo(ctx, doc)
}

// Delete removes the row (the database cascades to summaries, flashcards,
// quizzes and chats) and then cleans up the stored file plus any chat audio.
func (ds *documentService) Delete(ctx context.Context, userID, docID uuid.UUID) error {
	doc, err := ds.docRepo.GetByIDForUser(ctx, nil, docID, userID)
	if err != nil {
		return err
	}

	audioPaths, err := ds.chatRepo.ListAudioPathsByDocument(ctx, nil, doc.ID)
	if err != nil {
		ds.log.Warn("could not list chat audio for cleanup", "document_id", doc.ID, "error", err)
		audioPaths = nil
	}

	if err := ds.docRepo.Delete(ctx, nil, doc.ID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	ds.removeStoredFile(doc.FilePath)
	for _, p := range audioPaths {
		ds.removeStoredFile(p)
	}

	ds.log.Info("document deleted", "document_id", doc.ID, "title", doc.Title)
	return nil
}

// ResolveLanguage picks the effective language: an explicitly requested
// profile language wins, then the user's stored preference, then the default.
func (ds *documentService) ResolveLanguage(ctx context.Context, userID uuid.UUID, requested string) string {
	return resolveLanguage(ctx, ds.profileRepo, ds.langs, userID, requested)
}

func resolveLanguage(ctx context.Context, profileRepo repos.UserProfileRepo, langs *languages.Registry, userID uuid.UUID, requested string) string {
	requested = strings.TrimSpace(strings.ToLower(requested))
	if requested != "" && langs.IsProfileLanguage(requested) {
		return requested
	}

	if profile, err := profileRepo.GetByUserID(ctx, nil, userID); err == nil {
		if profile.PreferredLanguage != "" {
			return profile.PreferredLanguage
		}
	}
	return langs.DefaultCode()
}

func (ds *documentService) buildInfo(ctx context.Context, doc *types.Document) (*DocumentInfo, error) {
	hasSummary, err := ds.summaryRepo.ExistsForDocument(ctx, nil, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check summary presence: %w", err)
	}
	cardCount, err := ds.flashcardRepo.CountByDocument(ctx, nil, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count flashcards: %w", err)
	}
	quizCount, err := ds.quizRepo.CountByDocument(ctx, nil, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count quizzes: %w", err)
	}

	return &DocumentInfo{
		Document:       doc,
		FileURL:        ds.store.URL(doc.FilePath),
		HasSummary:     hasSummary,
		FlashcardCount: cardCount,
		QuizCount:      quizCount,
	}, nil
}

// discardDocument undoes a partial upload: row first, then the stored file.
func (ds *documentService) discardDocument(ctx context.Context, doc *types.Document) {
	if err := ds.docRepo.Delete(ctx, nil, doc.ID); err != nil {
		ds.log.Error("failed to remove document row after failed processing",
			"document_id", doc.ID, "error", err)
	}
	ds.removeStoredFile(doc.FilePath)
}

func (ds *documentService) removeStoredFile(relPath string) {
	if relPath == "" {
		return
	}
	if err := ds.store.Remove(relPath); err != nil {
		ds.log.Warn("failed to remove stored file", "path", relPath, "error", err)
	}
}

func isAllowedUploadExtension(ext string) bool {
	for _, allowed := range allowedUploadExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
