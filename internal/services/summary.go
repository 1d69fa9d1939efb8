package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/bitwiseee/superstudy-backend/internal/languages"
	pkgerrors "github.com/bitwiseee/superstudy-backend/internal/pkg/errors"
	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
	"github.com/bitwiseee/superstudy-backend/internal/repos"
	"github.com/bitwiseee/superstudy-backend/internal/types"
)

// SummaryResult reports a generation: Created is false when the document
// already had a summary, in which case no points were awarded.
type SummaryResult struct {
	Summary      *types.Summary
	Created      bool
	Progress     *types.UserProgress
	PointsEarned int
}

// SummaryService generates and serves the one summary each document has.
type SummaryService interface {
	Generate(ctx context.Context, userID, docID uuid.UUID, language string) (*SummaryResult, error)
	Get(ctx context.Context, userID, docID uuid.UUID) (*types.Summary, error)
}

type summaryService struct {
	summaryRepo repos.SummaryRepo
	docRepo     repos.DocumentRepo
	profileRepo repos.UserProfileRepo
	progress    ProgressService
	ai          AIService
	langs       *languages.Registry
	log         *logger.Logger
}

func NewSummaryService(
	summaryRepo repos.SummaryRepo,
	docRepo repos.DocumentRepo,
	profileRepo repos.UserProfileRepo,
	progress ProgressService,
	ai AIService,
	langs *languages.Registry,
	baseLog *logger.Logger,
) SummaryService {
	return &summaryService{
		summaryRepo: summaryRepo,
		docRepo:     docRepo,
		profileRepo: profileRepo,
		progress:    progress,
		ai:          ai,
		langs:       langs,
		log:         baseLog.With("service", "SummaryService"),
	}
}

// Generate summarizes a processed document. A document summarizes once:
// repeated calls return the stored summary without another model call or
// award.
func (ss *summaryService) Generate(ctx context.Context, userID, docID uuid.UUID, language string) (*SummaryResult, error) {
	doc, err := ss.docRepo.GetByIDForUser(ctx, nil, docID, userID)
	if err != nil {
		return nil, err
	}
	if !doc.Processed {
		return nil, pkgerrors.ErrDocumentNotProcessed
	}

	existing, err := ss.summaryRepo.GetByDocumentID(ctx, nil, doc.ID)
	if err == nil {
		return &SummaryResult{Summary: existing}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up summary: %w", err)
	}

	lang := resolveLanguage(ctx, ss.profileRepo, ss.langs, userID, language)
	raw, err := ss.ai.GenerateSummary(ctx, doc.TextContent, lang)
	if err != nil {
		return nil, fmt.Errorf("failed to generate summary: %w", err)
	}

	content, keyPoints, err := ParseSummary(raw)
	if err != nil {
		ss.log.Error("summary output failed to parse", "document_id", doc.ID, "error", err)
		return nil, err
	}
	keyPointsJSON, err := json.Marshal(keyPoints)
	if err != nil {
		return nil, fmt.Errorf("failed to encode key points: %w", err)
	}

	summary := &types.Summary{
		DocumentID: doc.ID,
		Content:    content,
		KeyPoints:  datatypes.JSON(keyPointsJSON),
		Language:   lang,
	}
	if _, err := ss.summaryRepo.Create(ctx, nil, summary); err != nil {
		return nil, fmt.Errorf("failed to save summary: %w", err)
	}

	result := &SummaryResult{Summary: summary, Created: true}
	progress, earned, err := ss.progress.RecordSummary(ctx, userID)
	if err != nil {
		ss.log.Warn("failed to record summary points", "user_id", userID, "error", err)
		return result, nil
	}
	result.Progress = progress
	result.PointsEarned = earned

	ss.log.Info("summary generated", "document_id", doc.ID, "language", lang, "key_points", len(keyPoints))
	return result, nil
}

func (ss *summaryService) Get(ctx context.Context, userID, docID uuid.UUID) (*types.Summary, error) {
	doc, err := ss.docRepo.GetByIDForUser(ctx, nil, docID, userID)
	if err != nil {
		return nil, err
	}

	summary, err := ss.summaryRepo.GetByDocumentID(ctx, nil, doc.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: Summary not found. Generate one first.", pkgerrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load summary: %w", err)
	}
	return summary, nil
}
