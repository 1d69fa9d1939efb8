package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/bitwiseee/superstudy-backend/internal/languages"
	pkgerrors "github.com/bitwiseee/superstudy-backend/internal/pkg/errors"
	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
	"github.com/bitwiseee/superstudy-backend/internal/repos"
	"github.com/bitwiseee/superstudy-backend/internal/types"
)

const (
	minQuestionChars = 3
	maxQuestionChars = 1000

	// chatHistoryLimit caps how many past turns the history endpoint returns.
	chatHistoryLimit = 20
)

// AskResult bundles the persisted chat turn with the progress award earned
// for asking.
type AskResult struct {
	Chat         *types.Chat
	Progress     *types.UserProgress
	PointsEarned int
}

// ChatService answers questions about a document through the tutor model,
// keeps the per-document conversation history and voices answers on demand.
type ChatService interface {
	Ask(ctx context.Context, userID, docID uuid.UUID, question, language string, generateAudio bool) (*AskResult, error)
	History(ctx context.Context, userID, docID uuid.UUID) ([]*types.Chat, error)
	// GenerateChatAudio synthesizes the chat's answer and returns the
	// media-relative path of the stored file.
	GenerateChatAudio(ctx context.Context, userID, chatID uuid.UUID) (string, error)
}

type chatService struct {
	chatRepo    repos.ChatRepo
	docRepo     repos.DocumentRepo
	profileRepo repos.UserProfileRepo
	progress    ProgressService
	ai          AIService
	audio       AudioService
	langs       *languages.Registry
	log         *logger.Logger
}

func NewChatService(
	chatRepo repos.ChatRepo,
	docRepo repos.DocumentRepo,
	profileRepo repos.UserProfileRepo,
	progress ProgressService,
	ai AIService,
	audio AudioService,
	langs *languages.Registry,
	baseLog *logger.Logger,
) ChatService {
	return &chatService{
		chatRepo:    chatRepo,
		docRepo:     docRepo,
		profileRepo: profileRepo,
		progress:    progress,
		ai:          ai,
		audio:       audio,
		langs:       langs,
		log:         baseLog.With("service", "ChatService"),
	}
}

// Ask answers a question about a processed document and persists the turn.
// Audio back-fill and the points award are best-effort: once the answer is
// stored, neither failure surfaces to the caller.
func (cs *chatService) Ask(ctx context.Context, userID, docID uuid.UUID, question, language string, generateAudio bool) (*AskResult, error) {
	question = strings.TrimSpace(question)
	if utf8.RuneCountInString(question) < minQuestionChars {
		return nil, fmt.Errorf("%w: Question must be at least 3 characters long.", pkgerrors.ErrInvalidArgument)
	}
	if utf8.RuneCountInString(question) > maxQuestionChars {
		return nil, fmt.Errorf("%w: Question must be at most 1000 characters long.", pkgerrors.ErrInvalidArgument)
	}

	doc, err := cs.docRepo.GetByIDForUser(ctx, nil, docID, userID)
	if err != nil {
		return nil, err
	}
	if !doc.Processed || doc.TextContent == "" {
		return nil, pkgerrors.ErrDocumentNotProcessed
	}

	lang := resolveLanguage(ctx, cs.profileRepo, cs.langs, userID, language)
	answer := cs.ai.AnswerQuestion(ctx, doc.TextContent, question, lang, doc.Title)

	chat := &types.Chat{
		UserID:     userID,
		DocumentID: doc.ID,
		Question:   question,
		Answer:     answer,
		Language:   lang,
	}
	if _, err := cs.chatRepo.Create(ctx, nil, chat); err != nil {
		return nil, fmt.Errorf("failed to save chat: %w", err)
	}

	if generateAudio {
		if _, err := cs.synthesizeAnswer(ctx, chat); err != nil {
			cs.log.Warn("could not voice chat answer", "chat_id", chat.ID, "error", err)
		}
	}

	result := &AskResult{Chat: chat}
	progress, earned, err := cs.progress.RecordQuestion(ctx, userID)
	if err != nil {
		cs.log.Warn("failed to record question points", "user_id", userID, "error", err)
		return result, nil
	}
	result.Progress = progress
	result.PointsEarned = earned

	cs.log.Info("question answered", "chat_id", chat.ID, "document_id", doc.ID, "language", lang)
	return result, nil
}

// History returns the newest turns of the document's conversation,
// newest first.
func (cs *chatService) History(ctx context.Context, userID, docID uuid.UUID) ([]*types.Chat, error) {
	chats, err := cs.chatRepo.ListByDocumentForUser(ctx, nil, docID, userID, chatHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat history: %w", err)
	}
	return chats, nil
}

func (cs *chatService) GenerateChatAudio(ctx context.Context, userID, chatID uuid.UUID) (string, error) {
	chat, err := cs.chatRepo.GetByIDForUser(ctx, nil, chatID, userID)
	if err != nil {
		return "", err
	}
	return cs.synthesizeAnswer(ctx, chat)
}

// synthesizeAnswer voices the chat's answer, stores the file and records its
// path on the row. Regenerating is allowed; the superseded file stays on disk
// until the cleanup sweep collects it.
func (cs *chatService) synthesizeAnswer(ctx context.Context, chat *types.Chat) (string, error) {
	if strings.TrimSpace(chat.Answer) == "" {
		return "", fmt.Errorf("chat %s has no answer to voice", chat.ID)
	}

	filename := fmt.Sprintf("chat_%s.mp3", chat.ID)
	relPath, err := cs.audio.SynthesizeToFile(ctx, chat.Answer, chat.Language, filename)
	if err != nil {
		return "", err
	}

	if err := cs.chatRepo.UpdateAudioPath(ctx, nil, chat.ID, relPath); err != nil {
		cs.log.Error("failed to record audio path", "chat_id", chat.ID, "path", relPath, "error", err)
		return "", fmt.Errorf("failed to record audio path: %w", err)
	}
	chat.AudioPath = relPath
	return relPath, nil
}
