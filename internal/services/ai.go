package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bitwiseee/superstudy-backend/internal/cache"
	"github.com/bitwiseee/superstudy-backend/internal/languages"
	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
)

// maxContextChars caps the document text embedded in a prompt. The model's
// context window takes far more, this keeps requests comfortably bounded.
const maxContextChars = 500000

// AnswerFallback is returned to students whenever the model cannot be
// reached; the chat flow never surfaces a raw error.
const AnswerFallback = "I encountered an error analyzing the document. Please try again."

// AIService builds prompts, consults the response cache and calls the model.
// Raw model output is returned as-is; parsing into records belongs to the
// feature services that persist results.
type AIService interface {
	AnswerQuestion(ctx context.Context, docText, question, language, title string) string
	GenerateSummary(ctx context.Context, docText, language string) (string, error)
	GenerateFlashcards(ctx context.Context, docText string, count int, language string) (string, error)
	GenerateQuiz(ctx context.Context, docText string, count int, language string) (string, error)
}

type aiService struct {
	client GeminiClient
	cache  cache.Cache
	langs  *languages.Registry
	flight singleflight.Group
	log    *logger.Logger
}

func NewAIService(client GeminiClient, responseCache cache.Cache, langs *languages.Registry, baseLog *logger.Logger) AIService {
	return &aiService{
		client: client,
		cache:  responseCache,
		langs:  langs,
		log:    baseLog.With("service", "AIService"),
	}
}

func (s *aiService) AnswerQuestion(ctx context.Context, docText, question, language, title string) string {
	prompt := s.answerPrompt(docText, question, language, title)
	cfg := &GenerationConfig{Temperature: floatPtr(0.3), MaxOutputTokens: intPtr(1000)}

	answer, err := s.generate(ctx, cache.FeatureChat, docText, question, language, prompt, cfg, cache.ChatTTL)
	if err != nil {
		s.log.Error("Failed to answer question", "language", language, "error", err)
		return AnswerFallback
	}
	return answer
}

func (s *aiService) GenerateSummary(ctx context.Context, docText, language string) (string, error) {
	prompt := s.summaryPrompt(docText, language)
	cfg := &GenerationConfig{Temperature: floatPtr(0.3), MaxOutputTokens: intPtr(1000)}
	return s.generate(ctx, cache.FeatureSummary, docText, "summary", language, prompt, cfg, cache.SummaryTTL)
}

func (s *aiService) GenerateFlashcards(ctx context.Context, docText string, count int, language string) (string, error) {
	prompt := s.flashcardsPrompt(docText, count, language)
	param := fmt.Sprintf("flashcards:%d", count)
	return s.generate(ctx, cache.FeatureFlashcards, docText, param, language, prompt, nil, cache.FlashcardsTTL)
}

func (s *aiService) GenerateQuiz(ctx context.Context, docText string, count int, language string) (string, error) {
	prompt := s.quizPrompt(docText, count, language)
	param := fmt.Sprintf("quiz:%d", count)
	return s.generate(ctx, cache.FeatureQuiz, docText, param, language, prompt, nil, cache.QuizTTL)
}

// generate is the shared cache-then-call path. Identical in-flight requests
// collapse onto one model call via singleflight, and only successful output
// is cached.
func (s *aiService) generate(ctx context.Context, feature, docText, param, language, prompt string, cfg *GenerationConfig, ttl time.Duration) (string, error) {
	key := cache.Key(feature, docText, param, language)

	if cached, ok := s.cache.Get(ctx, key); ok {
		s.log.Debug("Returning cached AI response", "feature", feature)
		return cached, nil
	}

	result, err, _ := s.flight.Do(key, func() (interface{}, error) {
		if cached, ok := s.cache.Get(ctx, key); ok {
			return cached, nil
		}
		out, err := s.client.GenerateContent(ctx, prompt, cfg)
		if err != nil {
			return nil, err
		}
		s.cache.Set(ctx, key, out, ttl)
		return out, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (s *aiService) answerPrompt(docText, question, language, title string) string {
	return fmt.Sprintf(`You are an AI tutor for African students. Use the provided document to answer the question.

Document Title: %s

Document Content:
%s

---
User Question: %s
---

Instructions:
1. Answer primarily based on the document content.
2. Be educational, encouraging, and clear.
3. Use African context/examples where applicable.
4. Respond in %s.`, title, truncateContext(docText), question, s.langs.Name(language))
}

func (s *aiService) summaryPrompt(docText, language string) string {
	return fmt.Sprintf(`Analyze this document and produce a structured summary.

Document Content:
%s

Respond in %s using exactly this format:

SUMMARY:
[2-3 paragraph summary of the document]

KEY POINTS:
- [key point]
- [key point]
- [key point]
- [key point]
- [key point]`, truncateContext(docText), s.langs.Name(language))
}

func (s *aiService) flashcardsPrompt(docText string, count int, language string) string {
	return fmt.Sprintf(`Create %d study flashcards based on this text.

Text:
%s

Respond in %s using exactly this format:

Card 1:
Q: [question]
A: [answer]

Card 2:
Q: [question]
A: [answer]`, count, truncateContext(docText), s.langs.Name(language))
}

func (s *aiService) quizPrompt(docText string, count int, language string) string {
	return fmt.Sprintf(`Create %d multiple-choice questions based on this text.

Text:
%s

Respond in %s using exactly this format:
Q: [Question]
A) [Option]
B) [Option]
C) [Option]
D) [Option]
Correct: [Answer letter]
Explanation: [Brief explanation]`, count, truncateContext(docText), s.langs.Name(language))
}

func truncateContext(docText string) string {
	if len(docText) > maxContextChars {
		return docText[:maxContextChars]
	}
	return docText
}

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }
