// Package cache stores AI responses keyed by document content so repeated
// requests reuse earlier model output instead of calling the provider again.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Cache is a best-effort string store. Backends never surface their own
// failures: a broken backend reads as a miss and drops writes.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
}

// Feature namespaces keep the four AI features from colliding on the same
// document text.
const (
	FeatureChat       = "chat"
	FeatureSummary    = "summary"
	FeatureFlashcards = "flashcards"
	FeatureQuiz       = "quiz"
)

// TTLs per feature: chat answers are question-specific and refreshed eagerly,
// generated artifacts are stable per document and reused for a day.
const (
	ChatTTL       = time.Hour
	SummaryTTL    = 24 * time.Hour
	FlashcardsTTL = 24 * time.Hour
	QuizTTL       = 24 * time.Hour
)

// Key builds a stable, session-independent cache key from a representative
// prefix of the document text, the request parameter (question, count tag)
// and the target language.
func Key(feature, text, param, language string) string {
	prefix := text
	if len(prefix) > 1000 {
		prefix = prefix[:1000]
	}
	return fmt.Sprintf("ai:%s:%s_%s_%s", feature, hashString(prefix), hashString(param), language)
}

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:16]
}
