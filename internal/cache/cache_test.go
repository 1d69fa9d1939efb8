package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
)

func TestKeyIsStable(t *testing.T) {
	text := strings.Repeat("photosynthesis ", 200)
	a := Key(FeatureChat, text, "what is light?", "en")
	b := Key(FeatureChat, text, "what is light?", "en")
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "ai:chat:"))
}

func TestKeyUsesTextPrefixOnly(t *testing.T) {
	base := strings.Repeat("x", 1000)
	a := Key(FeatureSummary, base+"tail one", "summary", "en")
	b := Key(FeatureSummary, base+"completely different tail", "summary", "en")
	assert.Equal(t, a, b)

	// A change inside the first 1000 characters must change the key.
	c := Key(FeatureSummary, "y"+base[1:], "summary", "en")
	assert.NotEqual(t, a, c)
}

func TestKeyVariesByFeatureParamLanguage(t *testing.T) {
	text := "short document text"
	chat := Key(FeatureChat, text, "q", "en")
	quiz := Key(FeatureQuiz, text, "q", "en")
	otherParam := Key(FeatureChat, text, "different question", "en")
	otherLang := Key(FeatureChat, text, "q", "yo")

	assert.NotEqual(t, chat, quiz)
	assert.NotEqual(t, chat, otherParam)
	assert.NotEqual(t, chat, otherLang)
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	mc := NewMemoryCache(logger.NewNop())
	ctx := context.Background()

	_, ok := mc.Get(ctx, "missing")
	assert.False(t, ok)

	mc.Set(ctx, "k", "v", time.Hour)
	got, ok := mc.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache(logger.NewNop())
	ctx := context.Background()

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mc.now = func() time.Time { return current }

	mc.Set(ctx, "k", "v", time.Hour)
	_, ok := mc.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, 1, mc.Len())

	current = current.Add(2 * time.Hour)
	_, ok = mc.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, mc.Len())
}

func TestMemoryCacheIgnoresNonPositiveTTL(t *testing.T) {
	mc := NewMemoryCache(logger.NewNop())
	ctx := context.Background()

	mc.Set(ctx, "k", "v", 0)
	_, ok := mc.Get(ctx, "k")
	assert.False(t, ok)
}
