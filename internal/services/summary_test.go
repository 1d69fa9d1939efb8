package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bitwiseee/superstudy-backend/internal/cache"
	"github.com/bitwiseee/superstudy-backend/internal/languages"
	pkgerrors "github.com/bitwiseee/superstudy-backend/internal/pkg/errors"
	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
	"github.com/bitwiseee/superstudy-backend/internal/repos"
	"github.com/bitwiseee/superstudy-backend/internal/types"
)

const summaryFixture = `SUMMARY:
Plants convert light energy into chemical energy through photosynthesis.
The reactions take place inside chloroplasts.

KEY POINTS:
- Chlorophyll absorbs light
- Water molecules are split into oxygen
- Glucose stores the captured energy`

type summaryTestEnv struct {
	svc    SummaryService
	gdb    *gorm.DB
	gemini *fakeGeminiClient
}

func newSummaryTestEnv(t *testing.T) *summaryTestEnv {
	t.Helper()
	gdb := newTestDB(t)
	log := logger.NewNop()
	langs, err := languages.NewRegistry()
	require.NoError(t, err)

	gemini := &fakeGeminiClient{respond: func(string) (string, error) { return summaryFixture, nil }}
	svc := NewSummaryService(
		repos.NewSummaryRepo(gdb, log),
		repos.NewDocumentRepo(gdb, log),
		repos.NewUserProfileRepo(gdb, log),
		NewProgressService(repos.NewUserProgressRepo(gdb, log), log),
		NewAIService(gemini, cache.NewMemoryCache(log), langs, log),
		langs,
		log,
	)
	return &summaryTestEnv{svc: svc, gdb: gdb, gemini: gemini}
}

func TestGenerateSummaryRoundTrip(t *testing.T) {
	env := newSummaryTestEnv(t)
	ctx := context.Background()
	user := seedUser(t, env.gdb, "amina")
	doc := seedDocument(t, env.gdb, user, "biology")

	res, err := env.svc.Generate(ctx, user.ID, doc.ID, "")
	require.NoError(t, err)

	assert.True(t, res.Created)
	assert.Equal(t, 8, res.PointsEarned)
	require.NotNil(t, res.Progress)
	assert.Equal(t, 1, res.Progress.SummariesGenerated)
	assert.Equal(t, 8, res.Progress.Points)

	assert.Contains(t, res.Summary.Content, "photosynthesis")
	assert.Equal(t, "en", res.Summary.Language)

	var keyPoints []string
	require.NoError(t, json.Unmarshal(res.Summary.KeyPoints, &keyPoints))
	assert.Equal(t, []string{
		"Chlorophyll absorbs light",
		"Water molecules are split into oxygen",
		"Glucose stores the captured energy",
	}, keyPoints)

	stored, err := env.svc.Get(ctx, user.ID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Summary.ID, stored.ID)
}

func TestGenerateSummaryIdempotent(t *testing.T) {
	env := newSummaryTestEnv(t)
	ctx := context.Background()
	user := seedUser(t, env.gdb, "amina")
	doc := seedDocument(t, env.gdb, user, "biology")

	first, err := env.svc.Generate(ctx, user.ID, doc.ID, "")
	require.NoError(t, err)
	require.True(t, first.Created)

	second, err := env.svc.Generate(ctx, user.ID, doc.ID, "")
	require.NoError(t, err)

	assert.False(t, second.Created)
	assert.Zero(t, second.PointsEarned)
	assert.Nil(t, second.Progress)
	assert.Equal(t, first.Summary.ID, second.Summary.ID)
	assert.Equal(t, 1, env.gemini.callCount())
}

func TestGenerateSummaryRejectsUnprocessed(t *testing.T) {
	env := newSummaryTestEnv(t)
	ctx := context.Background()
	user := seedUser(t, env.gdb, "amina")

	pending := &types.Document{
		UserID:   user.ID,
		Title:    "pending.pdf",
		FilePath: "documents/pending.pdf",
		Language: "en",
	}
	require.NoError(t, env.gdb.Create(pending).Error)

	_, err := env.svc.Generate(ctx, user.ID, pending.ID, "")
	assert.ErrorIs(t, err, pkgerrors.ErrDocumentNotProcessed)
}

func TestGenerateSummaryMalformedOutput(t *testing.T) {
	env := newSummaryTestEnv(t)
	ctx := context.Background()
	user := seedUser(t, env.gdb, "amina")
	doc := seedDocument(t, env.gdb, user, "biology")

	env.gemini.respond = func(string) (string, error) {
		return "Here is some unstructured prose about the topic.", nil
	}

	_, err := env.svc.Generate(ctx, user.ID, doc.ID, "")
	require.ErrorIs(t, err, pkgerrors.ErrGenerationFormat)

	var count int64
	require.NoError(t, env.gdb.Model(&types.Summary{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGenerateSummaryLanguageResolution(t *testing.T) {
	env := newSummaryTestEnv(t)
	ctx := context.Background()
	user := seedUser(t, env.gdb, "amina")
	doc := seedDocument(t, env.gdb, user, "history")
	require.NoError(t, env.gdb.Create(&types.UserProfile{UserID: user.ID, PreferredLanguage: "ig"}).Error)

	res, err := env.svc.Generate(ctx, user.ID, doc.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "ig", res.Summary.Language)
	assert.Contains(t, env.gemini.lastPrompt, "Respond in Igbo")
}

func TestGetSummaryNotFound(t *testing.T) {
	env := newSummaryTestEnv(t)
	ctx := context.Background()
	user := seedUser(t, env.gdb, "amina")
	doc := seedDocument(t, env.gdb, user, "biology")

	_, err := env.svc.Get(ctx, user.ID, doc.ID)
	require.ErrorIs(t, err, pkgerrors.ErrNotFound)
	assert.Contains(t, err.Error(), "Generate one first.")
}

func TestSummaryScopedToOwner(t *testing.T) {
	env := newSummaryTestEnv(t)
	ctx := context.Background()
	owner := seedUser(t, env.gdb, "owner")
	other := seedUser(t, env.gdb, "other")
	doc := seedDocument(t, env.gdb, owner, "private")

	_, err := env.svc.Generate(ctx, other.ID, doc.ID, "")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = env.svc.Get(ctx, other.ID, doc.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
