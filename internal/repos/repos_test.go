package repos

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bitwiseee/superstudy-backend/internal/db"
	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
	"github.com/bitwiseee/superstudy-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.NewSQLiteMemory(strings.ReplaceAll(t.Name(), "/", "_"))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func seedUser(t *testing.T, gdb *gorm.DB, username string) *types.User {
	t.Helper()
	user := &types.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
	}
	require.NoError(t, gdb.Create(user).Error)
	return user
}

func seedDocument(t *testing.T, gdb *gorm.DB, user *types.User, title string) *types.Document {
	t.Helper()
	doc := &types.Document{
		UserID:      user.ID,
		Title:       title,
		FilePath:    "documents/" + title + ".txt",
		Language:    "en",
		TextContent: "the quick brown fox jumps over the lazy dog near the river",
		Processed:   true,
	}
	require.NoError(t, gdb.Create(doc).Error)
	return doc
}

func TestDocumentDeleteCascades(t *testing.T) {
	gdb := newTestDB(t)
	log := logger.NewNop()
	ctx := context.Background()

	user := seedUser(t, gdb, "amina")
	doc := seedDocument(t, gdb, user, "biology-notes")

	require.NoError(t, gdb.Create(&types.Summary{
		DocumentID: doc.ID,
		Content:    "A short summary.",
		Language:   "en",
	}).Error)
	require.NoError(t, gdb.Create(&types.Flashcard{
		DocumentID: doc.ID,
		Question:   "What is a cell?",
		Answer:     "The basic unit of life.",
		Language:   "en",
	}).Error)
	quiz := &types.Quiz{DocumentID: doc.ID, Title: "Quiz: biology-notes", Language: "en"}
	require.NoError(t, gdb.Create(quiz).Error)
	require.NoError(t, gdb.Create(&types.QuizQuestion{
		QuizID:        quiz.ID,
		QuestionText:  "What is the powerhouse of the cell?",
		OptionA:       "Nucleus",
		OptionB:       "Mitochondria",
		OptionC:       "Ribosome",
		OptionD:       "Chloroplast",
		CorrectAnswer: "B",
	}).Error)
	require.NoError(t, gdb.Create(&types.Chat{
		UserID:     user.ID,
		DocumentID: doc.ID,
		Question:   "Explain photosynthesis",
		Answer:     "Plants convert light into energy.",
		Language:   "en",
	}).Error)

	docRepo := NewDocumentRepo(gdb, log)
	require.NoError(t, docRepo.Delete(ctx, nil, doc.ID))

	for _, probe := range []struct {
		name  string
		model interface{}
	}{
		{"summary", &types.Summary{}},
		{"flashcard", &types.Flashcard{}},
		{"quiz", &types.Quiz{}},
		{"quiz_question", &types.QuizQuestion{}},
		{"chat", &types.Chat{}},
	} {
		var count int64
		require.NoError(t, gdb.Model(probe.model).Count(&count).Error)
		assert.Zero(t, count, probe.name)
	}
}

func TestDocumentOwnershipScoping(t *testing.T) {
	gdb := newTestDB(t)
	log := logger.NewNop()
	ctx := context.Background()

	owner := seedUser(t, gdb, "kemi")
	other := seedUser(t, gdb, "tunde")
	doc := seedDocument(t, gdb, owner, "chemistry-notes")

	docRepo := NewDocumentRepo(gdb, log)

	got, err := docRepo.GetByIDForUser(ctx, nil, doc.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)

	_, err = docRepo.GetByIDForUser(ctx, nil, doc.ID, other.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestQuizOwnershipThroughDocument(t *testing.T) {
	gdb := newTestDB(t)
	log := logger.NewNop()
	ctx := context.Background()

	owner := seedUser(t, gdb, "chidi")
	other := seedUser(t, gdb, "ngozi")
	doc := seedDocument(t, gdb, owner, "physics-notes")

	quiz := &types.Quiz{DocumentID: doc.ID, Title: "Quiz: physics-notes", Language: "en"}
	require.NoError(t, gdb.Create(quiz).Error)
	require.NoError(t, gdb.Create(&types.QuizQuestion{
		QuizID:        quiz.ID,
		QuestionText:  "What is the SI unit of force?",
		OptionA:       "Joule",
		OptionB:       "Watt",
		OptionC:       "Newton",
		OptionD:       "Pascal",
		CorrectAnswer: "C",
		Position:      0,
	}).Error)

	quizRepo := NewQuizRepo(gdb, log)

	got, err := quizRepo.GetByIDForUser(ctx, nil, quiz.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, got.Questions, 1)
	assert.Equal(t, "C", got.Questions[0].CorrectAnswer)

	_, err = quizRepo.GetByIDForUser(ctx, nil, quiz.ID, other.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFlashcardReplaceSet(t *testing.T) {
	gdb := newTestDB(t)
	log := logger.NewNop()
	ctx := context.Background()

	user := seedUser(t, gdb, "sade")
	doc := seedDocument(t, gdb, user, "history-notes")

	cardRepo := NewFlashcardRepo(gdb, log)

	first := []*types.Flashcard{
		{DocumentID: doc.ID, Question: "Q1", Answer: "A1", Language: "en", Position: 0},
		{DocumentID: doc.ID, Question: "Q2", Answer: "A2", Language: "en", Position: 1},
	}
	_, err := cardRepo.CreateMany(ctx, nil, first)
	require.NoError(t, err)

	require.NoError(t, cardRepo.DeleteByDocument(ctx, nil, doc.ID))
	second := []*types.Flashcard{
		{DocumentID: doc.ID, Question: "Q3", Answer: "A3", Language: "en", Position: 0},
	}
	_, err = cardRepo.CreateMany(ctx, nil, second)
	require.NoError(t, err)

	cards, err := cardRepo.ListByDocument(ctx, nil, doc.ID)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "Q3", cards[0].Question)
}

func TestTopByPointsOrdering(t *testing.T) {
	gdb := newTestDB(t)
	log := logger.NewNop()
	ctx := context.Background()

	low := seedUser(t, gdb, "low")
	mid := seedUser(t, gdb, "mid")
	high := seedUser(t, gdb, "high")

	progressRepo := NewUserProgressRepo(gdb, log)
	for user, points := range map[*types.User]int{low: 10, mid: 60, high: 200} {
		_, err := progressRepo.Create(ctx, nil, &types.UserProgress{UserID: user.ID, Points: points})
		require.NoError(t, err)
	}

	top, err := progressRepo.TopByPoints(ctx, nil, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, 200, top[0].Points)
	require.NotNil(t, top[0].User)
	assert.Equal(t, "high", top[0].User.Username)
	assert.Equal(t, 60, top[1].Points)
}

func TestAverageScoreByUserEmpty(t *testing.T) {
	gdb := newTestDB(t)
	log := logger.NewNop()
	ctx := context.Background()

	user := seedUser(t, gdb, "empty")

	attemptRepo := NewQuizAttemptRepo(gdb, log)
	avg, err := attemptRepo.AverageScoreByUser(ctx, nil, user.ID)
	require.NoError(t, err)
	assert.Zero(t, avg)
}
