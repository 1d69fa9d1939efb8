package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
	"github.com/bitwiseee/superstudy-backend/internal/repos"
	"github.com/bitwiseee/superstudy-backend/internal/types"
)

func newDashboardTestEnv(t *testing.T) (DashboardService, *gorm.DB) {
	t.Helper()
	gdb := newTestDB(t)
	log := logger.NewNop()

	progressRepo := repos.NewUserProgressRepo(gdb, log)
	svc := NewDashboardService(
		NewProgressService(progressRepo, log),
		progressRepo,
		repos.NewDocumentRepo(gdb, log),
		repos.NewChatRepo(gdb, log),
		repos.NewQuizAttemptRepo(gdb, log),
		log,
	)
	return svc, gdb
}

func TestDashboardAggregates(t *testing.T) {
	svc, gdb := newDashboardTestEnv(t)
	ctx := context.Background()
	user := seedUser(t, gdb, "amina")

	base := time.Now().UTC().Add(-24 * time.Hour)

	for i := 0; i < 6; i++ {
		doc := &types.Document{
			UserID:     user.ID,
			Title:      fmt.Sprintf("doc-%d", i),
			FilePath:   fmt.Sprintf("documents/doc-%d.txt", i),
			Language:   "en",
			Processed:  true,
			UploadedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, gdb.Create(doc).Error)
	}

	var firstDoc types.Document
	require.NoError(t, gdb.Where("title = ?", "doc-0").First(&firstDoc).Error)

	for i := 0; i < 12; i++ {
		chat := &types.Chat{
			UserID:     user.ID,
			DocumentID: firstDoc.ID,
			Question:   fmt.Sprintf("q-%d", i),
			Answer:     "an answer",
			Language:   "en",
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, gdb.Create(chat).Error)
	}

	quiz := &types.Quiz{DocumentID: firstDoc.ID, Title: "Quiz: doc-0", Language: "en"}
	require.NoError(t, gdb.Create(quiz).Error)

	scores := []int{100, 80, 60, 40, 20, 90, 30}
	for i, score := range scores {
		attempt := &types.QuizAttempt{
			UserID:         user.ID,
			QuizID:         quiz.ID,
			Score:          score,
			TotalQuestions: 5,
			CorrectAnswers: score / 20,
			CompletedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, gdb.Create(attempt).Error)
	}

	dash, err := svc.Dashboard(ctx, user.ID)
	require.NoError(t, err)

	require.Len(t, dash.RecentDocuments, 5)
	assert.Equal(t, "doc-5", dash.RecentDocuments[0].Title)
	assert.Equal(t, "doc-1", dash.RecentDocuments[4].Title)

	require.Len(t, dash.RecentChats, 10)
	assert.Equal(t, "q-11", dash.RecentChats[0].Question)

	require.Len(t, dash.RecentAttempts, 5)
	assert.Equal(t, 30, dash.RecentAttempts[0].Score)
	require.NotNil(t, dash.RecentAttempts[0].Quiz)
	assert.Equal(t, "Quiz: doc-0", dash.RecentAttempts[0].Quiz.Title)

	assert.Equal(t, int64(6), dash.Stats.TotalDocuments)
	assert.Equal(t, int64(12), dash.Stats.TotalQuestions)
	assert.Equal(t, int64(7), dash.Stats.TotalQuizzes)
	assert.InDelta(t, 60.0, dash.Stats.AverageQuizScore, 0.01)
}

func TestDashboardDerivesBadges(t *testing.T) {
	svc, gdb := newDashboardTestEnv(t)
	ctx := context.Background()
	user := seedUser(t, gdb, "amina")

	progress := &types.UserProgress{
		UserID:            user.ID,
		Points:            120,
		Streak:            4,
		DocumentsUploaded: 5,
	}
	require.NoError(t, gdb.Create(progress).Error)

	dash, err := svc.Dashboard(ctx, user.ID)
	require.NoError(t, err)

	names := make([]string, 0, len(dash.Badges))
	for _, b := range dash.Badges {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"First Upload", "Document Master", "Scholar", "Consistent"}, names)
}

func TestDashboardEmptyUser(t *testing.T) {
	svc, gdb := newDashboardTestEnv(t)
	ctx := context.Background()
	user := seedUser(t, gdb, "newcomer")

	dash, err := svc.Dashboard(ctx, user.ID)
	require.NoError(t, err)

	assert.Zero(t, dash.Progress.Points)
	assert.Empty(t, dash.Badges)
	assert.Empty(t, dash.RecentDocuments)
	assert.Empty(t, dash.RecentChats)
	assert.Empty(t, dash.RecentAttempts)
	assert.Zero(t, dash.Stats.TotalDocuments)
	assert.Zero(t, dash.Stats.AverageQuizScore)

	// The dashboard visit created the progress row.
	var count int64
	require.NoError(t, gdb.Model(&types.UserProgress{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestLeaderboardOrdersAndLimits(t *testing.T) {
	svc, gdb := newDashboardTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		user := seedUser(t, gdb, fmt.Sprintf("player-%d", i))
		progress := &types.UserProgress{
			UserID: user.ID,
			Points: i * 10,
			Streak: i,
		}
		require.NoError(t, gdb.Create(progress).Error)
	}

	entries, err := svc.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 10)

	assert.Equal(t, "player-11", entries[0].Username)
	assert.Equal(t, 110, entries[0].Points)
	assert.Equal(t, 2, entries[0].Level)
	assert.Equal(t, 11, entries[0].Streak)
	// 110 points and an 11-day streak earn Scholar, Consistent and Week Warrior.
	assert.Equal(t, 3, entries[0].BadgeCount)

	for i := 1; i < len(entries); i++ {
		assert.GreaterOrEqual(t, entries[i-1].Points, entries[i].Points)
	}
}

func TestLeaderboardEmpty(t *testing.T) {
	svc, _ := newDashboardTestEnv(t)

	entries, err := svc.Leaderboard(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
