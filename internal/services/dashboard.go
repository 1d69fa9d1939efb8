package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
	"github.com/bitwiseee/superstudy-backend/internal/repos"
	"github.com/bitwiseee/superstudy-backend/internal/types"
)

const (
	dashboardRecentDocuments = 5
	dashboardRecentChats     = 10
	dashboardRecentAttempts  = 5
	leaderboardSize          = 10
)

type DashboardStats struct {
	TotalDocuments   int64   `json:"total_documents"`
	TotalQuestions   int64   `json:"total_questions"`
	TotalQuizzes     int64   `json:"total_quizzes"`
	AverageQuizScore float64 `json:"average_quiz_score"`
}

// Dashboard is the student's home screen: progress with its derived badges,
// recent activity and lifetime stats.
type Dashboard struct {
	Progress        *types.UserProgress
	Badges          []Badge
	RecentDocuments []*types.Document
	RecentChats     []*types.Chat
	RecentAttempts  []*types.QuizAttempt
	Stats           DashboardStats
}

// LeaderboardEntry is the public slice of a user's progress.
type LeaderboardEntry struct {
	Username   string `json:"username"`
	Points     int    `json:"points"`
	Level      int    `json:"level"`
	Streak     int    `json:"streak"`
	BadgeCount int    `json:"badge_count"`
}

type DashboardService interface {
	Dashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error)
	Leaderboard(ctx context.Context) ([]LeaderboardEntry, error)
}

type dashboardService struct {
	progress     ProgressService
	progressRepo repos.UserProgressRepo
	docRepo      repos.DocumentRepo
	chatRepo     repos.ChatRepo
	attemptRepo  repos.QuizAttemptRepo
	log          *logger.Logger
}

func NewDashboardService(
	progress ProgressService,
	progressRepo repos.UserProgressRepo,
	docRepo repos.DocumentRepo,
	chatRepo repos.ChatRepo,
	attemptRepo repos.QuizAttemptRepo,
	baseLog *logger.Logger,
) DashboardService {
	return &dashboardService{
		progress:     progress,
		progressRepo: progressRepo,
		docRepo:      docRepo,
		chatRepo:     chatRepo,
		attemptRepo:  attemptRepo,
		log:          baseLog.With("service", "DashboardService"),
	}
}

func (ds *dashboardService) Dashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	progress, err := ds.progress.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	docs, err := ds.docRepo.ListRecentByUser(ctx, nil, userID, dashboardRecentDocuments)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent documents: %w", err)
	}
	chats, err := ds.chatRepo.ListRecentByUser(ctx, nil, userID, dashboardRecentChats)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent chats: %w", err)
	}
	attempts, err := ds.attemptRepo.ListRecentByUser(ctx, nil, userID, dashboardRecentAttempts)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent quiz attempts: %w", err)
	}

	totalDocs, err := ds.docRepo.CountByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}
	totalQuestions, err := ds.chatRepo.CountByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count chats: %w", err)
	}
	totalQuizzes, err := ds.attemptRepo.CountByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count quiz attempts: %w", err)
	}
	averageScore, err := ds.attemptRepo.AverageScoreByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to average quiz scores: %w", err)
	}

	return &Dashboard{
		Progress:        progress,
		Badges:          BadgesFor(progress),
		RecentDocuments: docs,
		RecentChats:     chats,
		RecentAttempts:  attempts,
		Stats: DashboardStats{
			TotalDocuments:   totalDocs,
			TotalQuestions:   totalQuestions,
			TotalQuizzes:     totalQuizzes,
			AverageQuizScore: averageScore,
		},
	}, nil
}

// Leaderboard lists the ten highest-scoring users. It is the one public view
// of progress, so it only carries what the scoreboard shows.
func (ds *dashboardService) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	top, err := ds.progressRepo.TopByPoints(ctx, nil, leaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(top))
	for _, p := range top {
		username := ""
		if p.User != nil {
			username = p.User.Username
		}
		entries = append(entries, LeaderboardEntry{
			Username:   username,
			Points:     p.Points,
			Level:      p.Level(),
			Streak:     p.Streak,
			BadgeCount: len(BadgesFor(p)),
		})
	}
	return entries, nil
}
