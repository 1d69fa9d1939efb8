package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bitwiseee/superstudy-backend/internal/pkg/logger"
	"github.com/bitwiseee/superstudy-backend/internal/repos"
	"github.com/bitwiseee/superstudy-backend/internal/types"
)

// Point awards per action.
const (
	PointsUpload     = 10
	PointsQuestion   = 5
	PointsSummary    = 8
	PointsFlashcards = 7
)

type Badge struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type badgeRule struct {
	badge     Badge
	threshold int
	counter   func(p *types.UserProgress) int
}

// badgeRules is ordered; earned badges always come out in this order, and a
// profile whose counters only grow can never lose one.
var badgeRules = []badgeRule{
	{Badge{"First Upload", "📄"}, 1, func(p *types.UserProgress) int { return p.DocumentsUploaded }},
	{Badge{"Document Master", "📚"}, 5, func(p *types.UserProgress) int { return p.DocumentsUploaded }},
	{Badge{"Library Builder", "🏛️"}, 20, func(p *types.UserProgress) int { return p.DocumentsUploaded }},
	{Badge{"Curious Learner", "🤔"}, 10, func(p *types.UserProgress) int { return p.QuestionsAsked }},
	{Badge{"Question Pro", "❓"}, 50, func(p *types.UserProgress) int { return p.QuestionsAsked }},
	{Badge{"Inquisitive Mind", "🧠"}, 100, func(p *types.UserProgress) int { return p.QuestionsAsked }},
	{Badge{"Quiz Taker", "📝"}, 5, func(p *types.UserProgress) int { return p.QuizzesCompleted }},
	{Badge{"Quiz Master", "🎓"}, 20, func(p *types.UserProgress) int { return p.QuizzesCompleted }},
	{Badge{"Test Champion", "🏆"}, 50, func(p *types.UserProgress) int { return p.QuizzesCompleted }},
	{Badge{"Scholar", "📖"}, 100, func(p *types.UserProgress) int { return p.Points }},
	{Badge{"Genius", "💡"}, 500, func(p *types.UserProgress) int { return p.Points }},
	{Badge{"Legend", "⭐"}, 1000, func(p *types.UserProgress) int { return p.Points }},
	{Badge{"Consistent", "🔥"}, 3, func(p *types.UserProgress) int { return p.Streak }},
	{Badge{"Week Warrior", "⚡"}, 7, func(p *types.UserProgress) int { return p.Streak }},
	{Badge{"Monthly Master", "🌟"}, 30, func(p *types.UserProgress) int { return p.Streak }},
	{Badge{"Flashcard Fan", "🃏"}, 10, func(p *types.UserProgress) int { return p.FlashcardsCreated }},
	{Badge{"Summary Seeker", "📋"}, 5, func(p *types.UserProgress) int { return p.SummariesGenerated }},
}

// BadgesFor derives the earned badges from a progress row.
func BadgesFor(p *types.UserProgress) []Badge {
	badges := make([]Badge, 0, len(badgeRules))
	for _, rule := range badgeRules {
		if rule.counter(p) >= rule.threshold {
			badges = append(badges, rule.badge)
		}
	}
	return badges
}

// QuizPoints maps a quiz score to its point award.
func QuizPoints(score int) int {
	switch {
	case score >= 80:
		return 15
	case score >= 60:
		return 10
	default:
		return 5
	}
}

// ProgressService is the gamification engine: every rewarded action flows
// through one of the Record methods, which bump the relevant counter, add
// points and advance the daily streak.
type ProgressService interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*types.UserProgress, error)
	RecordUpload(ctx context.Context, userID uuid.UUID) (*types.UserProgress, int, error)
	RecordQuestion(ctx context.Context, userID uuid.UUID) (*types.UserProgress, int, error)
	RecordSummary(ctx context.Context, userID uuid.UUID) (*types.UserProgress, int, error)
	RecordFlashcards(ctx context.Context, userID uuid.UUID, count int) (*types.UserProgress, int, error)
	RecordQuizCompletion(ctx context.Context, userID uuid.UUID, score int) (*types.UserProgress, int, error)
}

type progressService struct {
	progressRepo repos.UserProgressRepo
	now          func() time.Time
	log          *logger.Logger
}

func NewProgressService(progressRepo repos.UserProgressRepo, baseLog *logger.Logger) ProgressService {
	return &progressService{
		progressRepo: progressRepo,
		now:          time.Now,
		log:          baseLog.With("service", "ProgressService"),
	}
}

func (s *progressService) GetOrCreate(ctx context.Context, userID uuid.UUID) (*types.UserProgress, error) {
	progress, err := s.progressRepo.GetByUserID(ctx, nil, userID)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created, createErr := s.progressRepo.Create(ctx, nil, &types.UserProgress{UserID: userID})
	if createErr != nil {
		// Lost a creation race on the unique user index; the winner's row
		// is the one to use.
		if progress, err = s.progressRepo.GetByUserID(ctx, nil, userID); err == nil {
			return progress, nil
		}
		return nil, createErr
	}
	return created, nil
}

func (s *progressService) RecordUpload(ctx context.Context, userID uuid.UUID) (*types.UserProgress, int, error) {
	return s.record(ctx, userID, PointsUpload, func(p *types.UserProgress) {
		p.DocumentsUploaded++
	})
}

func (s *progressService) RecordQuestion(ctx context.Context, userID uuid.UUID) (*types.UserProgress, int, error) {
	return s.record(ctx, userID, PointsQuestion, func(p *types.UserProgress) {
		p.QuestionsAsked++
	})
}

func (s *progressService) RecordSummary(ctx context.Context, userID uuid.UUID) (*types.UserProgress, int, error) {
	return s.record(ctx, userID, PointsSummary, func(p *types.UserProgress) {
		p.SummariesGenerated++
	})
}

// RecordFlashcards awards a flat amount regardless of how many cards were
// generated; the counter still tracks the real count.
func (s *progressService) RecordFlashcards(ctx context.Context, userID uuid.UUID, count int) (*types.UserProgress, int, error) {
	return s.record(ctx, userID, PointsFlashcards, func(p *types.UserProgress) {
		p.FlashcardsCreated += count
	})
}

func (s *progressService) RecordQuizCompletion(ctx context.Context, userID uuid.UUID, score int) (*types.UserProgress, int, error) {
	return s.record(ctx, userID, QuizPoints(score), func(p *types.UserProgress) {
		p.QuizzesCompleted++
	})
}

func (s *progressService) record(ctx context.Context, userID uuid.UUID, points int, apply func(*types.UserProgress)) (*types.UserProgress, int, error) {
	progress, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	apply(progress)
	applyPoints(progress, points, s.now())

	if err := s.progressRepo.Save(ctx, nil, progress); err != nil {
		return nil, 0, err
	}
	return progress, points, nil
}

// applyPoints adds the award and advances the streak on day boundaries: a
// second action on the same day changes nothing, activity on the very next
// day extends the streak, any longer gap restarts it.
func applyPoints(p *types.UserProgress, points int, now time.Time) {
	p.Points += points

	today := now.UTC().Truncate(24 * time.Hour)
	yesterday := today.AddDate(0, 0, -1)

	if p.LastActivity == nil {
		p.Streak = 1
	} else {
		last := p.LastActivity.UTC().Truncate(24 * time.Hour)
		switch {
		case last.Equal(today):
			// already counted today
		case last.Equal(yesterday):
			p.Streak++
		default:
			p.Streak = 1
		}
	}
	p.LastActivity = &today
}
