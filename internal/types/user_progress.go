package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserProgress accumulates lifetime activity counters for gamification.
// Points and streak are stored; level and badges are always derived from the
// counters so they can never drift out of sync.
type UserProgress struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User               *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Points             int        `gorm:"column:points;not null;default:0" json:"points"`
	Streak             int        `gorm:"column:streak;not null;default:0" json:"streak"`
	LastActivity       *time.Time `gorm:"column:last_activity;type:date" json:"last_activity,omitempty"`
	DocumentsUploaded  int        `gorm:"column:documents_uploaded;not null;default:0" json:"documents_uploaded"`
	QuestionsAsked     int        `gorm:"column:questions_asked;not null;default:0" json:"questions_asked"`
	QuizzesCompleted   int        `gorm:"column:quizzes_completed;not null;default:0" json:"quizzes_completed"`
	FlashcardsCreated  int        `gorm:"column:flashcards_created;not null;default:0" json:"flashcards_created"`
	SummariesGenerated int        `gorm:"column:summaries_generated;not null;default:0" json:"summaries_generated"`
	CreatedAt          time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"not null" json:"updated_at"`
}

func (UserProgress) TableName() string { return "user_progress" }

func (p *UserProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Level is one rank per 50 points.
func (p *UserProgress) Level() int {
	return p.Points / 50
}
