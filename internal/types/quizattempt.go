package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuizAttempt struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User             *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	QuizID           uuid.UUID `gorm:"type:uuid;not null;index" json:"quiz_id"`
	Quiz             *Quiz     `gorm:"constraint:OnDelete:CASCADE;foreignKey:QuizID;references:ID" json:"quiz,omitempty"`
	Score            int       `gorm:"column:score;not null" json:"score"`
	TotalQuestions   int       `gorm:"column:total_questions;not null" json:"total_questions"`
	CorrectAnswers   int       `gorm:"column:correct_answers;not null" json:"correct_answers"`
	TimeTakenSeconds *int      `gorm:"column:time_taken_seconds" json:"time_taken_seconds,omitempty"`
	CompletedAt      time.Time `gorm:"column:completed_at;not null;autoCreateTime" json:"completed_at"`
}

func (QuizAttempt) TableName() string { return "quiz_attempt" }

func (a *QuizAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
