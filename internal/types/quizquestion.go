package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuizQuestion struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID        uuid.UUID `gorm:"type:uuid;not null;index" json:"quiz_id"`
	Quiz          *Quiz     `gorm:"constraint:OnDelete:CASCADE;foreignKey:QuizID;references:ID" json:"quiz,omitempty"`
	QuestionText  string    `gorm:"column:question_text;type:text;not null" json:"question_text"`
	OptionA       string    `gorm:"column:option_a;size:500;not null" json:"option_a"`
	OptionB       string    `gorm:"column:option_b;size:500;not null" json:"option_b"`
	OptionC       string    `gorm:"column:option_c;size:500;not null" json:"option_c"`
	OptionD       string    `gorm:"column:option_d;size:500;not null" json:"option_d"`
	CorrectAnswer string    `gorm:"column:correct_answer;size:1;not null" json:"correct_answer"`
	Explanation   string    `gorm:"column:explanation;type:text" json:"explanation"`
	Position      int       `gorm:"column:position;not null;default:0" json:"order"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
}

func (QuizQuestion) TableName() string { return "quiz_question" }

func (q *QuizQuestion) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// Option returns the text behind an answer letter, or "" for anything
// outside A-D.
func (q *QuizQuestion) Option(letter string) string {
	switch letter {
	case "A":
		return q.OptionA
	case "B":
		return q.OptionB
	case "C":
		return q.OptionC
	case "D":
		return q.OptionD
	}
	return ""
}
