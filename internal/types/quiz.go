package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Quiz struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentID uuid.UUID      `gorm:"type:uuid;not null;index" json:"document_id"`
	Document   *Document      `gorm:"constraint:OnDelete:CASCADE;foreignKey:DocumentID;references:ID" json:"document,omitempty"`
	Title      string         `gorm:"column:title;not null" json:"title"`
	Language   string         `gorm:"column:language;not null;default:'en'" json:"language"`
	Questions  []QuizQuestion `gorm:"foreignKey:QuizID;references:ID" json:"questions,omitempty"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
}

func (Quiz) TableName() string { return "quiz" }

func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}
