package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Summary struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"document_id"`
	Document   *Document      `gorm:"constraint:OnDelete:CASCADE;foreignKey:DocumentID;references:ID" json:"document,omitempty"`
	Content    string         `gorm:"column:content;type:text;not null" json:"content"`
	KeyPoints  datatypes.JSON `gorm:"column:key_points;type:jsonb" json:"key_points"`
	Language   string         `gorm:"column:language;not null;default:'en'" json:"language"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
}

func (Summary) TableName() string { return "summary" }

func (s *Summary) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
