package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Document struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	FilePath    string    `gorm:"column:file_path;not null" json:"file_path"`
	SizeBytes   int64     `gorm:"column:size_bytes" json:"size_bytes"`
	Language    string    `gorm:"column:language;not null;default:'en'" json:"language"`
	TextContent string    `gorm:"column:text_content;type:text" json:"text_content,omitempty"`
	Processed   bool      `gorm:"column:processed;not null;default:false" json:"processed"`
	UploadedAt  time.Time `gorm:"column:uploaded_at;not null;autoCreateTime" json:"uploaded_at"`
}

func (Document) TableName() string { return "document" }

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// WordCount is derived from the extracted text and never stored.
func (d *Document) WordCount() int {
	return len(strings.Fields(d.TextContent))
}

// PageCount counts extraction page and slide markers, never less than one.
func (d *Document) PageCount() int {
	n := strings.Count(d.TextContent, "--- Page") + strings.Count(d.TextContent, "--- Slide")
	if n < 1 {
		return 1
	}
	return n
}
