package models

import (
	"time"

	"gorm.io/gorm"
)

// Attachment stores blob metadata only. The bytes live in the external
// object store; the platform never persists raw file content.
type Attachment struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UUID           string         `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	OrganizationID uint           `gorm:"not null;index" json:"organization_id"`
	UploadedByID   uint           `gorm:"not null" json:"uploaded_by_id"`
	TopicID        *uint          `gorm:"index" json:"topic_id"`
	ReplyID        *uint          `gorm:"index" json:"reply_id"`
	FileName       string         `gorm:"type:varchar(255);not null" json:"file_name"`
	ContentType    string         `gorm:"type:varchar(100)" json:"content_type"`
	SizeBytes      int64          `gorm:"not null" json:"size_bytes"`
	SHA256         string         `gorm:"type:varchar(64)" json:"sha256"`
	StorageKey     string         `gorm:"type:varchar(500);not null" json:"storage_key"`
	URL            string         `gorm:"type:varchar(1000)" json:"url"`
	CreatedAt      time.Time      `json:"created_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (a *Attachment) TableName() string {
	return "attachments"
}
