package models

import (
	"time"
)

type CategoryType string

const (
	CategoryAutomation  CategoryType = "automation"
	CategoryQuality     CategoryType = "quality_management"
	CategoryMaintenance CategoryType = "maintenance"
	CategoryAI          CategoryType = "ai"
	CategoryIoT         CategoryType = "iot"
	CategoryGeneral     CategoryType = "general"
)

// ForumCategory is global reference data, shared across all tenants.
// TopicCount and PostCount are write-through denormalized counters;
// the reconciler recomputes them from live rows to correct drift.
type ForumCategory struct {
	ID                   uint         `gorm:"primaryKey" json:"id"`
	Name                 string       `gorm:"type:varchar(150);not null" json:"name"`
	Slug                 string       `gorm:"type:varchar(150);uniqueIndex;not null" json:"slug"`
	Description          string       `gorm:"type:text" json:"description"`
	Type                 CategoryType `gorm:"type:varchar(50);default:general;index" json:"type"`
	Color                string       `gorm:"type:varchar(20)" json:"color"`
	Icon                 string       `gorm:"type:varchar(50)" json:"icon"`
	IsActive             bool         `gorm:"default:true;index" json:"is_active"`
	RequiresVerification bool         `gorm:"default:false" json:"requires_verification"`
	SortOrder            int          `gorm:"default:0" json:"sort_order"`
	TopicCount           int          `gorm:"default:0" json:"topic_count"`
	PostCount            int          `gorm:"default:0" json:"post_count"`
	CreatedAt            time.Time    `json:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at"`
}

func (c *ForumCategory) TableName() string {
	return "forum_categories"
}
