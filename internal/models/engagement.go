package models

import (
	"time"
)

// ForumTopicLike enforces at-most-one like per (topic, user) via the
// composite unique index. Toggling deletes the row instead of erroring.
type ForumTopicLike struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	OrganizationID uint      `gorm:"not null;index" json:"organization_id"`
	TopicID        uint      `gorm:"not null;uniqueIndex:uk_topic_like" json:"topic_id"`
	UserID         uint      `gorm:"not null;uniqueIndex:uk_topic_like" json:"user_id"`
	CreatedAt      time.Time `json:"created_at"`
}

func (l *ForumTopicLike) TableName() string {
	return "forum_topic_likes"
}

type ForumReplyLike struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	OrganizationID uint      `gorm:"not null;index" json:"organization_id"`
	ReplyID        uint      `gorm:"not null;uniqueIndex:uk_reply_like" json:"reply_id"`
	UserID         uint      `gorm:"not null;uniqueIndex:uk_reply_like" json:"user_id"`
	CreatedAt      time.Time `json:"created_at"`
}

func (l *ForumReplyLike) TableName() string {
	return "forum_reply_likes"
}

// ForumTopicView is an append-only view event. Views are never
// deduplicated at write time; unique-viewer reporting is a grouped
// query over this table.
type ForumTopicView struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	OrganizationID uint      `gorm:"not null;index" json:"organization_id"`
	TopicID        uint      `gorm:"not null;index" json:"topic_id"`
	UserID         *uint     `gorm:"index" json:"user_id"`
	IPAddress      string    `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent      string    `gorm:"type:varchar(500)" json:"user_agent"`
	CreatedAt      time.Time `json:"created_at"`
}

func (v *ForumTopicView) TableName() string {
	return "forum_topic_views"
}

type ForumBookmark struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	OrganizationID uint      `gorm:"not null;index" json:"organization_id"`
	TopicID        uint      `gorm:"not null;uniqueIndex:uk_bookmark" json:"topic_id"`
	UserID         uint      `gorm:"not null;uniqueIndex:uk_bookmark" json:"user_id"`
	CreatedAt      time.Time `json:"created_at"`

	Topic ForumTopic `gorm:"foreignKey:TopicID" json:"topic,omitempty"`
}

func (b *ForumBookmark) TableName() string {
	return "forum_bookmarks"
}
