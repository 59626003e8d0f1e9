package models

import (
	"time"
)

const (
	TopicStatusActive  = "active"
	TopicStatusDeleted = "deleted"
)

// ForumTopic is the root of a discussion thread. Counters and the
// last-reply pointers are denormalized and only mutated inside the
// transactional write paths in the topic service.
type ForumTopic struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UUID           string     `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	OrganizationID uint       `gorm:"not null;index" json:"organization_id"`
	CategoryID     uint       `gorm:"not null;index" json:"category_id"`
	AuthorID       uint       `gorm:"not null;index" json:"author_id"`
	Title          string     `gorm:"type:varchar(200);not null" json:"title"`
	Body           string     `gorm:"type:text;not null" json:"body"`
	Tags           StringList `gorm:"type:jsonb" json:"tags"`
	Status         string     `gorm:"type:varchar(20);default:active;index" json:"status"`
	IsPinned       bool       `gorm:"default:false" json:"is_pinned"`
	IsLocked       bool       `gorm:"default:false" json:"is_locked"`
	IsFeatured     bool       `gorm:"default:false" json:"is_featured"`

	// Best-answer state: HasBestAnswer implies BestAnswerReplyID != nil
	// and vice versa. Transitions go through the best-answer service only.
	HasBestAnswer     bool  `gorm:"default:false" json:"has_best_answer"`
	BestAnswerReplyID *uint `json:"best_answer_reply_id"`

	ViewCount  int `gorm:"default:0" json:"view_count"`
	ReplyCount int `gorm:"default:0" json:"reply_count"`
	LikeCount  int `gorm:"default:0" json:"like_count"`

	LastActivityAt    time.Time `gorm:"index" json:"last_activity_at"`
	LastReplyID       *uint     `json:"last_reply_id"`
	LastReplyAuthorID *uint     `json:"last_reply_author_id"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Organization Organization  `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Category     ForumCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Author       User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Replies      []ForumReply  `gorm:"foreignKey:TopicID" json:"replies,omitempty"`
}

func (t *ForumTopic) TableName() string {
	return "forum_topics"
}

func (t *ForumTopic) IsDeleted() bool {
	return t.Status == TopicStatusDeleted
}
