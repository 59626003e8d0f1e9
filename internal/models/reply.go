package models

import (
	"fmt"
	"time"
)

// ForumReply is a post under a topic. Nesting is a self-reference via
// ParentReplyID; ReplyPath is a materialized path of zero-padded IDs
// ending in the reply's own ("0000000012/0000000047" for reply 47
// under reply 12), set at creation time. Padding keeps lexicographic
// order equal to numeric order, so a plain sort on the column yields
// threaded order with every subtree contiguous, and subtree queries
// are a single LIKE on the path prefix instead of a recursive walk.
type ForumReply struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	UUID           string `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	OrganizationID uint   `gorm:"not null;index" json:"organization_id"`
	TopicID        uint   `gorm:"not null;index" json:"topic_id"`
	AuthorID       uint   `gorm:"not null;index" json:"author_id"`
	ParentReplyID  *uint  `gorm:"index" json:"parent_reply_id"`
	ReplyPath      string `gorm:"type:varchar(500);index" json:"reply_path"`
	Depth          int    `gorm:"default:0" json:"depth"`
	Content        string `gorm:"type:text;not null" json:"content"`

	IsBestAnswer bool `gorm:"default:false" json:"is_best_answer"`
	IsDeleted    bool `gorm:"default:false;index" json:"is_deleted"`

	LikeCount       int `gorm:"default:0" json:"like_count"`
	ChildReplyCount int `gorm:"default:0" json:"child_reply_count"`

	EditedAt  *time.Time `json:"edited_at"`
	DeletedAt *time.Time `json:"deleted_at"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Topic  ForumTopic  `gorm:"foreignKey:TopicID" json:"topic,omitempty"`
	Author User        `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Parent *ForumReply `gorm:"foreignKey:ParentReplyID" json:"parent,omitempty"`
}

func (r *ForumReply) TableName() string {
	return "forum_replies"
}

// ReplyPathSegment renders one path segment. Ten digits covers the
// uint32 ID range.
func ReplyPathSegment(id uint) string {
	return fmt.Sprintf("%010d", id)
}

// PathUnder returns the materialized path for this reply given its
// parent's path, or the root form when there is no parent.
func (r *ForumReply) PathUnder(parentPath string) string {
	if parentPath == "" {
		return ReplyPathSegment(r.ID)
	}
	return parentPath + "/" + ReplyPathSegment(r.ID)
}

// SubtreePrefix is the LIKE prefix matching every descendant of this
// reply, excluding the reply itself.
func (r *ForumReply) SubtreePrefix() string {
	return r.ReplyPath + "/%"
}
