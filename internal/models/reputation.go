package models

import (
	"time"
)

const (
	ReputationReasonBestAnswerAwarded = "best_answer_awarded"
	ReputationReasonBestAnswerRevoked = "best_answer_revoked"
	ReputationReasonAdminAdjustment   = "admin_adjustment"
)

// BestAnswerBonus is the fixed reputation credit for a selected best
// answer. Changing it is a versioned product decision.
const BestAnswerBonus = 10

// ReputationEvent is an append-only ledger entry. The user's
// ReputationScore is updated in the same transaction that writes the
// event, so the score is always the sum of the user's events.
type ReputationEvent struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	OrganizationID uint      `gorm:"not null;index" json:"organization_id"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	ActorID        *uint     `json:"actor_id"`
	Delta          int       `gorm:"not null" json:"delta"`
	Reason         string    `gorm:"type:varchar(50);not null" json:"reason"`
	Note           string    `gorm:"type:varchar(255)" json:"note"`
	TopicID        *uint     `gorm:"index" json:"topic_id"`
	ReplyID        *uint     `gorm:"index" json:"reply_id"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (e *ReputationEvent) TableName() string {
	return "reputation_events"
}
