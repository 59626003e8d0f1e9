package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	InvitationStatusPending  = "pending"
	InvitationStatusAccepted = "accepted"
	InvitationStatusExpired  = "expired"
)

type UserInvitation struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	OrganizationID uint           `gorm:"not null;index" json:"organization_id"`
	InvitedByID    uint           `gorm:"not null" json:"invited_by_id"`
	Email          string         `gorm:"type:varchar(255);not null;index" json:"email" validate:"required,email"`
	Role           string         `gorm:"type:varchar(50);default:member" json:"role"`
	Token          string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	Status         string         `gorm:"type:varchar(50);default:pending" json:"status"`
	ExpiresAt      time.Time      `gorm:"not null" json:"expires_at"`
	AcceptedAt     *time.Time     `json:"accepted_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	InvitedBy    User         `gorm:"foreignKey:InvitedByID" json:"invited_by,omitempty"`
}

func (i *UserInvitation) TableName() string {
	return "user_invitations"
}

func (i *UserInvitation) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}
