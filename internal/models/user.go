package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

const (
	UserStatusPending = "pending"
	UserStatusActive  = "active"
)

type User struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	UUID              string         `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	OrganizationID    uint           `gorm:"not null;index" json:"organization_id"`
	Email             string         `gorm:"type:varchar(255);not null;unique" json:"email" validate:"required,email"`
	FirstName         string         `gorm:"type:varchar(100)" json:"first_name"`
	LastName          string         `gorm:"type:varchar(100)" json:"last_name"`
	JobTitle          string         `gorm:"type:varchar(150)" json:"job_title"`
	Role              string         `gorm:"type:varchar(50);default:member" json:"role"`
	Status            string         `gorm:"type:varchar(50);default:pending" json:"status"`
	IsVerified        bool           `gorm:"default:false" json:"is_verified"`
	ReputationScore   int            `gorm:"default:0" json:"reputation_score"`
	ForumTopicsCount  int            `gorm:"default:0" json:"forum_topics_count"`
	ForumRepliesCount int            `gorm:"default:0" json:"forum_replies_count"`
	// ExternalID references the account at the delegated identity provider.
	ExternalID  *string        `gorm:"type:varchar(255);index" json:"external_id"`
	Settings    JSON           `gorm:"type:jsonb" json:"settings"`
	LastLoginAt *time.Time     `json:"last_login_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}

func (u *User) TableName() string {
	return "users"
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
