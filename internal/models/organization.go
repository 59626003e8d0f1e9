package models

import (
	"time"

	"gorm.io/gorm"
)

type SubscriptionTier string

const (
	TierFree       SubscriptionTier = "free"
	TierStandard   SubscriptionTier = "standard"
	TierEnterprise SubscriptionTier = "enterprise"
)

type Organization struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	UUID             string           `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	Name             string           `gorm:"type:varchar(255);not null;unique" json:"name" validate:"required,min=1,max=255"`
	Slug             string           `gorm:"type:varchar(100);unique;not null" json:"slug" validate:"required"`
	ContactEmail     string           `gorm:"type:varchar(255);not null" json:"contact_email" validate:"required,email"`
	Industry         string           `gorm:"type:varchar(100)" json:"industry"`
	SubscriptionTier SubscriptionTier `gorm:"type:varchar(50);default:free" json:"subscription_tier"`
	MaxUsers         int              `gorm:"default:25" json:"max_users"`
	MaxStorageMB     int              `gorm:"default:1024" json:"max_storage_mb"`
	Settings         JSON             `gorm:"type:jsonb" json:"settings"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	DeletedAt        gorm.DeletedAt   `gorm:"index" json:"-"`

	Users []User `gorm:"foreignKey:OrganizationID" json:"users,omitempty"`
}

func (o *Organization) TableName() string {
	return "organizations"
}
