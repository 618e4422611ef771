package models

import (
	"time"

	"gorm.io/gorm"
)

type SubscriptionTier string

const (
	TierFree SubscriptionTier = "free"
	TierPro  SubscriptionTier = "pro"
)

// User is read-only for this service; account management lives elsewhere. The
// subscription tier feeds the super-vote budget.
type User struct {
	ID               uint64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Username         string           `gorm:"size:100;not null;uniqueIndex" json:"username"`
	SubscriptionTier SubscriptionTier `gorm:"type:enum('free','pro');not null;default:'free'" json:"subscription_tier"`
	CreatedAt        time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt   `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}
