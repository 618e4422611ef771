package models

import (
	"time"

	"gorm.io/gorm"
)

type ChallengeStatus string

const (
	ChallengeStatusDraft     ChallengeStatus = "draft"
	ChallengeStatusScheduled ChallengeStatus = "scheduled"
	ChallengeStatusActive    ChallengeStatus = "active"
	ChallengeStatusVoting    ChallengeStatus = "voting"
	ChallengeStatusCompleted ChallengeStatus = "completed"
	ChallengeStatusCancelled ChallengeStatus = "cancelled"
)

type Challenge struct {
	ID           uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Title        string          `gorm:"size:255;not null" json:"title"`
	Description  string          `gorm:"type:text" json:"description"`
	Category     string          `gorm:"size:100;index" json:"category"`
	Status       ChallengeStatus `gorm:"type:enum('draft','scheduled','active','voting','completed','cancelled');not null;default:'scheduled';index" json:"status"`
	StartsAt     time.Time       `gorm:"not null;index" json:"starts_at"`
	EndsAt       time.Time       `gorm:"not null;index" json:"ends_at"`
	VotingEndsAt time.Time       `gorm:"not null;index" json:"voting_ends_at"`
	EarlyAccess  bool            `gorm:"not null;default:false" json:"early_access"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Challenge) TableName() string {
	return "challenges"
}

// IsOpenForVoting reports whether votes may currently be cast.
func (c *Challenge) IsOpenForVoting() bool {
	return c.Status == ChallengeStatusActive || c.Status == ChallengeStatusVoting
}

// ValidateDates enforces starts_at < ends_at < voting_ends_at.
func (c *Challenge) ValidateDates() bool {
	return c.StartsAt.Before(c.EndsAt) && c.EndsAt.Before(c.VotingEndsAt)
}
