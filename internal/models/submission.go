package models

import (
	"time"

	"gorm.io/gorm"
)

type ModerationStatus string

const (
	ModerationStatusPending  ModerationStatus = "pending"
	ModerationStatusApproved ModerationStatus = "approved"
	ModerationStatusRejected ModerationStatus = "rejected"
)

// Submission is one video entry. vote_count and super_vote_count are mutated
// only inside the vote-cast transaction; wilson_score only by the score
// recalculator.
type Submission struct {
	ID               uint64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID           uint64           `gorm:"uniqueIndex:uk_user_challenge;not null" json:"user_id"`
	ChallengeID      uint64           `gorm:"uniqueIndex:uk_user_challenge;not null;index" json:"challenge_id"`
	VideoURL         string           `gorm:"size:512;not null" json:"video_url"`
	ThumbnailURL     string           `gorm:"size:512" json:"thumbnail_url"`
	ModerationStatus ModerationStatus `gorm:"type:enum('pending','approved','rejected');not null;default:'pending';index" json:"moderation_status"`
	VoteCount        int64            `gorm:"not null;default:0" json:"vote_count"`
	SuperVoteCount   int64            `gorm:"not null;default:0" json:"super_vote_count"`
	WilsonScore      float64          `gorm:"type:double;not null;default:0" json:"wilson_score"`
	CreatedAt        time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt   `gorm:"index" json:"-"`
}

func (Submission) TableName() string {
	return "submissions"
}
