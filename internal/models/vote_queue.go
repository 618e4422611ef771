package models

import (
	"time"
)

// VoteQueueEntry is derived cache state: the randomized per-user worklist of
// submissions awaiting a vote. Safe to discard and regenerate wholesale.
type VoteQueueEntry struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       uint64    `gorm:"uniqueIndex:uk_user_challenge_pos;not null" json:"user_id"`
	ChallengeID  uint64    `gorm:"uniqueIndex:uk_user_challenge_pos;not null" json:"challenge_id"`
	SubmissionID uint64    `gorm:"not null;index" json:"submission_id"`
	Position     int       `gorm:"uniqueIndex:uk_user_challenge_pos;not null" json:"position"`
	IsVoted      bool      `gorm:"not null;default:false" json:"is_voted"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (VoteQueueEntry) TableName() string {
	return "vote_queue_entries"
}

// QueuedSubmission is a queue entry joined with the current submission
// snapshot, as returned to clients in a vote batch.
type QueuedSubmission struct {
	SubmissionID uint64 `json:"submission_id"`
	Position     int    `json:"position"`
	OwnerID      uint64 `json:"owner_id"`
	VideoURL     string `json:"video_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	VoteCount    int64  `json:"vote_count"`
}
