package models

import (
	"time"
)

type VoteSource string

const (
	VoteSourceQueue       VoteSource = "queue"
	VoteSourceLeaderboard VoteSource = "leaderboard"
	VoteSourceProfile     VoteSource = "profile"
)

// Vote is an immutable fact. The unique index on (voter_id, submission_id) is
// the authoritative duplicate guard; the service-level existence check is only
// a fast path.
type Vote struct {
	ID           uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	VoterID      uint64     `gorm:"uniqueIndex:uk_voter_submission;not null" json:"voter_id"`
	SubmissionID uint64     `gorm:"uniqueIndex:uk_voter_submission;not null;index" json:"submission_id"`
	ChallengeID  uint64     `gorm:"not null;index" json:"challenge_id"`
	Value        int        `gorm:"not null" json:"value"` // +1 or -1
	IsSuperVote  bool       `gorm:"not null;default:false" json:"is_super_vote"`
	Source       VoteSource `gorm:"type:enum('queue','leaderboard','profile');not null;default:'queue'" json:"source"`
	CreatedAt    time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Vote) TableName() string {
	return "votes"
}
