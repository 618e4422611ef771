package models

import (
	"time"
)

// UserBlock rows are written by the social service; the voting core only reads
// them to exclude mutually blocked users from vote queues.
type UserBlock struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	BlockerID uint64    `gorm:"uniqueIndex:uk_blocker_blocked;not null" json:"blocker_id"`
	BlockedID uint64    `gorm:"uniqueIndex:uk_blocker_blocked;not null;index" json:"blocked_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (UserBlock) TableName() string {
	return "user_blocks"
}
