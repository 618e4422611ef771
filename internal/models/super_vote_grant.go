package models

import (
	"time"
)

type GrantSource string

const (
	GrantSourceAdReward GrantSource = "ad_reward"
	GrantSourcePromo    GrantSource = "promo"
)

// SuperVoteGrant records one earned super vote (e.g. from watching a rewarded
// ad). Written by the ad-reward service; the voting core only counts grants
// since local midnight when computing the remaining budget.
type SuperVoteGrant struct {
	ID        uint64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64      `gorm:"not null;index:idx_user_granted" json:"user_id"`
	Source    GrantSource `gorm:"type:enum('ad_reward','promo');not null;default:'ad_reward'" json:"source"`
	GrantedAt time.Time   `gorm:"not null;index:idx_user_granted" json:"granted_at"`
	CreatedAt time.Time   `gorm:"autoCreateTime" json:"created_at"`
}

func (SuperVoteGrant) TableName() string {
	return "super_vote_grants"
}
