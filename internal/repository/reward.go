package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/KEN19920421/30sec-challenge-sub003/internal/models"
)

type RewardRepository interface {
	CountGrantsSince(ctx context.Context, userID uint64, since time.Time) (int64, error)
}

type rewardRepository struct {
	db *gorm.DB
}

func NewRewardRepository(db *gorm.DB) RewardRepository {
	return &rewardRepository{db: db}
}

// CountGrantsSince counts ad-reward super-vote grants for the user since the
// given time (typically local midnight). Grants are written by the ad-reward
// service; this side only reads them.
func (r *rewardRepository) CountGrantsSince(ctx context.Context, userID uint64, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SuperVoteGrant{}).
		Where("user_id = ? AND granted_at >= ?", userID, since).
		Count(&count).Error
	return count, err
}
