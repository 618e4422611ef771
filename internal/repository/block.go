package repository

import (
	"context"

	"gorm.io/gorm"
)

type BlockRepository interface {
	BlockedUserIDs(ctx context.Context, userID uint64) ([]uint64, error)
}

type blockRepository struct {
	db *gorm.DB
}

func NewBlockRepository(db *gorm.DB) BlockRepository {
	return &blockRepository{db: db}
}

// BlockedUserIDs returns users blocked in either direction. Blocking is
// mutual for vote exposure: neither side sees the other's submissions.
func (r *blockRepository) BlockedUserIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Raw(`
			SELECT blocked_id FROM user_blocks WHERE blocker_id = ?
			UNION
			SELECT blocker_id FROM user_blocks WHERE blocked_id = ?
		`, userID, userID).
		Scan(&ids).Error
	return ids, err
}
