package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/KEN19920421/30sec-challenge-sub003/internal/models"
)

type VoteQueueRepository interface {
	Replace(ctx context.Context, userID, challengeID uint64, submissionIDs []uint64) error
	GetNextBatch(ctx context.Context, userID, challengeID uint64, limit int) ([]models.QueuedSubmission, error)
	MarkVoted(ctx context.Context, userID, challengeID, submissionID uint64) error
	CountUnvoted(ctx context.Context, userID, challengeID uint64) (int64, error)
}

type voteQueueRepository struct {
	db *gorm.DB
}

func NewVoteQueueRepository(db *gorm.DB) VoteQueueRepository {
	return &voteQueueRepository{db: db}
}

// Replace swaps the user's queue for the challenge in one transaction so
// readers never observe a half-written queue.
func (r *voteQueueRepository) Replace(ctx context.Context, userID, challengeID uint64, submissionIDs []uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND challenge_id = ?", userID, challengeID).
			Delete(&models.VoteQueueEntry{}).Error
		if err != nil {
			return err
		}

		if len(submissionIDs) == 0 {
			return nil
		}

		entries := make([]models.VoteQueueEntry, 0, len(submissionIDs))
		for i, id := range submissionIDs {
			entries = append(entries, models.VoteQueueEntry{
				UserID:       userID,
				ChallengeID:  challengeID,
				SubmissionID: id,
				Position:     i,
			})
		}
		return tx.CreateInBatches(entries, 200).Error
	})
}

// GetNextBatch returns unvoted entries by ascending position joined with the
// current submission snapshot. It never mutates the queue.
func (r *voteQueueRepository) GetNextBatch(ctx context.Context, userID, challengeID uint64, limit int) ([]models.QueuedSubmission, error) {
	var batch []models.QueuedSubmission
	err := r.db.WithContext(ctx).
		Table("vote_queue_entries q").
		Select("q.submission_id, q.position, s.user_id AS owner_id, s.video_url, s.thumbnail_url, s.vote_count").
		Joins("JOIN submissions s ON s.id = q.submission_id AND s.deleted_at IS NULL").
		Where("q.user_id = ? AND q.challenge_id = ? AND q.is_voted = ?", userID, challengeID, false).
		Order("q.position asc").
		Limit(limit).
		Scan(&batch).Error
	return batch, err
}

func (r *voteQueueRepository) MarkVoted(ctx context.Context, userID, challengeID, submissionID uint64) error {
	return r.db.WithContext(ctx).
		Model(&models.VoteQueueEntry{}).
		Where("user_id = ? AND challenge_id = ? AND submission_id = ?", userID, challengeID, submissionID).
		Update("is_voted", true).Error
}

func (r *voteQueueRepository) CountUnvoted(ctx context.Context, userID, challengeID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.VoteQueueEntry{}).
		Where("user_id = ? AND challenge_id = ? AND is_voted = ?", userID, challengeID, false).
		Count(&count).Error
	return count, err
}
