package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/KEN19920421/30sec-challenge-sub003/internal/models"
	apperrors "github.com/KEN19920421/30sec-challenge-sub003/pkg/errors"
)

// VoteAggregate is the recount of a submission's vote ledger.
type VoteAggregate struct {
	Upvotes      int64
	Downvotes    int64
	SuperUpvotes int64
}

func (a VoteAggregate) Total() int64 {
	return a.Upvotes + a.Downvotes
}

type VoteRepository interface {
	Exists(ctx context.Context, voterID, submissionID uint64) (bool, error)
	VotedSubmissionIDs(ctx context.Context, voterID, challengeID uint64) ([]uint64, error)
	CastVote(ctx context.Context, vote *models.Vote) error
	AggregateForSubmission(ctx context.Context, submissionID uint64) (VoteAggregate, error)
	CountSuperVotesSince(ctx context.Context, voterID uint64, since time.Time) (int64, error)
}

type voteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) Exists(ctx context.Context, voterID, submissionID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Where("voter_id = ? AND submission_id = ?", voterID, submissionID).
		Count(&count).Error
	return count > 0, err
}

func (r *voteRepository) VotedSubmissionIDs(ctx context.Context, voterID, challengeID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Where("voter_id = ? AND challenge_id = ?", voterID, challengeID).
		Pluck("submission_id", &ids).Error
	return ids, err
}

// CastVote inserts the vote and bumps the submission counters in one
// transaction. A duplicate-key violation on (voter_id, submission_id) is the
// canonical duplicate-vote signal and maps to ValidationFailed.
func (r *voteRepository) CastVote(ctx context.Context, vote *models.Vote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(vote).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.ValidationFailed("duplicate vote")
			}
			return err
		}

		updates := map[string]interface{}{
			"vote_count": gorm.Expr("vote_count + ?", vote.Value),
		}
		if vote.IsSuperVote && vote.Value > 0 {
			updates["super_vote_count"] = gorm.Expr("super_vote_count + 1")
		}

		result := tx.Model(&models.Submission{}).
			Where("id = ?", vote.SubmissionID).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.NotFound("submission not found")
		}
		return nil
	})
}

func (r *voteRepository) AggregateForSubmission(ctx context.Context, submissionID uint64) (VoteAggregate, error) {
	var agg VoteAggregate
	err := r.db.WithContext(ctx).
		Raw(`
			SELECT
				COALESCE(SUM(CASE WHEN value > 0 THEN 1 ELSE 0 END), 0) AS upvotes,
				COALESCE(SUM(CASE WHEN value < 0 THEN 1 ELSE 0 END), 0) AS downvotes,
				COALESCE(SUM(CASE WHEN value > 0 AND is_super_vote THEN 1 ELSE 0 END), 0) AS super_upvotes
			FROM votes
			WHERE submission_id = ?
		`, submissionID).
		Scan(&agg).Error
	return agg, err
}

func (r *voteRepository) CountSuperVotesSince(ctx context.Context, voterID uint64, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Where("voter_id = ? AND is_super_vote = ? AND created_at >= ?", voterID, true, since).
		Count(&count).Error
	return count, err
}
