package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/KEN19920421/30sec-challenge-sub003/internal/models"
)

type SubmissionRepository interface {
	GetByID(ctx context.Context, id uint64) (*models.Submission, error)
	ListApprovedByChallenge(ctx context.Context, challengeID uint64) ([]models.Submission, error)
	ScoresByChallenge(ctx context.Context, challengeID uint64) (map[uint64]float64, error)
	UpdateWilsonScore(ctx context.Context, id uint64, score float64) error
}

type submissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

// GetByID returns nil, nil when the submission does not exist.
func (r *submissionRepository) GetByID(ctx context.Context, id uint64) (*models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&submission).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &submission, err
}

func (r *submissionRepository) ListApprovedByChallenge(ctx context.Context, challengeID uint64) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Where("challenge_id = ? AND moderation_status = ?", challengeID, models.ModerationStatusApproved).
		Find(&submissions).Error
	return submissions, err
}

// ScoresByChallenge returns submission id -> persisted wilson score for all
// approved entries, used to rebuild the leaderboard index.
func (r *submissionRepository) ScoresByChallenge(ctx context.Context, challengeID uint64) (map[uint64]float64, error) {
	type row struct {
		ID          uint64
		WilsonScore float64
	}

	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Select("id", "wilson_score").
		Where("challenge_id = ? AND moderation_status = ?", challengeID, models.ModerationStatusApproved).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	scores := make(map[uint64]float64, len(rows))
	for _, r := range rows {
		scores[r.ID] = r.WilsonScore
	}
	return scores, nil
}

func (r *submissionRepository) UpdateWilsonScore(ctx context.Context, id uint64, score float64) error {
	return r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", id).
		Update("wilson_score", score).Error
}
