package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/KEN19920421/30sec-challenge-sub003/internal/models"
)

type ChallengeRepository interface {
	GetByID(ctx context.Context, id uint64) (*models.Challenge, error)
	ListDue(ctx context.Context, status models.ChallengeStatus, timeColumn string, now time.Time) ([]models.Challenge, error)
	UpdateStatus(ctx context.Context, id uint64, status models.ChallengeStatus) error
	ListOpen(ctx context.Context) ([]models.Challenge, error)
	ListUpcoming(ctx context.Context, now time.Time, limit int) ([]models.Challenge, error)
	ListCompleted(ctx context.Context, limit int) ([]models.Challenge, error)
}

// transition timestamp columns the scheduler may filter on.
var allowedTimeColumns = map[string]bool{
	"starts_at":      true,
	"ends_at":        true,
	"voting_ends_at": true,
}

type challengeRepository struct {
	db *gorm.DB
}

func NewChallengeRepository(db *gorm.DB) ChallengeRepository {
	return &challengeRepository{db: db}
}

// GetByID returns nil, nil when the challenge does not exist.
func (r *challengeRepository) GetByID(ctx context.Context, id uint64) (*models.Challenge, error) {
	var challenge models.Challenge
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&challenge).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &challenge, err
}

// ListDue returns challenges in the given status whose transition timestamp
// has passed. timeColumn must be one of the challenge timestamp columns.
func (r *challengeRepository) ListDue(ctx context.Context, status models.ChallengeStatus, timeColumn string, now time.Time) ([]models.Challenge, error) {
	if !allowedTimeColumns[timeColumn] {
		return nil, fmt.Errorf("invalid transition column: %s", timeColumn)
	}

	var challenges []models.Challenge
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Where(fmt.Sprintf("%s <= ?", timeColumn), now).
		Find(&challenges).Error
	return challenges, err
}

func (r *challengeRepository) UpdateStatus(ctx context.Context, id uint64, status models.ChallengeStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Challenge{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// ListOpen returns challenges currently accepting submissions or votes.
func (r *challengeRepository) ListOpen(ctx context.Context) ([]models.Challenge, error) {
	var challenges []models.Challenge
	err := r.db.WithContext(ctx).
		Where("status IN ?", []models.ChallengeStatus{models.ChallengeStatusActive, models.ChallengeStatusVoting}).
		Order("starts_at asc").
		Find(&challenges).Error
	return challenges, err
}

func (r *challengeRepository) ListUpcoming(ctx context.Context, now time.Time, limit int) ([]models.Challenge, error) {
	var challenges []models.Challenge
	err := r.db.WithContext(ctx).
		Where("status = ? AND starts_at > ?", models.ChallengeStatusScheduled, now).
		Order("starts_at asc").
		Limit(limit).
		Find(&challenges).Error
	return challenges, err
}

func (r *challengeRepository) ListCompleted(ctx context.Context, limit int) ([]models.Challenge, error) {
	var challenges []models.Challenge
	err := r.db.WithContext(ctx).
		Where("status = ?", models.ChallengeStatusCompleted).
		Order("voting_ends_at desc").
		Limit(limit).
		Find(&challenges).Error
	return challenges, err
}
