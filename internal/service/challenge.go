package service

import (
	"context"
	"time"

	"github.com/KEN19920421/30sec-challenge-sub003/internal/cache"
	"github.com/KEN19920421/30sec-challenge-sub003/internal/models"
	"github.com/KEN19920421/30sec-challenge-sub003/internal/repository"
	"github.com/KEN19920421/30sec-challenge-sub003/pkg/logger"
)

const (
	viewKeyCurrent  = "challenges:current"
	viewKeyUpcoming = "challenges:upcoming"
	viewKeyHistory  = "challenges:history"

	// TTL backstop; the scheduler invalidates explicitly on every
	// transition, so this only bounds staleness after missed invalidations.
	viewTTL = 5 * time.Minute

	upcomingLimit = 10
	historyLimit  = 20
)

// ChallengeService serves the public challenge views through a cache-aside
// read path. The cache works across replicas because it lives in redis, not
// in process memory.
type ChallengeService struct {
	challengeRepo repository.ChallengeRepository
	views         *cache.ViewCache
}

func NewChallengeService(challengeRepo repository.ChallengeRepository, views *cache.ViewCache) *ChallengeService {
	return &ChallengeService{
		challengeRepo: challengeRepo,
		views:         views,
	}
}

func (s *ChallengeService) GetByID(ctx context.Context, id uint64) (*models.Challenge, error) {
	return s.challengeRepo.GetByID(ctx, id)
}

// GetCurrent returns challenges in the active or voting phase.
func (s *ChallengeService) GetCurrent(ctx context.Context) ([]models.Challenge, error) {
	return s.cachedList(ctx, viewKeyCurrent, func() ([]models.Challenge, error) {
		return s.challengeRepo.ListOpen(ctx)
	})
}

func (s *ChallengeService) GetUpcoming(ctx context.Context) ([]models.Challenge, error) {
	return s.cachedList(ctx, viewKeyUpcoming, func() ([]models.Challenge, error) {
		return s.challengeRepo.ListUpcoming(ctx, time.Now(), upcomingLimit)
	})
}

func (s *ChallengeService) GetHistory(ctx context.Context) ([]models.Challenge, error) {
	return s.cachedList(ctx, viewKeyHistory, func() ([]models.Challenge, error) {
		return s.challengeRepo.ListCompleted(ctx, historyLimit)
	})
}

func (s *ChallengeService) cachedList(ctx context.Context, key string, load func() ([]models.Challenge, error)) ([]models.Challenge, error) {
	var cached []models.Challenge
	hit, err := s.views.Get(ctx, key, &cached)
	if err != nil {
		// A broken cache must not break reads; fall through to the store.
		logger.WithError(err).Warn("Challenge view cache read failed")
	} else if hit {
		return cached, nil
	}

	challenges, err := load()
	if err != nil {
		return nil, err
	}

	if err := s.views.Set(ctx, key, challenges, viewTTL); err != nil {
		logger.WithError(err).Warn("Challenge view cache write failed")
	}
	return challenges, nil
}

// InvalidateViews drops all cached challenge views. Called by the lifecycle
// scheduler after every applied transition.
func (s *ChallengeService) InvalidateViews(ctx context.Context) error {
	return s.views.Invalidate(ctx, viewKeyCurrent, viewKeyUpcoming, viewKeyHistory)
}
