package service

import (
	"context"

	"github.com/KEN19920421/30sec-challenge-sub003/internal/cache"
	"github.com/KEN19920421/30sec-challenge-sub003/internal/repository"
	apperrors "github.com/KEN19920421/30sec-challenge-sub003/pkg/errors"
)

// LeaderboardService answers ranked reads from the redis sorted-set index,
// rebuilding it from the persisted wilson scores on a cold read. The index is
// never the system of record.
type LeaderboardService struct {
	submissionRepo repository.SubmissionRepository
	index          *cache.Leaderboard
}

func NewLeaderboardService(submissionRepo repository.SubmissionRepository, index *cache.Leaderboard) *LeaderboardService {
	return &LeaderboardService{
		submissionRepo: submissionRepo,
		index:          index,
	}
}

func (s *LeaderboardService) ensureIndex(ctx context.Context, challengeID uint64) error {
	exists, err := s.index.Exists(ctx, challengeID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	scores, err := s.submissionRepo.ScoresByChallenge(ctx, challengeID)
	if err != nil {
		return err
	}
	return s.index.Rebuild(ctx, challengeID, scores)
}

// TopN returns the highest-scored submissions for the challenge.
func (s *LeaderboardService) TopN(ctx context.Context, challengeID uint64, limit int64) ([]cache.Entry, error) {
	if err := s.ensureIndex(ctx, challengeID); err != nil {
		return nil, err
	}
	return s.index.TopN(ctx, challengeID, limit)
}

// RankOf returns the 1-based rank of one submission within its challenge.
func (s *LeaderboardService) RankOf(ctx context.Context, challengeID, submissionID uint64) (int64, error) {
	if err := s.ensureIndex(ctx, challengeID); err != nil {
		return 0, err
	}

	rank, ok, err := s.index.Rank(ctx, challengeID, submissionID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, apperrors.NotFound("submission not ranked in this challenge")
	}
	return rank, nil
}
