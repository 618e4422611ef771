package service

import (
	"context"

	"github.com/KEN19920421/30sec-challenge-sub003/internal/cache"
	"github.com/KEN19920421/30sec-challenge-sub003/internal/ranking"
	"github.com/KEN19920421/30sec-challenge-sub003/internal/repository"
	apperrors "github.com/KEN19920421/30sec-challenge-sub003/pkg/errors"
	"github.com/KEN19920421/30sec-challenge-sub003/pkg/logger"
)

// ScoreService recomputes a submission's wilson score from the full vote
// ledger. A full recount instead of an incremental update keeps the result
// correct under concurrent voters and makes recalculation idempotent.
type ScoreService struct {
	submissionRepo repository.SubmissionRepository
	voteRepo       repository.VoteRepository
	leaderboard    *cache.Leaderboard
}

func NewScoreService(
	submissionRepo repository.SubmissionRepository,
	voteRepo repository.VoteRepository,
	leaderboard *cache.Leaderboard,
) *ScoreService {
	return &ScoreService{
		submissionRepo: submissionRepo,
		voteRepo:       voteRepo,
		leaderboard:    leaderboard,
	}
}

// Recalculate recounts the votes for one submission, persists the new wilson
// score, and returns it.
func (s *ScoreService) Recalculate(ctx context.Context, submissionID uint64) (float64, error) {
	submission, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return 0, err
	}
	if submission == nil {
		return 0, apperrors.NotFound("submission not found")
	}

	agg, err := s.voteRepo.AggregateForSubmission(ctx, submissionID)
	if err != nil {
		return 0, err
	}

	score := ranking.WilsonScore(agg.Upvotes, agg.Total(), agg.SuperUpvotes)

	if err := s.submissionRepo.UpdateWilsonScore(ctx, submissionID, score); err != nil {
		return 0, err
	}
	return score, nil
}

// RecalculateChallenge is the repair sweep: it recounts every approved
// submission in the challenge and rebuilds the leaderboard index from the
// persisted scores. Individual failures are logged and do not abort the
// sweep.
func (s *ScoreService) RecalculateChallenge(ctx context.Context, challengeID uint64) error {
	submissions, err := s.submissionRepo.ListApprovedByChallenge(ctx, challengeID)
	if err != nil {
		return err
	}

	for _, submission := range submissions {
		if _, err := s.Recalculate(ctx, submission.ID); err != nil {
			logger.WithFields(map[string]interface{}{
				"challenge_id":  challengeID,
				"submission_id": submission.ID,
			}).WithError(err).Error("Failed to recalculate submission score")
		}
	}

	scores, err := s.submissionRepo.ScoresByChallenge(ctx, challengeID)
	if err != nil {
		return err
	}
	if err := s.leaderboard.Rebuild(ctx, challengeID, scores); err != nil {
		return err
	}

	logger.WithFields(map[string]interface{}{
		"challenge_id": challengeID,
		"submissions":  len(submissions),
	}).Info("Challenge scores recalculated")
	return nil
}
