package service

import (
	"context"

	"github.com/KEN19920421/30sec-challenge-sub003/internal/metrics"
	"github.com/KEN19920421/30sec-challenge-sub003/internal/models"
	"github.com/KEN19920421/30sec-challenge-sub003/internal/repository"
	apperrors "github.com/KEN19920421/30sec-challenge-sub003/pkg/errors"
	"github.com/KEN19920421/30sec-challenge-sub003/pkg/logger"
)

// scoreRecalculator and scoreIndex are the post-commit collaborators; kept as
// small interfaces so the cast path can be tested without redis or mysql.
type scoreRecalculator interface {
	Recalculate(ctx context.Context, submissionID uint64) (float64, error)
}

type scoreIndex interface {
	SetScore(ctx context.Context, challengeID, submissionID uint64, score float64) error
}

type superVoteBudget interface {
	RemainingSuperVotes(ctx context.Context, userID uint64) (int64, error)
}

type queueMarker interface {
	MarkVoted(ctx context.Context, userID, challengeID, submissionID uint64) error
}

// VoteStats is the read-only aggregate for one submission.
type VoteStats struct {
	SubmissionID uint64  `json:"submission_id"`
	Upvotes      int64   `json:"upvotes"`
	Downvotes    int64   `json:"downvotes"`
	SuperVotes   int64   `json:"super_votes"`
	WilsonScore  float64 `json:"wilson_score"`
}

// VoteService validates and records votes. A vote is durably cast once the
// insert-and-count transaction commits; everything after that is best-effort
// cache maintenance.
type VoteService struct {
	submissionRepo repository.SubmissionRepository
	challengeRepo  repository.ChallengeRepository
	voteRepo       repository.VoteRepository
	scorer         scoreRecalculator
	budget         superVoteBudget
	index          scoreIndex
	queue          queueMarker
}

func NewVoteService(
	submissionRepo repository.SubmissionRepository,
	challengeRepo repository.ChallengeRepository,
	voteRepo repository.VoteRepository,
	scorer scoreRecalculator,
	budget superVoteBudget,
	index scoreIndex,
	queue queueMarker,
) *VoteService {
	return &VoteService{
		submissionRepo: submissionRepo,
		challengeRepo:  challengeRepo,
		voteRepo:       voteRepo,
		scorer:         scorer,
		budget:         budget,
		index:          index,
		queue:          queue,
	}
}

// CastVote runs the precondition chain, commits the vote atomically with the
// counter updates, then fires the best-effort side effects. Precondition
// failures leave no durable trace.
func (s *VoteService) CastVote(ctx context.Context, userID, submissionID uint64, value int, isSuperVote bool, source models.VoteSource) (*models.Vote, error) {
	vote, err := s.castVote(ctx, userID, submissionID, value, isSuperVote, source)
	if err != nil {
		metrics.VotesCast.WithLabelValues(outcomeLabel(err)).Inc()
		return nil, err
	}

	metrics.VotesCast.WithLabelValues("ok").Inc()
	s.runSideEffects(ctx, vote)
	return vote, nil
}

func (s *VoteService) castVote(ctx context.Context, userID, submissionID uint64, value int, isSuperVote bool, source models.VoteSource) (*models.Vote, error) {
	if value != 1 && value != -1 {
		return nil, apperrors.ValidationFailed("vote value must be +1 or -1")
	}

	submission, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if submission == nil {
		return nil, apperrors.NotFound("submission not found")
	}

	if submission.UserID == userID {
		return nil, apperrors.Forbidden("cannot vote on own submission")
	}

	challenge, err := s.challengeRepo.GetByID(ctx, submission.ChallengeID)
	if err != nil {
		return nil, err
	}
	if challenge == nil {
		return nil, apperrors.NotFound("challenge not found")
	}
	if !challenge.IsOpenForVoting() {
		return nil, apperrors.ValidationFailed("voting is closed for this challenge")
	}

	// Fast path only; the unique index on (voter_id, submission_id) is the
	// authoritative guard against the check-then-act race.
	exists, err := s.voteRepo.Exists(ctx, userID, submissionID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ValidationFailed("duplicate vote")
	}

	if isSuperVote {
		remaining, err := s.budget.RemainingSuperVotes(ctx, userID)
		if err != nil {
			return nil, err
		}
		if remaining <= 0 {
			return nil, apperrors.ValidationFailed("super vote quota exhausted")
		}
	}

	vote := &models.Vote{
		VoterID:      userID,
		SubmissionID: submissionID,
		ChallengeID:  submission.ChallengeID,
		Value:        value,
		IsSuperVote:  isSuperVote,
		Source:       source,
	}

	if err := s.voteRepo.CastVote(ctx, vote); err != nil {
		return nil, err
	}
	return vote, nil
}

// runSideEffects refreshes derived state after the vote committed. Failures
// are logged and swallowed: the vote already succeeded, and the score and
// queue caches self-heal on the next recalculation or regeneration.
func (s *VoteService) runSideEffects(ctx context.Context, vote *models.Vote) {
	score, err := s.scorer.Recalculate(ctx, vote.SubmissionID)
	if err != nil {
		metrics.SideEffectFailures.WithLabelValues("score").Inc()
		logger.WithFields(map[string]interface{}{
			"submission_id": vote.SubmissionID,
		}).WithError(err).Warn("Post-vote score recalculation failed")
	} else if err := s.index.SetScore(ctx, vote.ChallengeID, vote.SubmissionID, score); err != nil {
		metrics.SideEffectFailures.WithLabelValues("leaderboard").Inc()
		logger.WithFields(map[string]interface{}{
			"challenge_id":  vote.ChallengeID,
			"submission_id": vote.SubmissionID,
		}).WithError(err).Warn("Post-vote leaderboard update failed")
	}

	if err := s.queue.MarkVoted(ctx, vote.VoterID, vote.ChallengeID, vote.SubmissionID); err != nil {
		metrics.SideEffectFailures.WithLabelValues("queue").Inc()
		logger.WithFields(map[string]interface{}{
			"voter_id":      vote.VoterID,
			"submission_id": vote.SubmissionID,
		}).WithError(err).Warn("Post-vote queue marking failed")
	}
}

// GetVoteStats returns the current aggregates and persisted score. Read only.
func (s *VoteService) GetVoteStats(ctx context.Context, submissionID uint64) (*VoteStats, error) {
	submission, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if submission == nil {
		return nil, apperrors.NotFound("submission not found")
	}

	agg, err := s.voteRepo.AggregateForSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	return &VoteStats{
		SubmissionID: submissionID,
		Upvotes:      agg.Upvotes,
		Downvotes:    agg.Downvotes,
		SuperVotes:   agg.SuperUpvotes,
		WilsonScore:  submission.WilsonScore,
	}, nil
}

func outcomeLabel(err error) string {
	switch {
	case apperrors.IsNotFound(err):
		return "not_found"
	case apperrors.IsForbidden(err):
		return "forbidden"
	case apperrors.IsValidationFailed(err):
		return "validation_failed"
	default:
		return "error"
	}
}
