package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KEN19920421/30sec-challenge-sub003/internal/models"
	"github.com/KEN19920421/30sec-challenge-sub003/internal/ranking"
	"github.com/KEN19920421/30sec-challenge-sub003/internal/repository"
	apperrors "github.com/KEN19920421/30sec-challenge-sub003/pkg/errors"
)

func openChallenge(id uint64, status models.ChallengeStatus) *models.Challenge {
	now := time.Now()
	return &models.Challenge{
		ID:           id,
		Title:        "dance off",
		Status:       status,
		StartsAt:     now.Add(-2 * time.Hour),
		EndsAt:       now.Add(2 * time.Hour),
		VotingEndsAt: now.Add(4 * time.Hour),
	}
}

type voteFixture struct {
	submissionRepo *mockSubmissionRepo
	challengeRepo  *mockChallengeRepo
	voteRepo       *mockVoteRepo
	scorer         *stubScorer
	budget         *stubBudget
	index          *stubIndex
	queue          *stubQueueMarker
	svc            *VoteService
}

func newVoteFixture() *voteFixture {
	f := &voteFixture{
		submissionRepo: &mockSubmissionRepo{},
		challengeRepo:  &mockChallengeRepo{},
		voteRepo:       &mockVoteRepo{},
		scorer:         &stubScorer{score: 0.5},
		budget:         &stubBudget{remaining: 3},
		index:          &stubIndex{},
		queue:          &stubQueueMarker{},
	}
	f.svc = NewVoteService(f.submissionRepo, f.challengeRepo, f.voteRepo, f.scorer, f.budget, f.index, f.queue)
	return f
}

func (f *voteFixture) withSubmission(sub *models.Submission) {
	f.submissionRepo.getByIDFunc = func(ctx context.Context, id uint64) (*models.Submission, error) {
		if sub != nil && id == sub.ID {
			return sub, nil
		}
		return nil, nil
	}
}

func (f *voteFixture) withChallenge(ch *models.Challenge) {
	f.challengeRepo.getByIDFunc = func(ctx context.Context, id uint64) (*models.Challenge, error) {
		if ch != nil && id == ch.ID {
			return ch, nil
		}
		return nil, nil
	}
}

func TestCastVoteSubmissionNotFound(t *testing.T) {
	f := newVoteFixture()
	f.withSubmission(nil)

	_, err := f.svc.CastVote(context.Background(), 1, 99, 1, false, models.VoteSourceQueue)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCastVoteSelfVoteForbidden(t *testing.T) {
	f := newVoteFixture()
	f.withSubmission(&models.Submission{ID: 10, UserID: 1, ChallengeID: 5})

	_, err := f.svc.CastVote(context.Background(), 1, 10, 1, false, models.VoteSourceQueue)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestCastVoteSelfVoteForbiddenEvenWhenClosed(t *testing.T) {
	// The self-vote check precedes the window check, so owners always get
	// Forbidden regardless of challenge status.
	f := newVoteFixture()
	f.withSubmission(&models.Submission{ID: 10, UserID: 1, ChallengeID: 5})
	f.withChallenge(openChallenge(5, models.ChallengeStatusCompleted))

	_, err := f.svc.CastVote(context.Background(), 1, 10, 1, false, models.VoteSourceQueue)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestCastVoteVotingClosed(t *testing.T) {
	for _, status := range []models.ChallengeStatus{
		models.ChallengeStatusDraft,
		models.ChallengeStatusScheduled,
		models.ChallengeStatusCompleted,
		models.ChallengeStatusCancelled,
	} {
		t.Run(string(status), func(t *testing.T) {
			f := newVoteFixture()
			f.withSubmission(&models.Submission{ID: 10, UserID: 2, ChallengeID: 5})
			f.withChallenge(openChallenge(5, status))

			_, err := f.svc.CastVote(context.Background(), 1, 10, 1, false, models.VoteSourceQueue)
			assert.True(t, apperrors.IsValidationFailed(err))
		})
	}
}

func TestCastVoteDuplicate(t *testing.T) {
	f := newVoteFixture()
	f.withSubmission(&models.Submission{ID: 10, UserID: 2, ChallengeID: 5})
	f.withChallenge(openChallenge(5, models.ChallengeStatusActive))
	f.voteRepo.existsFunc = func(ctx context.Context, voterID, submissionID uint64) (bool, error) {
		return true, nil
	}

	_, err := f.svc.CastVote(context.Background(), 1, 10, 1, false, models.VoteSourceQueue)
	assert.True(t, apperrors.IsValidationFailed(err))
}

func TestCastVoteStorageDuplicateWinsRace(t *testing.T) {
	// The fast-path check passes but the unique index rejects the insert:
	// the storage signal is still surfaced as the duplicate-vote error.
	f := newVoteFixture()
	f.withSubmission(&models.Submission{ID: 10, UserID: 2, ChallengeID: 5})
	f.withChallenge(openChallenge(5, models.ChallengeStatusActive))
	f.voteRepo.existsFunc = func(ctx context.Context, voterID, submissionID uint64) (bool, error) {
		return false, nil
	}
	f.voteRepo.castVoteFunc = func(ctx context.Context, vote *models.Vote) error {
		return apperrors.ValidationFailed("duplicate vote")
	}

	_, err := f.svc.CastVote(context.Background(), 1, 10, 1, false, models.VoteSourceQueue)
	assert.True(t, apperrors.IsValidationFailed(err))
	assert.Equal(t, 0, f.scorer.calls, "no side effects after a failed cast")
}

func TestCastVoteSuperVoteQuotaExhausted(t *testing.T) {
	f := newVoteFixture()
	f.withSubmission(&models.Submission{ID: 10, UserID: 2, ChallengeID: 5})
	f.withChallenge(openChallenge(5, models.ChallengeStatusVoting))
	f.voteRepo.existsFunc = func(ctx context.Context, voterID, submissionID uint64) (bool, error) {
		return false, nil
	}
	f.budget.remaining = 0

	_, err := f.svc.CastVote(context.Background(), 1, 10, 1, true, models.VoteSourceQueue)
	assert.True(t, apperrors.IsValidationFailed(err))
}

func TestCastVoteInvalidValue(t *testing.T) {
	f := newVoteFixture()

	for _, value := range []int{0, 2, -2, 100} {
		_, err := f.svc.CastVote(context.Background(), 1, 10, value, false, models.VoteSourceQueue)
		assert.True(t, apperrors.IsValidationFailed(err), "value %d", value)
	}
}

func TestCastVoteSuccess(t *testing.T) {
	f := newVoteFixture()
	f.withSubmission(&models.Submission{ID: 10, UserID: 2, ChallengeID: 5})
	f.withChallenge(openChallenge(5, models.ChallengeStatusActive))
	f.voteRepo.existsFunc = func(ctx context.Context, voterID, submissionID uint64) (bool, error) {
		return false, nil
	}

	var captured *models.Vote
	f.voteRepo.castVoteFunc = func(ctx context.Context, vote *models.Vote) error {
		captured = vote
		return nil
	}

	vote, err := f.svc.CastVote(context.Background(), 1, 10, 1, true, models.VoteSourceQueue)
	require.NoError(t, err)
	require.NotNil(t, captured)
	assert.Equal(t, uint64(1), vote.VoterID)
	assert.Equal(t, uint64(10), vote.SubmissionID)
	assert.Equal(t, uint64(5), vote.ChallengeID)
	assert.Equal(t, 1, vote.Value)
	assert.True(t, vote.IsSuperVote)

	// Side effects ran: score recomputed, leaderboard updated, queue marked.
	assert.Equal(t, 1, f.scorer.calls)
	assert.InDelta(t, 0.5, f.index.scores[10], 1e-9)
	assert.Equal(t, []uint64{10}, f.queue.marked)
}

func TestCastVoteSideEffectFailuresAreSwallowed(t *testing.T) {
	f := newVoteFixture()
	f.withSubmission(&models.Submission{ID: 10, UserID: 2, ChallengeID: 5})
	f.withChallenge(openChallenge(5, models.ChallengeStatusActive))
	f.voteRepo.existsFunc = func(ctx context.Context, voterID, submissionID uint64) (bool, error) {
		return false, nil
	}
	f.voteRepo.castVoteFunc = func(ctx context.Context, vote *models.Vote) error {
		return nil
	}
	f.scorer.err = assert.AnError
	f.queue.err = assert.AnError

	vote, err := f.svc.CastVote(context.Background(), 1, 10, -1, false, models.VoteSourceQueue)
	require.NoError(t, err, "a committed vote succeeds even when cache upkeep fails")
	assert.NotNil(t, vote)
}

func TestGetVoteStats(t *testing.T) {
	f := newVoteFixture()
	f.withSubmission(&models.Submission{ID: 10, UserID: 2, ChallengeID: 5, WilsonScore: 0.42})
	f.voteRepo.aggregateFunc = func(ctx context.Context, submissionID uint64) (repository.VoteAggregate, error) {
		return repository.VoteAggregate{Upvotes: 6, Downvotes: 4, SuperUpvotes: 2}, nil
	}

	stats, err := f.svc.GetVoteStats(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(6), stats.Upvotes)
	assert.Equal(t, int64(4), stats.Downvotes)
	assert.Equal(t, int64(2), stats.SuperVotes)
	assert.InDelta(t, 0.42, stats.WilsonScore, 1e-9)
}

func TestGetVoteStatsNotFound(t *testing.T) {
	f := newVoteFixture()
	f.withSubmission(nil)

	_, err := f.svc.GetVoteStats(context.Background(), 10)
	assert.True(t, apperrors.IsNotFound(err))
}

// End-to-end scenario: first vote succeeds and produces a small-sample score,
// a repeat vote fails as duplicate, the owner's vote fails as forbidden.
func TestVotingScenario(t *testing.T) {
	sub := &models.Submission{ID: 10, UserID: 2, ChallengeID: 5}
	votes := map[uint64]bool{}

	f := newVoteFixture()
	f.withSubmission(sub)
	f.withChallenge(openChallenge(5, models.ChallengeStatusActive))
	f.voteRepo.existsFunc = func(ctx context.Context, voterID, submissionID uint64) (bool, error) {
		return votes[voterID], nil
	}
	f.voteRepo.castVoteFunc = func(ctx context.Context, vote *models.Vote) error {
		votes[vote.VoterID] = true
		sub.VoteCount += int64(vote.Value)
		return nil
	}

	// Recalculate through the real wilson math for 1 upvote of 1 vote.
	f.scorer.score = ranking.WilsonScore(1, 1, 0)

	vote, err := f.svc.CastVote(context.Background(), 1, 10, 1, false, models.VoteSourceQueue)
	require.NoError(t, err)
	assert.Equal(t, int64(1), sub.VoteCount)
	assert.Equal(t, 1, vote.Value)
	assert.Greater(t, f.index.scores[10], 0.0)
	assert.Less(t, f.index.scores[10], 1.0)

	_, err = f.svc.CastVote(context.Background(), 1, 10, 1, false, models.VoteSourceQueue)
	assert.True(t, apperrors.IsValidationFailed(err), "second vote is a duplicate")

	_, err = f.svc.CastVote(context.Background(), 2, 10, 1, false, models.VoteSourceQueue)
	assert.True(t, apperrors.IsForbidden(err), "owner cannot vote on own submission")
}
