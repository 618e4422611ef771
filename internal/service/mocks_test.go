package service

import (
	"context"
	"errors"
	"time"

	"github.com/KEN19920421/30sec-challenge-sub003/internal/models"
	"github.com/KEN19920421/30sec-challenge-sub003/internal/repository"
)

// Hand-rolled mocks with func fields; unset funcs fail loudly.

type mockSubmissionRepo struct {
	getByIDFunc                 func(ctx context.Context, id uint64) (*models.Submission, error)
	listApprovedByChallengeFunc func(ctx context.Context, challengeID uint64) ([]models.Submission, error)
	scoresByChallengeFunc       func(ctx context.Context, challengeID uint64) (map[uint64]float64, error)
	updateWilsonScoreFunc       func(ctx context.Context, id uint64, score float64) error
}

func (m *mockSubmissionRepo) GetByID(ctx context.Context, id uint64) (*models.Submission, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockSubmissionRepo) ListApprovedByChallenge(ctx context.Context, challengeID uint64) ([]models.Submission, error) {
	if m.listApprovedByChallengeFunc != nil {
		return m.listApprovedByChallengeFunc(ctx, challengeID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockSubmissionRepo) ScoresByChallenge(ctx context.Context, challengeID uint64) (map[uint64]float64, error) {
	if m.scoresByChallengeFunc != nil {
		return m.scoresByChallengeFunc(ctx, challengeID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockSubmissionRepo) UpdateWilsonScore(ctx context.Context, id uint64, score float64) error {
	if m.updateWilsonScoreFunc != nil {
		return m.updateWilsonScoreFunc(ctx, id, score)
	}
	return errors.New("not implemented")
}

type mockChallengeRepo struct {
	getByIDFunc func(ctx context.Context, id uint64) (*models.Challenge, error)
}

func (m *mockChallengeRepo) GetByID(ctx context.Context, id uint64) (*models.Challenge, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockChallengeRepo) ListDue(ctx context.Context, status models.ChallengeStatus, timeColumn string, now time.Time) ([]models.Challenge, error) {
	return nil, errors.New("not implemented")
}

func (m *mockChallengeRepo) UpdateStatus(ctx context.Context, id uint64, status models.ChallengeStatus) error {
	return errors.New("not implemented")
}

func (m *mockChallengeRepo) ListOpen(ctx context.Context) ([]models.Challenge, error) {
	return nil, errors.New("not implemented")
}

func (m *mockChallengeRepo) ListUpcoming(ctx context.Context, now time.Time, limit int) ([]models.Challenge, error) {
	return nil, errors.New("not implemented")
}

func (m *mockChallengeRepo) ListCompleted(ctx context.Context, limit int) ([]models.Challenge, error) {
	return nil, errors.New("not implemented")
}

type mockVoteRepo struct {
	existsFunc               func(ctx context.Context, voterID, submissionID uint64) (bool, error)
	votedSubmissionIDsFunc   func(ctx context.Context, voterID, challengeID uint64) ([]uint64, error)
	castVoteFunc             func(ctx context.Context, vote *models.Vote) error
	aggregateFunc            func(ctx context.Context, submissionID uint64) (repository.VoteAggregate, error)
	countSuperVotesSinceFunc func(ctx context.Context, voterID uint64, since time.Time) (int64, error)
}

func (m *mockVoteRepo) Exists(ctx context.Context, voterID, submissionID uint64) (bool, error) {
	if m.existsFunc != nil {
		return m.existsFunc(ctx, voterID, submissionID)
	}
	return false, errors.New("not implemented")
}

func (m *mockVoteRepo) VotedSubmissionIDs(ctx context.Context, voterID, challengeID uint64) ([]uint64, error) {
	if m.votedSubmissionIDsFunc != nil {
		return m.votedSubmissionIDsFunc(ctx, voterID, challengeID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockVoteRepo) CastVote(ctx context.Context, vote *models.Vote) error {
	if m.castVoteFunc != nil {
		return m.castVoteFunc(ctx, vote)
	}
	return errors.New("not implemented")
}

func (m *mockVoteRepo) AggregateForSubmission(ctx context.Context, submissionID uint64) (repository.VoteAggregate, error) {
	if m.aggregateFunc != nil {
		return m.aggregateFunc(ctx, submissionID)
	}
	return repository.VoteAggregate{}, errors.New("not implemented")
}

func (m *mockVoteRepo) CountSuperVotesSince(ctx context.Context, voterID uint64, since time.Time) (int64, error) {
	if m.countSuperVotesSinceFunc != nil {
		return m.countSuperVotesSinceFunc(ctx, voterID, since)
	}
	return 0, errors.New("not implemented")
}

type mockQueueRepo struct {
	replaceFunc      func(ctx context.Context, userID, challengeID uint64, submissionIDs []uint64) error
	getNextBatchFunc func(ctx context.Context, userID, challengeID uint64, limit int) ([]models.QueuedSubmission, error)
	markVotedFunc    func(ctx context.Context, userID, challengeID, submissionID uint64) error
	countUnvotedFunc func(ctx context.Context, userID, challengeID uint64) (int64, error)
}

func (m *mockQueueRepo) Replace(ctx context.Context, userID, challengeID uint64, submissionIDs []uint64) error {
	if m.replaceFunc != nil {
		return m.replaceFunc(ctx, userID, challengeID, submissionIDs)
	}
	return errors.New("not implemented")
}

func (m *mockQueueRepo) GetNextBatch(ctx context.Context, userID, challengeID uint64, limit int) ([]models.QueuedSubmission, error) {
	if m.getNextBatchFunc != nil {
		return m.getNextBatchFunc(ctx, userID, challengeID, limit)
	}
	return nil, errors.New("not implemented")
}

func (m *mockQueueRepo) MarkVoted(ctx context.Context, userID, challengeID, submissionID uint64) error {
	if m.markVotedFunc != nil {
		return m.markVotedFunc(ctx, userID, challengeID, submissionID)
	}
	return errors.New("not implemented")
}

func (m *mockQueueRepo) CountUnvoted(ctx context.Context, userID, challengeID uint64) (int64, error) {
	if m.countUnvotedFunc != nil {
		return m.countUnvotedFunc(ctx, userID, challengeID)
	}
	return 0, errors.New("not implemented")
}

type mockUserRepo struct {
	getByIDFunc func(ctx context.Context, id uint64) (*models.User, error)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uint64) (*models.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

type mockBlockRepo struct {
	blockedUserIDsFunc func(ctx context.Context, userID uint64) ([]uint64, error)
}

func (m *mockBlockRepo) BlockedUserIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	if m.blockedUserIDsFunc != nil {
		return m.blockedUserIDsFunc(ctx, userID)
	}
	return nil, errors.New("not implemented")
}

type mockRewardRepo struct {
	countGrantsSinceFunc func(ctx context.Context, userID uint64, since time.Time) (int64, error)
}

func (m *mockRewardRepo) CountGrantsSince(ctx context.Context, userID uint64, since time.Time) (int64, error) {
	if m.countGrantsSinceFunc != nil {
		return m.countGrantsSinceFunc(ctx, userID, since)
	}
	return 0, errors.New("not implemented")
}

// Collaborator stubs for the vote cast path.

type stubScorer struct {
	score float64
	err   error
	calls int
}

func (s *stubScorer) Recalculate(ctx context.Context, submissionID uint64) (float64, error) {
	s.calls++
	return s.score, s.err
}

type stubIndex struct {
	err    error
	scores map[uint64]float64
}

func (s *stubIndex) SetScore(ctx context.Context, challengeID, submissionID uint64, score float64) error {
	if s.err != nil {
		return s.err
	}
	if s.scores == nil {
		s.scores = make(map[uint64]float64)
	}
	s.scores[submissionID] = score
	return nil
}

type stubBudget struct {
	remaining int64
	err       error
}

func (s *stubBudget) RemainingSuperVotes(ctx context.Context, userID uint64) (int64, error) {
	return s.remaining, s.err
}

type stubQueueMarker struct {
	err    error
	marked []uint64
}

func (s *stubQueueMarker) MarkVoted(ctx context.Context, userID, challengeID, submissionID uint64) error {
	if s.err != nil {
		return s.err
	}
	s.marked = append(s.marked, submissionID)
	return nil
}
