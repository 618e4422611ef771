package service

import (
	"context"
	"math/rand"

	"github.com/KEN19920421/30sec-challenge-sub003/internal/metrics"
	"github.com/KEN19920421/30sec-challenge-sub003/internal/models"
	"github.com/KEN19920421/30sec-challenge-sub003/internal/repository"
	"github.com/KEN19920421/30sec-challenge-sub003/pkg/logger"
)

// VoteQueueService builds and serves the per-user randomized worklist of
// submissions awaiting a vote. Queue order determines vote exposure, so the
// shuffle must be a uniform full shuffle with no positional bias.
type VoteQueueService struct {
	queueRepo      repository.VoteQueueRepository
	submissionRepo repository.SubmissionRepository
	voteRepo       repository.VoteRepository
	blockRepo      repository.BlockRepository
}

func NewVoteQueueService(
	queueRepo repository.VoteQueueRepository,
	submissionRepo repository.SubmissionRepository,
	voteRepo repository.VoteRepository,
	blockRepo repository.BlockRepository,
) *VoteQueueService {
	return &VoteQueueService{
		queueRepo:      queueRepo,
		submissionRepo: submissionRepo,
		voteRepo:       voteRepo,
		blockRepo:      blockRepo,
	}
}

// Generate replaces the user's queue for the challenge with a fresh shuffled
// ordering of eligible submissions. Excluded: the user's own entry, entries
// of mutually blocked users, and entries already voted on. Returns the queue
// length.
func (s *VoteQueueService) Generate(ctx context.Context, userID, challengeID uint64) (int, error) {
	blockedIDs, err := s.blockRepo.BlockedUserIDs(ctx, userID)
	if err != nil {
		return 0, err
	}
	blocked := make(map[uint64]bool, len(blockedIDs))
	for _, id := range blockedIDs {
		blocked[id] = true
	}

	votedIDs, err := s.voteRepo.VotedSubmissionIDs(ctx, userID, challengeID)
	if err != nil {
		return 0, err
	}
	voted := make(map[uint64]bool, len(votedIDs))
	for _, id := range votedIDs {
		voted[id] = true
	}

	submissions, err := s.submissionRepo.ListApprovedByChallenge(ctx, challengeID)
	if err != nil {
		return 0, err
	}

	eligible := make([]uint64, 0, len(submissions))
	for _, sub := range submissions {
		if sub.UserID == userID || blocked[sub.UserID] || voted[sub.ID] {
			continue
		}
		eligible = append(eligible, sub.ID)
	}

	rand.Shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})

	if err := s.queueRepo.Replace(ctx, userID, challengeID, eligible); err != nil {
		return 0, err
	}

	metrics.QueuesGenerated.Inc()
	logger.WithFields(map[string]interface{}{
		"user_id":      userID,
		"challenge_id": challengeID,
		"queue_size":   len(eligible),
	}).Debug("Vote queue generated")
	return len(eligible), nil
}

// NextBatch returns up to limit unvoted entries by ascending position. When
// the queue is missing or fully consumed it is regenerated once; an empty
// result after that means the user has voted on everything eligible.
func (s *VoteQueueService) NextBatch(ctx context.Context, userID, challengeID uint64, limit int) ([]models.QueuedSubmission, error) {
	batch, err := s.queueRepo.GetNextBatch(ctx, userID, challengeID, limit)
	if err != nil {
		return nil, err
	}
	if len(batch) > 0 {
		return batch, nil
	}

	if _, err := s.Generate(ctx, userID, challengeID); err != nil {
		return nil, err
	}
	return s.queueRepo.GetNextBatch(ctx, userID, challengeID, limit)
}

// MarkVoted flips one queue entry. Best effort: a failure here never blocks
// the vote path, the queue self-heals on the next regeneration.
func (s *VoteQueueService) MarkVoted(ctx context.Context, userID, challengeID, submissionID uint64) error {
	return s.queueRepo.MarkVoted(ctx, userID, challengeID, submissionID)
}
