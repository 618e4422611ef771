package service

import (
	"context"
	"time"

	"github.com/KEN19920421/30sec-challenge-sub003/internal/models"
	"github.com/KEN19920421/30sec-challenge-sub003/internal/repository"
	apperrors "github.com/KEN19920421/30sec-challenge-sub003/pkg/errors"
)

// Daily super-vote allotments per subscription tier. Single substitution
// point; change here rather than in config.
const (
	freeDailyAllotmentPro  int64 = 5
	freeDailyAllotmentFree int64 = 3
)

// BudgetService computes the remaining super-vote budget for "today". The
// budget is derived state and never persisted: subscription tier plus
// ad-reward grants since local midnight, minus super votes already cast.
type BudgetService struct {
	userRepo   repository.UserRepository
	voteRepo   repository.VoteRepository
	rewardRepo repository.RewardRepository

	// now is swappable in tests.
	now func() time.Time
}

func NewBudgetService(
	userRepo repository.UserRepository,
	voteRepo repository.VoteRepository,
	rewardRepo repository.RewardRepository,
) *BudgetService {
	return &BudgetService{
		userRepo:   userRepo,
		voteRepo:   voteRepo,
		rewardRepo: rewardRepo,
		now:        time.Now,
	}
}

// RemainingSuperVotes returns how many super votes the user may still cast
// today. Never negative.
func (s *BudgetService) RemainingSuperVotes(ctx context.Context, userID uint64) (int64, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, apperrors.NotFound("user not found")
	}

	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	earned, err := s.rewardRepo.CountGrantsSince(ctx, userID, midnight)
	if err != nil {
		return 0, err
	}

	used, err := s.voteRepo.CountSuperVotesSince(ctx, userID, midnight)
	if err != nil {
		return 0, err
	}

	var budget int64
	if user.SubscriptionTier == models.TierPro {
		budget = freeDailyAllotmentPro + earned
	} else {
		// Free users only unlock super votes through ads, capped at the
		// free allotment.
		budget = earned
		if budget > freeDailyAllotmentFree {
			budget = freeDailyAllotmentFree
		}
	}

	remaining := budget - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
