package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/KEN19920421/30sec-challenge-sub003/internal/cache"
	"github.com/KEN19920421/30sec-challenge-sub003/internal/config"
	"github.com/KEN19920421/30sec-challenge-sub003/internal/metrics"
	"github.com/KEN19920421/30sec-challenge-sub003/internal/models"
	"github.com/KEN19920421/30sec-challenge-sub003/internal/repository"
	"github.com/KEN19920421/30sec-challenge-sub003/pkg/logger"
)

// transition is one edge of the challenge state machine. The three edges
// operate on disjoint source statuses, so they can run concurrently; each
// edge only races against itself across instances, which the lock prevents.
type transition struct {
	name       string
	from       models.ChallengeStatus
	to         models.ChallengeStatus
	timeColumn string
}

var transitions = []transition{
	{name: "activate", from: models.ChallengeStatusScheduled, to: models.ChallengeStatusActive, timeColumn: "starts_at"},
	{name: "open_voting", from: models.ChallengeStatusActive, to: models.ChallengeStatusVoting, timeColumn: "ends_at"},
	{name: "complete", from: models.ChallengeStatusVoting, to: models.ChallengeStatusCompleted, timeColumn: "voting_ends_at"},
}

type viewInvalidator interface {
	InvalidateViews(ctx context.Context) error
}

// LifecycleScheduler advances challenges between phases on a fixed tick. It
// runs on every replica; the per-transition redis mutex guarantees exactly
// one replica applies a given transition batch per tick.
type LifecycleScheduler struct {
	cron          *cron.Cron
	challengeRepo repository.ChallengeRepository
	locker        *cache.Locker
	views         viewInvalidator
	tick          time.Duration
	lockTTL       time.Duration

	// now is swappable in tests.
	now func() time.Time
}

func NewLifecycleScheduler(
	challengeRepo repository.ChallengeRepository,
	locker *cache.Locker,
	views viewInvalidator,
	cfg config.SchedulerConfig,
) *LifecycleScheduler {
	return &LifecycleScheduler{
		cron:          cron.New(),
		challengeRepo: challengeRepo,
		locker:        locker,
		views:         views,
		tick:          time.Duration(cfg.TickSeconds) * time.Second,
		lockTTL:       time.Duration(cfg.LockTTLSeconds) * time.Second,
		now:           time.Now,
	}
}

func (s *LifecycleScheduler) Start() error {
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.tick), s.RunTick)
	if err != nil {
		return err
	}

	s.cron.Start()
	logger.Info("Challenge lifecycle scheduler started")
	return nil
}

func (s *LifecycleScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Challenge lifecycle scheduler stopped")
}

// RunTick attempts all three transitions concurrently. Exported so an admin
// endpoint can trigger an immediate pass.
func (s *LifecycleScheduler) RunTick() {
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, tr := range transitions {
		wg.Add(1)
		go func(tr transition) {
			defer wg.Done()
			s.runTransition(ctx, tr)
		}(tr)
	}
	wg.Wait()
}

func (s *LifecycleScheduler) runTransition(ctx context.Context, tr transition) {
	lock, acquired, err := s.locker.Acquire(ctx, "scheduler:lock:"+tr.name, s.lockTTL)
	if err != nil {
		logger.WithError(err).Warn("Scheduler lock acquisition failed")
		return
	}
	if !acquired {
		// Another instance owns this tick. Expected, not an error.
		metrics.SchedulerTicksSkipped.WithLabelValues(tr.name).Inc()
		return
	}
	defer func() {
		if err := lock.Release(ctx); err != nil {
			logger.WithError(err).Warn("Scheduler lock release failed")
		}
	}()

	due, err := s.challengeRepo.ListDue(ctx, tr.from, tr.timeColumn, s.now())
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"transition": tr.name,
		}).WithError(err).Error("Failed to list due challenges")
		return
	}

	moved := 0
	for _, challenge := range due {
		// Each challenge is independent: one failure must not abort the
		// batch, the challenge is retried on the next tick.
		if err := s.challengeRepo.UpdateStatus(ctx, challenge.ID, tr.to); err != nil {
			logger.WithFields(map[string]interface{}{
				"transition":   tr.name,
				"challenge_id": challenge.ID,
			}).WithError(err).Error("Failed to transition challenge")
			continue
		}

		moved++
		metrics.SchedulerTransitions.WithLabelValues(tr.name).Inc()
		logger.WithFields(map[string]interface{}{
			"transition":   tr.name,
			"challenge_id": challenge.ID,
			"from":         tr.from,
			"to":           tr.to,
		}).Info("Challenge transitioned")
	}

	if moved > 0 {
		if err := s.views.InvalidateViews(ctx); err != nil {
			logger.WithError(err).Warn("Challenge view invalidation failed")
		}
	}
}
