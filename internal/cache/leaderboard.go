package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// leaderboardTTL bounds how long a stale index can outlive its challenge; the
// authoritative scores live in the submissions table.
const leaderboardTTL = 48 * time.Hour

// Leaderboard is the per-challenge ordered score index, stored as a redis
// sorted set keyed by submission id with the wilson score as the sort key.
type Leaderboard struct {
	rdb *redis.Client
}

func NewLeaderboard(rdb *redis.Client) *Leaderboard {
	return &Leaderboard{rdb: rdb}
}

func leaderboardKey(challengeID uint64) string {
	return fmt.Sprintf("leaderboard:challenge:%d", challengeID)
}

// Entry is one ranked row.
type Entry struct {
	SubmissionID uint64  `json:"submission_id"`
	Score        float64 `json:"score"`
	Rank         int64   `json:"rank"`
}

// SetScore upserts one submission's score.
func (l *Leaderboard) SetScore(ctx context.Context, challengeID, submissionID uint64, score float64) error {
	key := leaderboardKey(challengeID)
	pipe := l.rdb.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  score,
		Member: strconv.FormatUint(submissionID, 10),
	})
	pipe.Expire(ctx, key, leaderboardTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// Remove drops one submission from the index.
func (l *Leaderboard) Remove(ctx context.Context, challengeID, submissionID uint64) error {
	return l.rdb.ZRem(ctx, leaderboardKey(challengeID), strconv.FormatUint(submissionID, 10)).Err()
}

// Exists reports whether the challenge has a populated index.
func (l *Leaderboard) Exists(ctx context.Context, challengeID uint64) (bool, error) {
	n, err := l.rdb.Exists(ctx, leaderboardKey(challengeID)).Result()
	return n > 0, err
}

// TopN returns up to limit entries ordered by descending score.
func (l *Leaderboard) TopN(ctx context.Context, challengeID uint64, limit int64) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}

	zs, err := l.rdb.ZRevRangeWithScores(ctx, leaderboardKey(challengeID), 0, limit-1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(zs))
	for i, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		id, err := strconv.ParseUint(member, 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			SubmissionID: id,
			Score:        z.Score,
			Rank:         int64(i) + 1,
		})
	}
	return entries, nil
}

// Rank returns the 1-based rank of a submission. The bool is false when the
// submission is not in the index.
func (l *Leaderboard) Rank(ctx context.Context, challengeID, submissionID uint64) (int64, bool, error) {
	rank, err := l.rdb.ZRevRank(ctx, leaderboardKey(challengeID), strconv.FormatUint(submissionID, 10)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return rank + 1, true, nil
}

// Rebuild replaces the whole index atomically from persisted scores.
func (l *Leaderboard) Rebuild(ctx context.Context, challengeID uint64, scores map[uint64]float64) error {
	key := leaderboardKey(challengeID)

	pipe := l.rdb.TxPipeline()
	pipe.Del(ctx, key)
	if len(scores) > 0 {
		members := make([]redis.Z, 0, len(scores))
		for id, score := range scores {
			members = append(members, redis.Z{
				Score:  score,
				Member: strconv.FormatUint(id, 10),
			})
		}
		pipe.ZAdd(ctx, key, members...)
		pipe.Expire(ctx, key, leaderboardTTL)
	}
	_, err := pipe.Exec(ctx)
	return err
}
