// Package ranking holds the pure scoring math for the leaderboard. It has no
// I/O and no dependencies so it can be verified in isolation.
package ranking

import (
	"math"
)

const (
	// z is the 1-alpha/2 quantile for a 95% confidence interval.
	z = 1.96

	// SuperVoteWeight makes one super vote count as this many ordinary
	// upvotes. The vote itself is already inside the aggregates, so only
	// weight-1 extra votes are added per super vote.
	SuperVoteWeight = 3
)

// WilsonScore returns the lower bound of the Wilson score interval for the
// true upvote proportion, in [0, 1]. upvotes and totalVotes are the raw
// counts; superVotes is how many of the upvotes were super votes.
func WilsonScore(upvotes, totalVotes, superVotes int64) float64 {
	if totalVotes <= 0 {
		return 0
	}

	extra := superVotes * (SuperVoteWeight - 1)
	pos := float64(upvotes + extra)
	n := float64(totalVotes + extra)

	phat := pos / n
	z2 := z * z

	numerator := phat + z2/(2*n) - z*math.Sqrt((phat*(1-phat)+z2/(4*n))/n)
	score := numerator / (1 + z2/n)

	// Clamp to absorb floating-point overshoot at the boundaries.
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
