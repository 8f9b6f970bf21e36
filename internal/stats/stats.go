// Package stats derives a user's running counters from score events.
package stats

import (
	"math"

	"github.com/dtroode/jecnagames-server/internal/model"
)

// Apply returns the stats that follow prior after one game with the given outcome.
// Negative points never reduce the score, and the score saturates at
// math.MaxInt64 instead of wrapping.
func Apply(prior model.Stats, won bool, points int64) model.Stats {
	next := prior
	next.TotalGames++
	next.Score = AddScore(prior.Score, points)

	if !won {
		next.Streak = 0
		return next
	}

	next.Wins++
	next.Streak = prior.Streak + 1
	if next.Streak > next.BestStreak {
		next.BestStreak = next.Streak
	}
	return next
}

// Updater binds a submission to Apply so a store can run it atomically.
func Updater(won bool, points int64) model.StatsUpdate {
	return func(prior model.Stats) model.Stats {
		return Apply(prior, won, points)
	}
}

// AddScore adds a non-negative delta to score, saturating at math.MaxInt64.
// Negative deltas are ignored.
func AddScore(score, delta int64) int64 {
	if delta <= 0 {
		return score
	}
	if score > math.MaxInt64-delta {
		return math.MaxInt64
	}
	return score + delta
}
