// Package leaderboard projects the user set into ranked player and class views.
// Nothing here is stored; both views are recomputed from the users on every call.
package leaderboard

import (
	"cmp"
	"slices"

	"github.com/dtroode/jecnagames-server/internal/model"
	"github.com/dtroode/jecnagames-server/internal/stats"
)

// DefaultLimit is the default size of the player leaderboard.
const DefaultLimit = 50

// Players ranks all users by score descending, username ascending on ties,
// and keeps the first limit entries. limit <= 0 means DefaultLimit.
func Players(users []model.User, limit int) []model.PlayerEntry {
	if limit <= 0 {
		limit = DefaultLimit
	}

	sorted := slices.Clone(users)
	slices.SortFunc(sorted, func(a, b model.User) int {
		if c := cmp.Compare(b.Stats.Score, a.Stats.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Username, b.Username)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	entries := make([]model.PlayerEntry, 0, len(sorted))
	for i, u := range sorted {
		entries = append(entries, model.PlayerEntry{
			Rank:     i + 1,
			Username: u.Username,
			Class:    u.Class,
			Score:    u.Stats.Score,
			Wins:     u.Stats.Wins,
			Streak:   u.Stats.Streak,
		})
	}
	return entries
}

// Classes groups users with a class, ranks groups by average score descending
// and class name ascending on ties. Users without a class are left out.
func Classes(users []model.User) []model.ClassEntry {
	groups := make(map[string]*model.ClassEntry)
	for _, u := range users {
		if !u.HasClass() {
			continue
		}
		g, ok := groups[*u.Class]
		if !ok {
			g = &model.ClassEntry{Class: *u.Class}
			groups[*u.Class] = g
		}
		g.TotalScore = stats.AddScore(g.TotalScore, u.Stats.Score)
		g.Players++
	}

	entries := make([]model.ClassEntry, 0, len(groups))
	for _, g := range groups {
		g.AvgScore = roundDiv(g.TotalScore, int64(g.Players))
		entries = append(entries, *g)
	}

	slices.SortFunc(entries, func(a, b model.ClassEntry) int {
		if c := cmp.Compare(b.AvgScore, a.AvgScore); c != 0 {
			return c
		}
		return cmp.Compare(a.Class, b.Class)
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// roundDiv divides rounding half away from zero. d must be positive.
// It rounds on the remainder so no intermediate value exceeds n.
func roundDiv(n, d int64) int64 {
	q, r := n/d, n%d
	if r < 0 {
		r = -r
	}
	if r >= d-r {
		if n < 0 {
			return q - 1
		}
		return q + 1
	}
	return q
}
