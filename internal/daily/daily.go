// Package daily answers whether a user has already played each game today.
//
// "Today" is the calendar day of the reference instant in one fixed location,
// configured once per process. Scores carry UTC timestamps; the comparison is
// done on instants, so the location only decides where the day boundaries fall.
package daily

import (
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/jecnagames-server/internal/model"
)

// Window returns the half-open interval [start, end) of the calendar day
// containing asOf in loc.
func Window(asOf time.Time, loc *time.Location) (start, end time.Time) {
	local := asOf.In(loc)
	start = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	// AddDate keeps DST days at their real length.
	end = start.AddDate(0, 0, 1)
	return start, end
}

// HasPlayedToday reports whether history holds a score by userID for game
// created on the calendar day of asOf.
func HasPlayedToday(history []model.Score, userID uuid.UUID, game string, asOf time.Time, loc *time.Location) bool {
	start, end := Window(asOf, loc)
	for _, s := range history {
		if s.UserID == nil || *s.UserID != userID || s.Game != game {
			continue
		}
		if !s.CreatedAt.Before(start) && s.CreatedAt.Before(end) {
			return true
		}
	}
	return false
}

// Status evaluates HasPlayedToday for every configured game. A nil userID
// (anonymous caller) has played nothing.
func Status(history []model.Score, userID *uuid.UUID, games model.GameSet, asOf time.Time, loc *time.Location) map[string]model.GameStatus {
	status := make(map[string]model.GameStatus, len(games))
	for _, game := range games {
		played := false
		if userID != nil {
			played = HasPlayedToday(history, *userID, game, asOf, loc)
		}
		status[game] = model.GameStatus{Played: played}
	}
	return status
}
