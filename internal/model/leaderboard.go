package model

// PlayerEntry is one row of the player leaderboard.
type PlayerEntry struct {
	Rank     int
	Username string
	Class    *string
	Score    int64
	Wins     int
	Streak   int
}

// ClassEntry is one row of the class leaderboard.
type ClassEntry struct {
	Rank       int
	Class      string
	TotalScore int64
	AvgScore   int64
	Players    int
}
