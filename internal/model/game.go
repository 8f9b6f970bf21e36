package model

// GameSet is the ordered set of game keys accepted by the server.
type GameSet []string

// DefaultGames are the daily games shipped by default.
var DefaultGames = GameSet{"wordJecna", "connections", "fixCode", "crossRoute"}

// Contains reports whether game is a configured key.
func (s GameSet) Contains(game string) bool {
	for _, g := range s {
		if g == game {
			return true
		}
	}
	return false
}
