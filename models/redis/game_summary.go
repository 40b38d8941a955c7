package redis

import "time"

// GameSummary is the lobby-listing snapshot of a game kept in Redis. It is
// refreshed by the sync manager after every committed command and feeds the
// get-all-games request and the global all-games broadcast.
type GameSummary struct {
	Number      int       `json:"number"`
	GameType    string    `json:"game_type"`
	State       string    `json:"state"`
	Owner       string    `json:"owner"`
	PlayerCount int       `json:"player_count"`
	PlayersMin  int       `json:"players_min"`
	PlayersMax  int       `json:"players_max"`
	CreatedAt   time.Time `json:"created_at"`
}
