// models/models.go
package models

import (
	"time"
)

// PlayerInfo is the per-player slice of a room snapshot as it appears on the
// wire and in game records. Order of a []PlayerInfo is always join order.
type PlayerInfo struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Ready    bool   `json:"ready"`
	Score    int    `json:"score"`
}

// GameRecord captures one finished game for the history store.
type GameRecord struct {
	RoomID    string                 `json:"room_id"`
	GameType  string                 `json:"game_type"`
	Players   []PlayerInfo           `json:"players"`
	Reason    string                 `json:"reason"` // complete / abandoned
	Result    map[string]interface{} `json:"result"`
	StartedAt time.Time              `json:"started_at"`
	EndedAt   time.Time              `json:"ended_at"`
}

// RoomSummary is the admin view of a live room, exposed over RPC.
type RoomSummary struct {
	RoomID      string    `json:"room_id"`
	GameType    string    `json:"game_type"`
	Phase       string    `json:"phase"`
	PlayerCount int       `json:"player_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// PlayerStats aggregates a player's finished games.
type PlayerStats struct {
	TotalGames int `json:"total_games"`
	Wins       int `json:"wins"`
	Losses     int `json:"losses"`
}
