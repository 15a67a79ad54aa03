// services/history_service.go
package services

import (
	"fmt"

	"github.com/rihaans/GameHub/models"
	"github.com/rihaans/GameHub/persistence"
)

// HistoryService sits between the live server and the history store.
type HistoryService struct {
	store persistence.Store
}

func NewHistoryService(store persistence.Store) *HistoryService {
	return &HistoryService{store: store}
}

// RecordGame archives one finished game.
func (s *HistoryService) RecordGame(rec models.GameRecord) error {
	if rec.RoomID == "" || rec.GameType == "" {
		return fmt.Errorf("incomplete game record for room %q", rec.RoomID)
	}
	return s.store.SaveGameRecord(rec)
}

// PlayerStats aggregates a player's archived games.
func (s *HistoryService) PlayerStats(playerID string) (models.PlayerStats, error) {
	if playerID == "" {
		return models.PlayerStats{}, fmt.Errorf("player id required")
	}
	return s.store.PlayerStats(playerID)
}
