// persistence/interface.go
package persistence

import (
	"errors"

	"github.com/rihaans/GameHub/models"
)

// Store archives finished games. The live server never reads from it on the
// hot path; all room and player state stays in memory for the process
// lifetime.
type Store interface {
	SaveGameRecord(rec models.GameRecord) error
	PlayerStats(playerID string) (models.PlayerStats, error)
	Close() error
}

var ErrRecordNotFound = errors.New("record not found")
