// models/gorm_models.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// GormGameRecord is the persisted form of a finished game.
type GormGameRecord struct {
	gorm.Model
	RoomID    string `gorm:"index;not null"`
	GameType  string `gorm:"not null"`
	Reason    string `gorm:"not null"`
	Players   []byte `gorm:"type:jsonb;not null"`
	Result    []byte `gorm:"type:jsonb"`
	StartedAt time.Time
	EndedAt   time.Time
}
