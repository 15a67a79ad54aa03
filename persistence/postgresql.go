// persistence/postgresql.go
package persistence

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/rihaans/GameHub/models"
)

// PostgreSQL is the plain database/sql Store implementation.
type PostgreSQL struct {
	db *sql.DB
}

func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	db.SetMaxIdleConns(10)
	db.SetMaxOpenConns(100)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS game_records (
            id         SERIAL PRIMARY KEY,
            room_id    TEXT NOT NULL,
            game_type  TEXT NOT NULL,
            reason     TEXT NOT NULL,
            players    JSONB NOT NULL,
            result     JSONB,
            started_at TIMESTAMPTZ,
            ended_at   TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`); err != nil {
		db.Close()
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

func (p *PostgreSQL) SaveGameRecord(rec models.GameRecord) error {
	players, err := json.Marshal(rec.Players)
	if err != nil {
		return fmt.Errorf("marshal players: %w", err)
	}
	result, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	_, err = p.db.Exec(`
        INSERT INTO game_records (room_id, game_type, reason, players, result, started_at, ended_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.RoomID, rec.GameType, rec.Reason, players, result, rec.StartedAt, rec.EndedAt,
	)
	return err
}

func (p *PostgreSQL) PlayerStats(playerID string) (models.PlayerStats, error) {
	var stats models.PlayerStats

	err := p.db.QueryRow(`
        SELECT
            COUNT(*),
            COALESCE(SUM(CASE WHEN result->>'winner' = $1 THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN result->>'winner' NOT IN ('', $1) THEN 1 ELSE 0 END), 0)
        FROM game_records
        WHERE players @> $2`,
		playerID,
		fmt.Sprintf(`[{"player_id": %q}]`, playerID),
	).Scan(&stats.TotalGames, &stats.Wins, &stats.Losses)
	if err == sql.ErrNoRows {
		return stats, ErrRecordNotFound
	}

	return stats, err
}

func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
