package main

import (
	"github.com/rihaans/GameHub/config"
	"github.com/rihaans/GameHub/game"
	"github.com/rihaans/GameHub/logger"
	"github.com/rihaans/GameHub/persistence"
	"github.com/rihaans/GameHub/server"
)

func main() {
	// Initialize logger
	logger.Init()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open the history store
	store := openStore(cfg)
	defer store.Close()

	// Register game types
	registry := game.NewRegistry()
	registry.Register("counter", game.NewCounter())
	registry.Register("rock_paper_scissors", game.NewRockPaperScissors())

	// Start server
	gameServer := server.NewGameServer(cfg, registry, store)
	logger.Log.Infof("Starting game server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}

func openStore(cfg *config.Config) persistence.Store {
	if !cfg.Database.Enabled {
		return persistence.NewNoop()
	}

	pg := cfg.Database.Postgres
	var (
		store persistence.Store
		err   error
	)
	switch cfg.Database.Driver {
	case "pq":
		store, err = persistence.NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	default:
		store, err = persistence.NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	}
	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}
	logger.Log.Info("Database connection successful.")
	return store
}
