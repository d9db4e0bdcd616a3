package main

import (
	"github.com/harelmarin/CultureClash/config"
	"github.com/harelmarin/CultureClash/leaderboard"
	"github.com/harelmarin/CultureClash/logger"
	"github.com/harelmarin/CultureClash/monitor"
	"github.com/harelmarin/CultureClash/persistence"
	"github.com/harelmarin/CultureClash/room"
	"github.com/harelmarin/CultureClash/server"
	"github.com/harelmarin/CultureClash/timer"
)

func main() {
	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Database
	var db persistence.Database
	switch cfg.Database.Driver {
	case "sql":
		db, err = persistence.NewPostgreSQL(
			cfg.Database.Postgres.Host,
			cfg.Database.Postgres.Port,
			cfg.Database.Postgres.User,
			cfg.Database.Postgres.Password,
			cfg.Database.Postgres.DBName,
		)
	default:
		db, err = persistence.NewGormPostgreSQL(
			cfg.Database.Postgres.Host,
			cfg.Database.Postgres.Port,
			cfg.Database.Postgres.User,
			cfg.Database.Postgres.Password,
			cfg.Database.Postgres.DBName,
		)
	}
	if err != nil {
		logger.Log.Fatalf("Failed to connect to database: %v", err)
	}
	logger.Log.Info("Database connection successful.")

	// Initialize Redis ranking
	ranking, err := leaderboard.NewService(cfg.Redis)
	if err != nil {
		logger.Log.Fatalf("Failed to connect to redis: %v", err)
	}
	logger.Log.Info("Redis connection successful.")

	// Metrics endpoint
	mon := monitor.NewMonitor("cultureclash")
	mon.StartServer(cfg.Server.MetricsAddress)

	// Room infrastructure
	timers := timer.NewTimerManager()
	roomManager := room.NewRoomManager(timers, room.Settings{
		AcceptDeadline: cfg.Game.AcceptDeadline,
		ForfeitGrace:   cfg.Game.ForfeitGrace,
	})

	// Initialize Game Server
	gameServer := server.New(cfg, db, ranking, roomManager, mon)

	// Start Server
	logger.Log.Infof("Starting game server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
