package main

import (
	"log"

	"github.com/taskdesk/config"
	"github.com/taskdesk/database"
	"github.com/taskdesk/logger"
	"go.uber.org/zap"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	zlog, err := logger.NewZapLogger(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	zlog.Info("starting database migration")

	// Initialize runs AutoMigrate for every model
	if _, err := database.Initialize(cfg.DatabaseURL, zlog); err != nil {
		zlog.Fatal("database migration failed", zap.Error(err))
	}

	zlog.Info("database migration completed successfully")
}
