package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"goproductsync_api/config"
	"goproductsync_api/internal/app"
	"goproductsync_api/pkg/dbconnect/postgres"
)

func main() {
	log.Printf("\nStarted app\n")

	cfgPath := os.Getenv("APP_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("Failed to load config: %s", err)
		}
		log.Printf("Config %s not found, using defaults", cfgPath)
		cfg = config.DefaultAppConfig()
	}
	if cfg.Postgres.Host == "" {
		cfg.Postgres = *config.GetPostgresConfig()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	connector := postgres.NewPgConnector(&cfg.Postgres)
	server := app.NewSyncServer(connector, cfg)
	if err := server.Run(ctx); err != nil {
		log.Fatalf("Server stopped: %s", err)
	}
}
