package main

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"fintrack-server/src/api"
	"fintrack-server/src/config"
	"fintrack-server/src/db"
	"fintrack-server/src/logging"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	// Connect to database
	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("DB connection failed")
	}
	defer pool.Close()

	if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("DB migration failed")
	}

	db.InitCache()

	// Router
	router := api.NewRouter(pool, cfg)

	log.Info().Str("port", cfg.Port).Msg("API server running")
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
