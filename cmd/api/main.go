package main

import (
	"context"
	"log"

	"lcms-backend/internal/bootstrap"
	"lcms-backend/internal/shared/config"
	"lcms-backend/internal/shared/server"
	"lcms-backend/internal/shared/storage/db"
)

func main() {
	cfg := config.Load()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	if err := db.RunMigrations(context.Background(), app.DB); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	addr := server.Addr(cfg.Port)
	log.Printf("starting API server on %s", addr)

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
