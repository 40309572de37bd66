package main

import (
	"context"
	"log"
	"net/http"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/TenSixteenBio/GSEApy/adapters/api"
	"github.com/TenSixteenBio/GSEApy/adapters/postgres"
	"github.com/TenSixteenBio/GSEApy/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL must be set to serve stored runs")
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("connecting to results database: %v", err)
	}
	defer db.Close()

	if err := postgres.EnsureSchema(context.Background(), db); err != nil {
		log.Fatalf("ensuring schema: %v", err)
	}

	server := api.NewServer(postgres.NewRunRepository(db))
	addr := ":" + cfg.Server.Port
	log.Printf("[API] serving enrichment results on %s", addr)
	if err := http.ListenAndServe(addr, server.Router()); err != nil {
		log.Fatal("server failed:", err)
	}
}
