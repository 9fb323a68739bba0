package main

import (
	"flag"
	"log"

	"github.com/LavaJover/shvark-rate-service/internal/config"
	"github.com/LavaJover/shvark-rate-service/internal/infrastructure/migrate"
	"github.com/LavaJover/shvark-rate-service/internal/infrastructure/postgres"
)

func main() {
	direction := flag.String("direction", "up", "migration direction: up or down")
	steps := flag.Int("steps", 0, "number of migrations to apply, 0 applies all")
	path := flag.String("path", "", "migrations directory (defaults to rate_db.migrations_path)")
	flag.Parse()

	cfg := config.MustLoad()

	dir, err := migrate.ParseDirection(*direction)
	if err != nil {
		log.Fatal(err)
	}
	if *path == "" {
		*path = cfg.RateDB.MigrationsPath
	}

	db := postgres.MustInitDB(&cfg.RateDB)
	if err := migrate.Run(db, *path, migrate.Plan{Direction: dir, Steps: *steps}); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	log.Printf("migrations applied (%s)", dir)
}
