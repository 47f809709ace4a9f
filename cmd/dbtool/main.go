package main

import (
	"context"
	"database/sql"
	"eco-route-service/internal/adapters/cache"
	"eco-route-service/internal/adapters/repositories"
	"eco-route-service/internal/config"
	"eco-route-service/internal/platform/db"
	"eco-route-service/internal/ports"
	"fmt"
	"log"
)

func main() {
	config.LoadDotEnv()

	cfg, err := config.Load(config.Get("CONFIG_PATH", ""))
	if err != nil {
		log.Fatal(err)
	}

	conn, dialect, err := db.OpenAny(cfg.Storage.DatabaseURL, cfg.Storage.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := initAndSeed(conn, dialect, cfg.Storage.SeedPath); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(conn *sql.DB, dialect db.Dialect, seedPath string) error {
	log.Printf("Initializing database schema... dialect=%s", dialect)
	if err := repositories.InitSchema(conn, dialect); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	log.Println("Schema ready.")

	if seedPath == "" {
		return nil
	}

	log.Println("Seeding geocode cache...")
	seeds, err := repositories.ReadGeocodeSeeds(seedPath)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	var c ports.GeocodeCache = cache.NewSqliteGeocodeCache(conn)
	if dialect == db.Postgres {
		c = cache.NewSQLGeocodeCache(conn)
	}
	if err := c.PutMany(context.Background(), seeds); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	log.Printf("Seeding complete. places=%d", len(seeds))

	return nil
}
