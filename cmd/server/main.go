package main

import (
	"context"
	"database/sql"
	"eco-route-service/internal/adapters/cache"
	"eco-route-service/internal/adapters/geocoding"
	"eco-route-service/internal/adapters/optimizer"
	"eco-route-service/internal/adapters/reportstore"
	"eco-route-service/internal/adapters/repositories"
	"eco-route-service/internal/api"
	"eco-route-service/internal/config"
	"eco-route-service/internal/platform/db"
	"eco-route-service/internal/ports"
	"eco-route-service/internal/services"
	"eco-route-service/internal/stoplist"
	"fmt"
	"log"
	"net/http"
	"time"
)

// main is the application composition root.
// It wires concrete adapters (SQL, Redis, remote optimizer, geocoder) behind
// ports and starts the HTTP server.
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

	// Initialize schema on startup for local runs.
	if err := repositories.InitSchema(conn, dialect); err != nil {
		log.Fatal(err)
	}

	geocodeCache := newGeocodeCache(conn, dialect)

	reports, closeReports, err := newReportStore(cfg.Storage, conn, dialect)
	if err != nil {
		log.Fatal(err)
	}
	defer closeReports()

	opt, err := newOptimizer(cfg.Optimizer)
	if err != nil {
		log.Fatal(err)
	}

	var geocodingSvc *services.GeocodingService
	if cfg.Geocoder.Endpoint != "" {
		g, err := geocoding.NewHTTPGeocoder(geocoding.Config{
			Endpoint:      cfg.Geocoder.Endpoint,
			APIKey:        cfg.Geocoder.APIKey,
			RatePerSecond: cfg.Geocoder.RatePerSecond,
			Burst:         cfg.Geocoder.Burst,
			MaxResults:    cfg.Geocoder.MaxResults,
		})
		if err != nil {
			log.Fatal(err)
		}
		geocodingSvc = services.NewGeocodingService(g, geocodeCache)
	} else {
		log.Println("GEOCODER_URL not set; free-text stop resolution disabled")
	}

	catalog, err := stoplist.LoadCatalog(cfg.Presets.Dir)
	if err != nil {
		log.Fatal(err)
	}

	planner := services.NewPlanner(services.PlannerConfig{
		Optimizer:     opt,
		Geocoding:     geocodingSvc,
		Presets:       catalog,
		Reports:       reports,
		Broker:        services.NewStatusBroker(),
		ClientOptions: []services.ClientOption{services.WithColdStartAfter(cfg.Optimizer.ColdStartAfter)},
		SessionTTL:    cfg.Server.SessionTTL,
	})
	go planner.RunJanitor(context.Background(), time.Minute)

	router := api.NewRouter(planner, api.Options{AllowedOrigins: cfg.Server.AllowedOrigins})

	// The write timeout has to outlive a cold-started optimizer call.
	log.Printf("Server listening addr=:%s dialect=%s", cfg.Server.Port, dialect)
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func newGeocodeCache(conn *sql.DB, dialect db.Dialect) ports.GeocodeCache {
	if dialect == db.Postgres {
		return cache.NewSQLGeocodeCache(conn)
	}
	return cache.NewSqliteGeocodeCache(conn)
}

// newReportStore prefers Redis, then the SQL database.
func newReportStore(s config.Storage, conn *sql.DB, dialect db.Dialect) (ports.ReportStore, func(), error) {
	if s.RedisURL != "" {
		rs, err := reportstore.NewRedisStore(s.RedisURL, s.ReportTTL)
		if err != nil {
			return nil, nil, fmt.Errorf("report store: %w", err)
		}
		return rs, func() { _ = rs.Close() }, nil
	}
	if dialect == db.Postgres {
		return repositories.NewSQLReportRepository(conn), func() {}, nil
	}
	return repositories.NewSqliteReportRepository(conn), func() {}, nil
}

func newOptimizer(o config.Optimizer) (ports.RouteOptimizer, error) {
	if o.URL == "" {
		log.Println("OPTIMIZER_URL not set; using the in-process solver")
		return services.NewLocalOptimizer(), nil
	}
	return optimizer.NewHTTPOptimizer(o.URL,
		optimizer.WithRetry(o.MaxAttempts, o.Backoff),
		optimizer.WithHTTPClient(&http.Client{Timeout: o.Timeout}),
	)
}
