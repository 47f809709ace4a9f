package repositories

import (
	"database/sql"
	"eco-route-service/internal/domain"
	"eco-route-service/internal/platform/db"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Initialize the database schema for the given dialect.
func InitSchema(conn *sql.DB, dialect db.Dialect) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}

	statements, err := schemaFor(dialect)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

func schemaFor(dialect db.Dialect) ([]string, error) {
	switch dialect {
	case db.SQLite:
		return []string{
			`
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address TEXT PRIMARY KEY,
        formatted_address TEXT NOT NULL,
        lat REAL NOT NULL,
        lng REAL NOT NULL
    );
	`,
			`
	CREATE TABLE IF NOT EXISTS reports (
        id TEXT PRIMARY KEY,
        file_name TEXT NOT NULL,
        body BLOB NOT NULL,
        created_at TIMESTAMP NOT NULL
    );
	`,
			`
	CREATE INDEX IF NOT EXISTS idx_reports_created_at
    ON reports(created_at);
	`,
		}, nil
	case db.Postgres:
		return []string{
			`
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address TEXT PRIMARY KEY,
        formatted_address TEXT NOT NULL,
        lat DOUBLE PRECISION NOT NULL,
        lng DOUBLE PRECISION NOT NULL
    );
	`,
			`
	CREATE TABLE IF NOT EXISTS reports (
        id TEXT PRIMARY KEY,
        file_name TEXT NOT NULL,
        body BYTEA NOT NULL,
        created_at TIMESTAMPTZ NOT NULL
    );
	`,
			`
	CREATE INDEX IF NOT EXISTS idx_reports_created_at
    ON reports(created_at);
	`,
		}, nil
	default:
		return nil, fmt.Errorf("unknown dialect %q", dialect)
	}
}

type GeocodeSeed struct {
	Address          string  `json:"address"`
	FormattedAddress string  `json:"formatted_address"`
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
}

// ReadGeocodeSeeds loads known address -> place pairs from a JSON file, keyed
// by the address lowercased with whitespace collapsed, the geocode cache key.
func ReadGeocodeSeeds(jsonPath string) (map[string]domain.Place, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("seed geocode cache: read %q: %w", jsonPath, err)
	}

	var data []GeocodeSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("seed geocode cache: parse json: %w", err)
	}

	out := make(map[string]domain.Place, len(data))
	for i, item := range data {
		addr := strings.Join(strings.Fields(item.Address), " ")
		key := strings.ToLower(addr)
		if key == "" {
			return nil, fmt.Errorf("seed geocode cache: item at index %d: address cannot be empty", i+1)
		}

		loc := domain.Coordinate{Lat: item.Lat, Lng: item.Lng}
		if !loc.Valid() {
			return nil, fmt.Errorf("seed geocode cache: item at index %d: coordinate %s out of range", i+1, loc)
		}

		formatted := strings.TrimSpace(item.FormattedAddress)
		if formatted == "" {
			formatted = addr
		}
		out[key] = domain.Place{FormattedAddress: formatted, Location: loc}
	}

	return out, nil
}
