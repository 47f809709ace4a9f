package repositories

import (
	"context"
	"database/sql"
	"eco-route-service/internal/platform/db"
	"eco-route-service/internal/ports"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, InitSchema(conn, db.SQLite))
	return conn
}

func TestInitSchemaIsIdempotent(t *testing.T) {
	conn := openTestDB(t)

	assert.NoError(t, InitSchema(conn, db.SQLite))
}

func TestInitSchemaRejectsUnknownDialect(t *testing.T) {
	conn := openTestDB(t)

	assert.Error(t, InitSchema(conn, db.Dialect("oracle")))
	assert.Error(t, InitSchema(nil, db.SQLite))
}

func TestSqliteReportRepositoryRoundTrip(t *testing.T) {
	repo := NewSqliteReportRepository(openTestDB(t))
	ctx := context.Background()
	created := time.Date(2025, 3, 7, 16, 45, 0, 0, time.UTC)

	in := ports.ArchivedReport{
		ID:        "r-1",
		FileName:  "route-report-2025-03-07.json",
		Body:      []byte(`{"routeInfo":{}}`),
		CreatedAt: created,
	}
	require.NoError(t, repo.Save(ctx, in))

	got, err := repo.Get(ctx, "r-1")
	require.NoError(t, err)

	assert.Equal(t, in.ID, got.ID)
	assert.Equal(t, in.FileName, got.FileName)
	assert.Equal(t, in.Body, got.Body)
	assert.True(t, created.Equal(got.CreatedAt))
}

func TestSqliteReportRepositoryNotFound(t *testing.T) {
	repo := NewSqliteReportRepository(openTestDB(t))

	_, err := repo.Get(context.Background(), "missing")

	assert.True(t, errors.Is(err, ports.ErrReportNotFound))
}

func TestReadGeocodeSeeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seeds.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"address": "  Ithaca   High School ", "formatted_address": "1401 N Cayuga St", "lat": 42.453, "lng": -76.499},
		{"address": "Depot", "lat": 42.48, "lng": -76.45}
	]`), 0o644))

	got, err := ReadGeocodeSeeds(path)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "1401 N Cayuga St", got["ithaca high school"].FormattedAddress)
	assert.Equal(t, "Depot", got["depot"].FormattedAddress)
}

func TestReadGeocodeSeedsRejectsBadRows(t *testing.T) {
	cases := map[string]string{
		"empty address": `[{"address": " ", "lat": 1, "lng": 1}]`,
		"bad latitude":  `[{"address": "x", "lat": 91, "lng": 1}]`,
		"not json":      `{`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "seeds.json")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

			_, err := ReadGeocodeSeeds(path)

			assert.Error(t, err)
		})
	}
}
