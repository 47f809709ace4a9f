package reportstore

import (
	"context"
	"eco-route-service/internal/ports"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() ports.ArchivedReport {
	return ports.ArchivedReport{
		ID:        "0b6c1a4e",
		FileName:  "route-report-2025-03-07.json",
		Body:      []byte("{\n  \"routeInfo\": {}\n}"),
		CreatedAt: time.Date(2025, 3, 7, 16, 45, 0, 0, time.UTC),
	}
}

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s := NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), ttl)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestStores(t *testing.T) {
	redisStore, _ := newRedisStore(t, 0)
	stores := map[string]ports.ReportStore{
		"memory": NewMemoryStore(),
		"redis":  redisStore,
	}

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			in := sampleReport()

			require.NoError(t, s.Save(ctx, in))

			got, err := s.Get(ctx, in.ID)
			require.NoError(t, err)
			assert.Equal(t, in, got)

			_, err = s.Get(ctx, "missing")
			assert.True(t, errors.Is(err, ports.ErrReportNotFound))
		})
	}
}

func TestRedisStoreExpires(t *testing.T) {
	s, mr := newRedisStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleReport()))
	assert.Equal(t, time.Hour, mr.TTL("report:0b6c1a4e"))

	mr.FastForward(2 * time.Hour)

	_, err := s.Get(ctx, sampleReport().ID)
	assert.True(t, errors.Is(err, ports.ErrReportNotFound))
}

func TestMemoryStoreCopiesBody(t *testing.T) {
	s := NewMemoryStore()
	in := sampleReport()
	require.NoError(t, s.Save(context.Background(), in))

	in.Body[0] = 'X'

	got, err := s.Get(context.Background(), in.ID)
	require.NoError(t, err)
	assert.Equal(t, byte('{'), got.Body[0])
}

func TestNewRedisStoreRejectsBadURL(t *testing.T) {
	_, err := NewRedisStore("not a url", 0)
	assert.Error(t, err)
}
