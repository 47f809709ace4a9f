package reportstore

import (
	"context"
	"eco-route-service/internal/platform/obs"
	"eco-route-service/internal/ports"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long archived reports stay in Redis.
const DefaultTTL = 7 * 24 * time.Hour

// RedisStore implements ports.ReportStore with one hash per report.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore connects using a redis:// URL.
func NewRedisStore(url string, ttl time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis report store: parse url: %w", err)
	}
	return NewRedisStoreFromClient(redis.NewClient(opt), ttl), nil
}

func NewRedisStoreFromClient(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Save(ctx context.Context, r ports.ArchivedReport) (err error) {
	defer obs.Time(ctx, "reports.redis.Save")(&err)

	key := s.key(r.ID)
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key,
			"file_name", r.FileName,
			"body", r.Body,
			"created_at", r.CreatedAt.UTC().Format(time.RFC3339Nano),
		)
		p.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save report id=%s: %w", r.ID, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (_ ports.ArchivedReport, err error) {
	defer obs.Time(ctx, "reports.redis.Get")(&err)

	fields, err := s.rdb.HGetAll(ctx, s.key(id)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return ports.ArchivedReport{}, fmt.Errorf("get report id=%s: %w", id, err)
	}
	if len(fields) == 0 {
		return ports.ArchivedReport{}, fmt.Errorf("get report id=%s: %w", id, ports.ErrReportNotFound)
	}

	created, err := time.Parse(time.RFC3339Nano, fields["created_at"])
	if err != nil {
		return ports.ArchivedReport{}, fmt.Errorf("get report id=%s: parse created_at: %w", id, err)
	}

	return ports.ArchivedReport{
		ID:        id,
		FileName:  fields["file_name"],
		Body:      []byte(fields["body"]),
		CreatedAt: created,
	}, nil
}

func (s *RedisStore) Close() error { return s.rdb.Close() }

func (s *RedisStore) key(id string) string { return "report:" + id }
