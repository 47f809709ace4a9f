package repositories

import (
	"context"
	"database/sql"
	"eco-route-service/internal/platform/obs"
	"eco-route-service/internal/ports"
	"errors"
	"fmt"
)

// Postgres-backed implementation of the ReportStore port.
type SQLReportRepository struct{ DB *sql.DB }

func NewSQLReportRepository(db *sql.DB) *SQLReportRepository {
	return &SQLReportRepository{DB: db}
}

func (s *SQLReportRepository) Save(ctx context.Context, r ports.ArchivedReport) (err error) {
	defer obs.Time(ctx, "reports.sql.Save")(&err)

	if s.DB == nil {
		return errors.New("sql report repository: DB is nil")
	}

	query := `
	INSERT INTO reports (id, file_name, body, created_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (id) DO UPDATE
	SET file_name = EXCLUDED.file_name,
		body = EXCLUDED.body,
		created_at = EXCLUDED.created_at;
	`
	if _, err := s.DB.ExecContext(ctx, query, r.ID, r.FileName, r.Body, r.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("save report id=%s: %w", r.ID, err)
	}
	return nil
}

func (s *SQLReportRepository) Get(ctx context.Context, id string) (_ ports.ArchivedReport, err error) {
	defer obs.Time(ctx, "reports.sql.Get")(&err)

	if s.DB == nil {
		return ports.ArchivedReport{}, errors.New("sql report repository: DB is nil")
	}

	query := `
	SELECT id, file_name, body, created_at
	FROM reports
	WHERE id = $1;
	`
	return scanReport(s.DB.QueryRowContext(ctx, query, id), id)
}
