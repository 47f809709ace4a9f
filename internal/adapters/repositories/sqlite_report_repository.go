package repositories

import (
	"context"
	"database/sql"
	"eco-route-service/internal/platform/obs"
	"eco-route-service/internal/ports"
	"errors"
	"fmt"
)

// SQLite-backed implementation of the ReportStore port.
type SqliteReportRepository struct{ DB *sql.DB }

func NewSqliteReportRepository(db *sql.DB) *SqliteReportRepository {
	return &SqliteReportRepository{DB: db}
}

func (s *SqliteReportRepository) Save(ctx context.Context, r ports.ArchivedReport) (err error) {
	defer obs.Time(ctx, "reports.sqlite.Save")(&err)

	if s.DB == nil {
		return errors.New("sqlite report repository: DB is nil")
	}

	query := `
	INSERT OR REPLACE INTO reports (
		id,
		file_name,
		body,
		created_at
	)
	VALUES (?, ?, ?, ?);
	`
	if _, err := s.DB.ExecContext(ctx, query, r.ID, r.FileName, r.Body, r.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("save report id=%s: %w", r.ID, err)
	}
	return nil
}

func (s *SqliteReportRepository) Get(ctx context.Context, id string) (_ ports.ArchivedReport, err error) {
	defer obs.Time(ctx, "reports.sqlite.Get")(&err)

	if s.DB == nil {
		return ports.ArchivedReport{}, errors.New("sqlite report repository: DB is nil")
	}

	query := `
	SELECT
		id,
		file_name,
		body,
		created_at
	FROM reports
	WHERE id = ?;
	`
	return scanReport(s.DB.QueryRowContext(ctx, query, id), id)
}

func scanReport(row *sql.Row, id string) (ports.ArchivedReport, error) {
	var r ports.ArchivedReport
	err := row.Scan(&r.ID, &r.FileName, &r.Body, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.ArchivedReport{}, fmt.Errorf("get report id=%s: %w", id, ports.ErrReportNotFound)
	}
	if err != nil {
		return ports.ArchivedReport{}, fmt.Errorf("get report id=%s: scan row: %w", id, err)
	}
	return r, nil
}
