package ports

import (
	"context"
	"errors"
	"time"
)

// ErrReportNotFound is returned when no archived report has the requested id.
var ErrReportNotFound = errors.New("report not found")

// ArchivedReport is an exported report document as stored.
type ArchivedReport struct {
	ID        string
	FileName  string
	Body      []byte
	CreatedAt time.Time
}

// Port: archive for exported route reports.
type ReportStore interface {
	Save(ctx context.Context, r ArchivedReport) error
	Get(ctx context.Context, id string) (ArchivedReport, error)
}
