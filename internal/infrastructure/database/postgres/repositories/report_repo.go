package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BillWilson/pat-checker/internal/domain/report"
	"github.com/BillWilson/pat-checker/internal/infrastructure/monitoring/logging"
	appErrors "github.com/BillWilson/pat-checker/pkg/errors"
)

// ReportRepository is the PostgreSQL implementation of report.Repository.
type ReportRepository struct {
	db     querier
	logger logging.Logger
}

var _ report.Repository = (*ReportRepository)(nil)

// NewReportRepository constructs a ready-to-use ReportRepository.
func NewReportRepository(pool *pgxpool.Pool, logger logging.Logger) *ReportRepository {
	return &ReportRepository{db: pool, logger: logger}
}

// Create inserts rep and fills its ID and timestamps.
func (r *ReportRepository) Create(ctx context.Context, rep *report.Report) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO reports (patent_id, company_name, result)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		rep.PatentID, rep.CompanyName, []byte(rep.Result),
	).Scan(&rep.ID, &rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		r.logger.Error("ReportRepository.Create", logging.Err(err),
			logging.String(logging.FieldPatentID, rep.PatentID))
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to insert report")
	}
	return nil
}

// List returns one page of reports, newest first.
func (r *ReportRepository) List(ctx context.Context, limit, offset int) ([]*report.Report, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, patent_id, company_name, result, created_at, updated_at
		FROM reports
		ORDER BY id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		r.logger.Error("ReportRepository.List", logging.Err(err))
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to list reports")
	}
	defer rows.Close()

	reports := []*report.Report{}
	for rows.Next() {
		var rep report.Report
		var result []byte
		if err := rows.Scan(&rep.ID, &rep.PatentID, &rep.CompanyName, &result, &rep.CreatedAt, &rep.UpdatedAt); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan report row")
		}
		rep.Result = result
		reports = append(reports, &rep)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "row iteration error")
	}
	return reports, nil
}

// Count returns the number of stored reports.
func (r *ReportRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM reports`).Scan(&n); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to count reports")
	}
	return n, nil
}
