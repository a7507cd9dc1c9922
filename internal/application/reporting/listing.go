// Package reporting serves the paged history of computed reports.
package reporting

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/errgroup"

	"github.com/BillWilson/pat-checker/internal/config"
	"github.com/BillWilson/pat-checker/internal/domain/report"
	"github.com/BillWilson/pat-checker/internal/infrastructure/monitoring/logging"
	"github.com/BillWilson/pat-checker/pkg/types/common"
)

// ListOutput is one page of flattened reports, newest first.
type ListOutput struct {
	Items   []json.RawMessage
	Reports []*report.Report
	common.Pagination
}

// Service lists stored reports.
type Service interface {
	List(ctx context.Context, page int) (*ListOutput, error)
}

// ListingService implements Service over the report repository.
type ListingService struct {
	reports  report.Repository
	pageSize int
	logger   logging.Logger
}

var _ Service = (*ListingService)(nil)

// NewListingService returns a ListingService paging by cfg.PageSize.
func NewListingService(reports report.Repository, cfg config.AnalysisConfig, log logging.Logger) *ListingService {
	size := cfg.PageSize
	if size <= 0 {
		size = config.DefaultPageSize
	}
	return &ListingService{reports: reports, pageSize: size, logger: log.Named("listing")}
}

// PageSize is the fixed number of reports per page.
func (s *ListingService) PageSize() int { return s.pageSize }

// List returns page (1-based; smaller values mean 1).  A page past the end
// is empty, not an error.
func (s *ListingService) List(ctx context.Context, page int) (*ListOutput, error) {
	p := common.NewPagination(page, s.pageSize)

	var (
		rows  []*report.Report
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.reports.List(gctx, p.PageSize, p.Offset())
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.reports.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	p.Total = total

	items := make([]json.RawMessage, 0, len(rows))
	for _, r := range rows {
		b, err := s.encode(ctx, r)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}

	if rows == nil {
		rows = []*report.Report{}
	}
	return &ListOutput{Items: items, Reports: rows, Pagination: p}, nil
}

// encode renders r through the typed Analysis.  Rows whose payload does not
// validate were stored before results were canonicalized; they are served
// flattened as stored.
func (s *ListingService) encode(ctx context.Context, r *report.Report) (json.RawMessage, error) {
	b, err := r.MarshalAnalysis()
	if err == nil {
		return b, nil
	}
	log := s.logger.WithContext(ctx).With(logging.Int64("report_id", r.ID))
	log.Warn("Stored report is not a valid analysis, serving it flattened", logging.Err(err))

	b, err = r.MarshalFlat()
	if err != nil {
		log.Error("Stored report could not be flattened", logging.Err(err))
		return nil, err
	}
	return b, nil
}
