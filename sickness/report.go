package sickness

import (
	"context"
	"log/slog"

	"github.com/warp/sickpay-engine/logging"
	"golang.org/x/sync/errgroup"
)

// DefaultReportBatchSize bounds how many employees are fetched concurrently.
const DefaultReportBatchSize = 20

// ReportRow is one employee's line in the sickness report. Summary is nil
// when the employee's data could not be loaded.
type ReportRow struct {
	Employee Employee
	Summary  *Summary
	Err      error
}

func (r ReportRow) Available() bool { return r.Summary != nil }

// ReportService builds the sickness report for many employees.
type ReportService struct {
	Summaries *SummaryService
	BatchSize int
	Logger    *slog.Logger
}

func NewReportService(summaries *SummaryService, batchSize int, logger *slog.Logger) *ReportService {
	if batchSize <= 0 {
		batchSize = DefaultReportBatchSize
	}
	return &ReportService{Summaries: summaries, BatchSize: batchSize, Logger: logger}
}

// Build computes a row per employee, in input order. Employees are processed
// in batches of BatchSize; each batch runs concurrently and completes before
// the next starts. Unavailable summaries become rows without a Summary.
// Only context cancellation stops the report early.
func (s *ReportService) Build(ctx context.Context, employees []Employee) ([]ReportRow, error) {
	log := logging.FromContext(ctx, s.Logger)
	rows := make([]ReportRow, len(employees))
	size := s.BatchSize
	if size <= 0 {
		size = DefaultReportBatchSize
	}

	for start := 0; start < len(employees); start += size {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := min(start+size, len(employees))
		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				res := s.Summaries.Summary(gctx, employees[i])
				rows[i] = ReportRow{Employee: employees[i], Summary: res.Summary, Err: res.Err}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	unavailable := 0
	for _, r := range rows {
		if !r.Available() {
			unavailable++
		}
	}
	if unavailable > 0 {
		log.WarnContext(ctx, "sickness report built with unavailable employees",
			slog.Int("employees", len(rows)),
			slog.Int("unavailable", unavailable),
		)
	}
	return rows, nil
}
