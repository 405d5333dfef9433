package usecase

import (
	"context"

	"github.com/boatjones/quant-lab/internal/feature/maintenance/domain/entity"
)

// ReportUsecase serves persisted run reports.
type ReportUsecase struct {
	runs RunStore
}

// NewReportUsecase creates a ReportUsecase.
func NewReportUsecase(runs RunStore) *ReportUsecase {
	return &ReportUsecase{runs: runs}
}

// LatestReport returns the report of the most recent run, or ErrNoRuns.
func (u *ReportUsecase) LatestReport(ctx context.Context) (entity.Report, error) {
	rec, err := u.runs.Latest(ctx)
	if err != nil {
		return entity.Report{}, err
	}
	return rec.Report, nil
}
