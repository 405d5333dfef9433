package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/boatjones/quant-lab/internal/feature/prices/domain/entity"
)

// ErrAnomalyThreshold blocks promotion when staging holds too many anomalous rows.
var ErrAnomalyThreshold = errors.New("staging anomalies exceed threshold")

// ValidateConfig tunes staging validation.
type ValidateConfig struct {
	AnomalyThreshold int64
}

// ValidateUsecase checks staging for duplicates and anomalies.
type ValidateUsecase struct {
	staging StagingRepository
	cfg     ValidateConfig
}

// NewValidateUsecase creates a ValidateUsecase.
func NewValidateUsecase(staging StagingRepository, cfg ValidateConfig) *ValidateUsecase {
	return &ValidateUsecase{staging: staging, cfg: cfg}
}

// Validate counts duplicates and anomalies. Above the anomaly threshold it returns a blocking
// report together with ErrAnomalyThreshold and leaves staging untouched. Otherwise duplicates
// are removed, keeping the earliest inserted row.
func (u *ValidateUsecase) Validate(ctx context.Context) (entity.ValidationReport, error) {
	rep := entity.ValidationReport{Threshold: u.cfg.AnomalyThreshold}

	var err error
	if rep.Rows, err = u.staging.Count(ctx); err != nil {
		return rep, fmt.Errorf("count staging: %w", err)
	}
	if rep.DuplicateGroups, err = u.staging.CountDuplicateGroups(ctx); err != nil {
		return rep, fmt.Errorf("count duplicates: %w", err)
	}
	if rep.Anomalies, err = u.staging.CountAnomalies(ctx); err != nil {
		return rep, fmt.Errorf("count anomalies: %w", err)
	}

	if rep.Anomalies.Total > u.cfg.AnomalyThreshold {
		rep.Blocking = true
		rep.Issues = append(rep.Issues, entity.Issue{
			Kind:     entity.IssueAnomalies,
			Severity: entity.SeverityBlocking,
			Count:    rep.Anomalies.Total,
			Message:  fmt.Sprintf("%d anomalous rows exceed threshold %d", rep.Anomalies.Total, u.cfg.AnomalyThreshold),
		})
		if rep.DuplicateGroups > 0 {
			rep.Issues = append(rep.Issues, duplicateIssue(rep.DuplicateGroups))
		}
		slog.Error("staging validation blocked promotion", "anomalies", rep.Anomalies.Total, "threshold", u.cfg.AnomalyThreshold)
		return rep, fmt.Errorf("%w: %d > %d", ErrAnomalyThreshold, rep.Anomalies.Total, u.cfg.AnomalyThreshold)
	}

	if rep.Anomalies.Total > 0 {
		rep.Issues = append(rep.Issues, entity.Issue{
			Kind:     entity.IssueAnomalies,
			Severity: entity.SeverityWarning,
			Count:    rep.Anomalies.Total,
			Message:  fmt.Sprintf("%d anomalous rows within threshold %d", rep.Anomalies.Total, u.cfg.AnomalyThreshold),
		})
	}
	if rep.DuplicateGroups > 0 {
		rep.Issues = append(rep.Issues, duplicateIssue(rep.DuplicateGroups))
		if rep.DuplicatesRemoved, err = u.staging.Deduplicate(ctx); err != nil {
			return rep, fmt.Errorf("deduplicate staging: %w", err)
		}
	}

	slog.Info("staging validated", "rows", rep.Rows, "duplicate_groups", rep.DuplicateGroups,
		"duplicates_removed", rep.DuplicatesRemoved, "anomalies", rep.Anomalies.Total)
	return rep, nil
}

func duplicateIssue(groups int64) entity.Issue {
	return entity.Issue{
		Kind:     entity.IssueDuplicates,
		Severity: entity.SeverityWarning,
		Count:    groups,
		Message:  fmt.Sprintf("%d (ticker, date) pairs staged more than once; keeping the first", groups),
	}
}
