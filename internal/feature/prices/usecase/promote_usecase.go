package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/boatjones/quant-lab/internal/feature/prices/domain/entity"
)

// PromoteUsecase merges validated staging into production.
type PromoteUsecase struct {
	staging StagingRepository
}

// NewPromoteUsecase creates a PromoteUsecase.
func NewPromoteUsecase(staging StagingRepository) *PromoteUsecase {
	return &PromoteUsecase{staging: staging}
}

// Promote upserts every staged row into production on (ticker, trade_date), newest values
// winning, and clears staging. Either both happen or neither does.
func (u *PromoteUsecase) Promote(ctx context.Context) (entity.PromoteResult, error) {
	n, err := u.staging.PromoteAll(ctx)
	if err != nil {
		return entity.PromoteResult{}, fmt.Errorf("promote staging: %w", err)
	}
	slog.Info("staging promoted", "rows", n)
	return entity.PromoteResult{Rows: n}, nil
}
