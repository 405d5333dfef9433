package usecase

import (
	"context"
	"fmt"

	"github.com/boatjones/quant-lab/internal/feature/classification/domain/entity"
	symbolentity "github.com/boatjones/quant-lab/internal/feature/symbols/domain/entity"
)

// ExclusionUsecase manages the excluded-ticker cache by hand.
type ExclusionUsecase struct {
	repo ExcludedRepository
}

// NewExclusionUsecase creates an ExclusionUsecase.
func NewExclusionUsecase(repo ExcludedRepository) *ExclusionUsecase {
	return &ExclusionUsecase{repo: repo}
}

// Reenable removes tickers from the cache so the next run considers them again.
func (u *ExclusionUsecase) Reenable(ctx context.Context, tickers []string) (int64, error) {
	norm := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if t = symbolentity.NormalizeTicker(t); t != "" {
			norm = append(norm, t)
		}
	}
	if len(norm) == 0 {
		return 0, nil
	}
	n, err := u.repo.Remove(ctx, norm)
	if err != nil {
		return 0, fmt.Errorf("re-enable tickers: %w", err)
	}
	return n, nil
}

// List returns the cache content ordered by ticker.
func (u *ExclusionUsecase) List(ctx context.Context) ([]entity.ExcludedTicker, error) {
	return u.repo.List(ctx)
}
