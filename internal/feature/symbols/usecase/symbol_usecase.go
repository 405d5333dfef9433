package usecase

import (
	"context"

	"github.com/boatjones/quant-lab/internal/feature/symbols/domain/entity"
)

// SymbolUsecase provides read access to symbols.
type SymbolUsecase struct {
	repo SymbolRepository
}

// NewSymbolUsecase creates a new SymbolUsecase with the given repository.
func NewSymbolUsecase(r SymbolRepository) *SymbolUsecase {
	return &SymbolUsecase{repo: r}
}

// ListActiveSymbols returns all active symbols ordered by ticker.
func (u *SymbolUsecase) ListActiveSymbols(ctx context.Context) ([]entity.Symbol, error) {
	return u.repo.ListActive(ctx)
}

// ListActiveTickers returns the tickers price ingestion should cover.
func (u *SymbolUsecase) ListActiveTickers(ctx context.Context) ([]string, error) {
	return u.repo.ListActiveTickers(ctx)
}

// Stats returns the symbol counts used in the run report.
func (u *SymbolUsecase) Stats(ctx context.Context) (entity.SymbolStats, error) {
	return u.repo.Stats(ctx)
}
