package usecase

import (
	"context"
	"time"

	"github.com/boatjones/quant-lab/internal/feature/prices/domain/entity"
)

const (
	defaultLimit = 30
	maxLimit     = 5000
)

// PriceUsecase serves production prices to the read API and reports.
type PriceUsecase struct {
	reader PriceReader
	prices PriceRepository
}

// NewPriceUsecase creates a PriceUsecase. reader may be a cached decorator over the repository.
func NewPriceUsecase(reader PriceReader, prices PriceRepository) *PriceUsecase {
	return &PriceUsecase{reader: reader, prices: prices}
}

// GetPrices returns the latest bars for ticker, newest first. limit is clamped to [1, 5000]
// and defaults to 30.
func (u *PriceUsecase) GetPrices(ctx context.Context, ticker string, limit int) ([]entity.PriceBar, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)
	return u.reader.FindByTicker(ctx, ticker, limit)
}

// Stats summarizes production with per-day ticker counts for the last recentDays days.
func (u *PriceUsecase) Stats(ctx context.Context, today time.Time, recentDays int) (entity.PriceStats, error) {
	since := entity.Day(today).AddDate(0, 0, -recentDays)
	return u.prices.Stats(ctx, since)
}
