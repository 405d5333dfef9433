// Package usecase implements price ingestion, staging validation, promotion and price queries.
package usecase

import (
	"context"
	"time"

	"github.com/boatjones/quant-lab/internal/feature/prices/domain/entity"
)

// PriceSource returns daily bars for one ticker over an inclusive range.
// A sourceerr.ErrNotFound error means the provider has no data for the ticker.
type PriceSource interface {
	Name() string
	GetDailyPrices(ctx context.Context, ticker string, r entity.DateRange) ([]entity.RawBar, error)
}

// StagingRepository abstracts the ohlcv_staging table.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type StagingRepository interface {
	Reset(ctx context.Context) error
	InsertBatch(ctx context.Context, bars []entity.PriceBar) error
	Count(ctx context.Context) (int64, error)
	CountDuplicateGroups(ctx context.Context) (int64, error)
	CountAnomalies(ctx context.Context) (entity.AnomalyCounts, error)
	// Deduplicate keeps the earliest inserted row per (ticker, trade_date).
	Deduplicate(ctx context.Context) (int64, error)
	// PromoteAll upserts staging into production and clears staging in one transaction.
	PromoteAll(ctx context.Context) (int64, error)
}

// PriceRepository abstracts the production ohlcv table.
type PriceRepository interface {
	MaxTradeDate(ctx context.Context) (time.Time, bool, error)
	Stats(ctx context.Context, recentSince time.Time) (entity.PriceStats, error)
}

// PriceReader serves bars for the read API. The cached decorator implements it too.
type PriceReader interface {
	FindByTicker(ctx context.Context, ticker string, limit int) ([]entity.PriceBar, error)
}
