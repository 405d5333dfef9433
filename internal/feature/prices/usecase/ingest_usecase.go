package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/boatjones/quant-lab/internal/feature/prices/domain/entity"
	"github.com/boatjones/quant-lab/internal/shared/sourceerr"
)

// IngestConfig tunes price ingestion.
type IngestConfig struct {
	BatchSize    int
	FallbackDays int
}

// IngestUsecase fetches daily bars for active tickers into staging.
type IngestUsecase struct {
	source  PriceSource
	staging StagingRepository
	prices  PriceRepository
	cfg     IngestConfig
}

// NewIngestUsecase creates an IngestUsecase. A non-positive batch size falls back to 100.
func NewIngestUsecase(source PriceSource, staging StagingRepository, prices PriceRepository, cfg IngestConfig) *IngestUsecase {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &IngestUsecase{source: source, staging: staging, prices: prices, cfg: cfg}
}

// ResolveRange returns the range to fetch. backfillDays > 0 forces a fixed window ending yesterday.
func (u *IngestUsecase) ResolveRange(ctx context.Context, today time.Time, backfillDays int) (entity.DateRange, error) {
	if backfillDays > 0 {
		return entity.BackfillRange(today, backfillDays), nil
	}
	maxDate, ok, err := u.prices.MaxTradeDate(ctx)
	if err != nil {
		return entity.DateRange{}, fmt.Errorf("read latest trade date: %w", err)
	}
	return entity.IncrementalRange(maxDate, ok, today, u.cfg.FallbackDays), nil
}

// Ingest resets staging, then fetches r for every ticker in batches and bulk-writes each batch.
// Provider failures are recorded per ticker; storage failures abort the run.
func (u *IngestUsecase) Ingest(ctx context.Context, tickers []string, r entity.DateRange) (entity.IngestResult, error) {
	res := entity.IngestResult{Range: r, Tickers: len(tickers)}

	if err := u.staging.Reset(ctx); err != nil {
		return res, fmt.Errorf("reset staging: %w", err)
	}
	if r.Empty() {
		slog.Info("prices already up to date", "range", r.String())
		res.NoOp = true
		return res, nil
	}

	slog.Info("ingesting prices", "source", u.source.Name(), "range", r.String(), "tickers", len(tickers))
	for start := 0; start < len(tickers); start += u.cfg.BatchSize {
		end := min(start+u.cfg.BatchSize, len(tickers))
		var bars []entity.PriceBar

		for _, t := range tickers[start:end] {
			raws, err := u.source.GetDailyPrices(ctx, t, r)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return res, ctxErr
				}
				if sourceerr.IsNotFound(err) {
					res.NoData = append(res.NoData, t)
					continue
				}
				slog.Warn("price fetch failed", "ticker", t, "error", err)
				res.Failed = append(res.Failed, t)
				continue
			}
			if len(raws) == 0 {
				res.NoData = append(res.NoData, t)
				continue
			}
			for _, raw := range raws {
				bar, err := entity.Normalize(t, raw)
				if err != nil {
					slog.Debug("dropping price record", "ticker", t, "error", err)
					res.Dropped++
					continue
				}
				bars = append(bars, bar)
			}
		}

		if len(bars) > 0 {
			if err := u.staging.InsertBatch(ctx, bars); err != nil {
				return res, fmt.Errorf("write staging batch: %w", err)
			}
		}
		res.Batches++
		res.Rows += len(bars)
		slog.Info("staging batch written", "batch", res.Batches, "tickers", end, "of", len(tickers), "rows", len(bars))
	}

	return res, nil
}
