package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/boatjones/quant-lab/internal/feature/prices/domain/entity"
	"github.com/boatjones/quant-lab/internal/feature/prices/usecase"
	symbolusecase "github.com/boatjones/quant-lab/internal/feature/symbols/usecase"
	"github.com/boatjones/quant-lab/internal/platform/db"
)

const inChunkSize = 1000

type priceGorm struct {
	db *gorm.DB
}

var (
	_ usecase.PriceRepository     = (*priceGorm)(nil)
	_ usecase.PriceReader         = (*priceGorm)(nil)
	_ symbolusecase.PriceActivity = (*priceGorm)(nil)
)

// NewPriceRepository は指定されたDB接続でpriceGormリポジトリの新しいインスタンスを生成します。
func NewPriceRepository(db *gorm.DB) *priceGorm {
	return &priceGorm{db: db}
}

// MaxTradeDate は本番の最新日付を返します。行がなければ false を返します。
func (r *priceGorm) MaxTradeDate(ctx context.Context) (time.Time, bool, error) {
	d, err := r.edgeDate(ctx, "trade_date DESC")
	if err != nil || d == nil {
		return time.Time{}, false, err
	}
	return *d, true, nil
}

// FindByTicker は ticker の足を新しい順に最大 limit 件返します。
func (r *priceGorm) FindByTicker(ctx context.Context, ticker string, limit int) ([]entity.PriceBar, error) {
	var ms []BarModel
	err := r.db.WithContext(ctx).
		Where("ticker = ?", ticker).
		Order("trade_date DESC").
		Limit(limit).
		Find(&ms).Error
	if err != nil {
		return nil, db.Classify(err)
	}
	bars := make([]entity.PriceBar, 0, len(ms))
	for _, m := range ms {
		bars = append(bars, toBarEntity(m))
	}
	return bars, nil
}

// TickersWithBarsSince は since 以降に足を持つ ticker の集合を返します。
func (r *priceGorm) TickersWithBarsSince(ctx context.Context, tickers []string, since time.Time) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	for start := 0; start < len(tickers); start += inChunkSize {
		part := tickers[start:min(start+inChunkSize, len(tickers))]
		var found []string
		err := r.db.WithContext(ctx).
			Model(&BarModel{}).
			Where("ticker IN ? AND trade_date >= ?", part, entity.Day(since)).
			Distinct("ticker").
			Pluck("ticker", &found).Error
		if err != nil {
			return nil, db.Classify(err)
		}
		for _, t := range found {
			out[t] = struct{}{}
		}
	}
	return out, nil
}

// LastTradeDates は各 ticker の最新取引日を返します。足のない ticker は含みません。
func (r *priceGorm) LastTradeDates(ctx context.Context, tickers []string) (map[string]time.Time, error) {
	out := make(map[string]time.Time)
	for start := 0; start < len(tickers); start += inChunkSize {
		part := tickers[start:min(start+inChunkSize, len(tickers))]
		var ms []BarModel
		// MAX() は sqlite で文字列になるため、行そのものを取得する
		err := r.db.WithContext(ctx).
			Select("ticker", "trade_date").
			Where("ticker IN ? AND trade_date = (SELECT MAX(b.trade_date) FROM ohlcv b WHERE b.ticker = ohlcv.ticker)", part).
			Find(&ms).Error
		if err != nil {
			return nil, db.Classify(err)
		}
		for _, m := range ms {
			out[m.Ticker] = entity.Day(m.TradeDate)
		}
	}
	return out, nil
}

// Stats は件数、ticker数、期間、および since 以降の日別ticker数を返します。
func (r *priceGorm) Stats(ctx context.Context, since time.Time) (entity.PriceStats, error) {
	var st entity.PriceStats
	if err := r.db.WithContext(ctx).Model(&BarModel{}).Count(&st.Records).Error; err != nil {
		return st, db.Classify(err)
	}
	if err := r.db.WithContext(ctx).Model(&BarModel{}).Distinct("ticker").Count(&st.Tickers).Error; err != nil {
		return st, db.Classify(err)
	}

	var err error
	if st.MinDate, err = r.edgeDate(ctx, "trade_date ASC"); err != nil {
		return st, err
	}
	if st.MaxDate, err = r.edgeDate(ctx, "trade_date DESC"); err != nil {
		return st, err
	}

	var rows []struct {
		TradeDate time.Time
		Tickers   int64
	}
	err = r.db.WithContext(ctx).
		Model(&BarModel{}).
		Select("trade_date, COUNT(*) AS tickers").
		Where("trade_date >= ?", entity.Day(since)).
		Group("trade_date").
		Order("trade_date DESC").
		Scan(&rows).Error
	if err != nil {
		return st, db.Classify(err)
	}
	for _, row := range rows {
		st.Recent = append(st.Recent, entity.DailyCount{Date: entity.Day(row.TradeDate), Tickers: row.Tickers})
	}
	return st, nil
}

func (r *priceGorm) edgeDate(ctx context.Context, order string) (*time.Time, error) {
	var m BarModel
	err := r.db.WithContext(ctx).Order(order).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, db.Classify(err)
	}
	d := entity.Day(m.TradeDate)
	return &d, nil
}
