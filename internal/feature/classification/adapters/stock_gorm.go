package adapters

import (
	"context"

	"gorm.io/gorm"

	"github.com/boatjones/quant-lab/internal/feature/classification/domain/entity"
	"github.com/boatjones/quant-lab/internal/feature/classification/usecase"
	symboladapters "github.com/boatjones/quant-lab/internal/feature/symbols/adapters"
	"github.com/boatjones/quant-lab/internal/platform/db"
)

const incompleteCondition = "(stocks.industry IS NULL OR stocks.industry = '' OR stocks.sector IS NULL OR stocks.sector = '')"

type stockGorm struct {
	db *gorm.DB
}

var _ usecase.StockRepository = (*stockGorm)(nil)

// NewStockRepository は指定されたDB接続でstockGormリポジトリの新しいインスタンスを生成します。
func NewStockRepository(db *gorm.DB) *stockGorm {
	return &stockGorm{db: db}
}

// ListIncomplete は industry または sector が欠けているアクティブな株式のtickerを返します。
func (r *stockGorm) ListIncomplete(ctx context.Context) ([]string, error) {
	var tickers []string
	err := r.db.WithContext(ctx).
		Model(&symboladapters.StockModel{}).
		Joins("JOIN symbols ON symbols.ticker = stocks.ticker").
		Where("symbols.is_active = ?", true).
		Where(incompleteCondition).
		Order("stocks.ticker ASC").
		Pluck("stocks.ticker", &tickers).Error
	if err != nil {
		return nil, db.Classify(err)
	}
	return tickers, nil
}

// UpdateClassification は industry と sector を書き込みます。
func (r *stockGorm) UpdateClassification(ctx context.Context, ticker string, c entity.Classification) error {
	err := r.db.WithContext(ctx).
		Model(&symboladapters.StockModel{}).
		Where("ticker = ?", ticker).
		Updates(map[string]any{"industry": c.Industry, "sector": c.Sector}).Error
	return db.Classify(err)
}

// PurgeIncompleteExcluded は除外キャッシュにある不完全な株式を、価格・銘柄行とともに削除します。
func (r *stockGorm) PurgeIncompleteExcluded(ctx context.Context) (entity.PurgeResult, error) {
	var res entity.PurgeResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tickers []string
		if err := tx.Model(&symboladapters.StockModel{}).
			Joins("JOIN excluded_tickers ON excluded_tickers.ticker = stocks.ticker").
			Where(incompleteCondition).
			Order("stocks.ticker ASC").
			Pluck("stocks.ticker", &tickers).Error; err != nil {
			return err
		}
		if len(tickers) == 0 {
			return nil
		}

		prices := tx.Exec("DELETE FROM ohlcv WHERE ticker IN ?", tickers)
		if prices.Error != nil {
			return prices.Error
		}
		stocks := tx.Where("ticker IN ?", tickers).Delete(&symboladapters.StockModel{})
		if stocks.Error != nil {
			return stocks.Error
		}
		symbols := tx.Where("ticker IN ?", tickers).Delete(&symboladapters.SymbolModel{})
		if symbols.Error != nil {
			return symbols.Error
		}

		res = entity.PurgeResult{
			Tickers: tickers,
			Prices:  prices.RowsAffected,
			Stocks:  stocks.RowsAffected,
			Symbols: symbols.RowsAffected,
		}
		return nil
	})
	if err != nil {
		return entity.PurgeResult{}, db.Classify(err)
	}
	return res, nil
}
