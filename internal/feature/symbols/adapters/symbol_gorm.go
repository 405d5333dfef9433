package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/boatjones/quant-lab/internal/feature/symbols/domain/entity"
	"github.com/boatjones/quant-lab/internal/feature/symbols/usecase"
	"github.com/boatjones/quant-lab/internal/platform/db"
)

const (
	writeBatchSize = 500
	// IN 句1回あたりの上限（PostgreSQLのパラメータ数制限対策）
	inChunkSize = 1000
)

type symbolGorm struct {
	db *gorm.DB
}

var _ usecase.SymbolRepository = (*symbolGorm)(nil)

// NewSymbolRepository は指定されたDB接続でsymbolGormリポジトリの新しいインスタンスを生成します。
func NewSymbolRepository(db *gorm.DB) *symbolGorm {
	return &symbolGorm{db: db}
}

// ListAll はすべての銘柄をticker順に返します。
func (r *symbolGorm) ListAll(ctx context.Context) ([]entity.Symbol, error) {
	return r.find(r.db.WithContext(ctx).Order("ticker ASC"))
}

// ListActive はアクティブな銘柄をticker順に返します。
func (r *symbolGorm) ListActive(ctx context.Context) ([]entity.Symbol, error) {
	return r.find(r.db.WithContext(ctx).Where("is_active = ?", true).Order("ticker ASC"))
}

// ListActiveTickers はアクティブな銘柄のtickerのみを返します。
func (r *symbolGorm) ListActiveTickers(ctx context.Context) ([]string, error) {
	var tickers []string
	if err := r.db.WithContext(ctx).
		Model(&SymbolModel{}).
		Where("is_active = ?", true).
		Order("ticker ASC").
		Pluck("ticker", &tickers).Error; err != nil {
		return nil, db.Classify(err)
	}
	return tickers, nil
}

// FindByTickers は指定されたtickerの銘柄を返します。存在しないtickerは無視されます。
func (r *symbolGorm) FindByTickers(ctx context.Context, tickers []string) ([]entity.Symbol, error) {
	var out []entity.Symbol
	for _, part := range chunk(tickers, inChunkSize) {
		got, err := r.find(r.db.WithContext(ctx).Where("ticker IN ?", part).Order("ticker ASC"))
		if err != nil {
			return nil, err
		}
		out = append(out, got...)
	}
	return out, nil
}

// InsertNew は新規銘柄と新規株式の分類レコードを1トランザクションで書き込みます。
func (r *symbolGorm) InsertNew(ctx context.Context, symbols []entity.Symbol, stocks []entity.Stock) error {
	if len(symbols) == 0 && len(stocks) == 0 {
		return nil
	}
	ms := make([]SymbolModel, 0, len(symbols))
	for _, s := range symbols {
		ms = append(ms, toSymbolModel(s))
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(ms) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				CreateInBatches(&ms, writeBatchSize).Error; err != nil {
				return err
			}
		}
		return upsertStocks(tx, stocks)
	})
	return db.Classify(err)
}

// RefreshCommon は既存銘柄の名称・取引所・分類を更新します。
// 空の値で既存の値を上書きしないよう COALESCE(NULLIF(new, ''), old) を使います。
func (r *symbolGorm) RefreshCommon(ctx context.Context, listings []entity.Listing, stocks []entity.Stock, loadedOn time.Time) (int64, error) {
	var updated int64
	loaded := entity.Day(loadedOn)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, l := range listings {
			res := tx.Model(&SymbolModel{}).
				Where("ticker = ?", l.Ticker).
				Updates(map[string]any{
					"company_name": gorm.Expr("COALESCE(NULLIF(?, ''), company_name)", l.CompanyName),
					"exchange":     gorm.Expr("COALESCE(NULLIF(?, ''), exchange)", l.Exchange),
					"date_loaded":  loaded,
				})
			if res.Error != nil {
				return res.Error
			}
			updated += res.RowsAffected
		}
		return upsertStocks(tx, stocks)
	})
	if err != nil {
		return 0, db.Classify(err)
	}
	return updated, nil
}

// Reactivate は再びユニバースに現れた非アクティブ銘柄を有効化し、end_date をクリアします。
func (r *symbolGorm) Reactivate(ctx context.Context, tickers []string, loadedOn time.Time) (int64, error) {
	return r.updateIn(ctx, tickers, false, map[string]any{
		"is_active":   true,
		"end_date":    nil,
		"date_loaded": entity.Day(loadedOn),
	})
}

// Deactivate はアクティブ銘柄を無効化し、end_date を設定します。
func (r *symbolGorm) Deactivate(ctx context.Context, tickers []string, endDate time.Time) (int64, error) {
	return r.updateIn(ctx, tickers, true, map[string]any{
		"is_active": false,
		"end_date":  entity.Day(endDate),
	})
}

// Stats はレポート用の銘柄数を集計します。
func (r *symbolGorm) Stats(ctx context.Context) (entity.SymbolStats, error) {
	var st entity.SymbolStats
	counts := []struct {
		dst   *int64
		where string
		args  []any
	}{
		{&st.Total, "1 = 1", nil},
		{&st.Active, "is_active = ?", []any{true}},
		{&st.Inactive, "is_active = ?", []any{false}},
		{&st.Stocks, "asset_type = ?", []any{string(entity.AssetStock)}},
		{&st.ETFs, "asset_type = ?", []any{string(entity.AssetETF)}},
	}
	for _, c := range counts {
		if err := r.db.WithContext(ctx).Model(&SymbolModel{}).Where(c.where, c.args...).Count(c.dst).Error; err != nil {
			return st, db.Classify(err)
		}
	}
	return st, nil
}

func (r *symbolGorm) find(q *gorm.DB) ([]entity.Symbol, error) {
	var rows []SymbolModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, db.Classify(err)
	}
	out := make([]entity.Symbol, 0, len(rows))
	for _, m := range rows {
		out = append(out, toSymbolEntity(m))
	}
	return out, nil
}

func (r *symbolGorm) updateIn(ctx context.Context, tickers []string, active bool, values map[string]any) (int64, error) {
	var n int64
	for _, part := range chunk(tickers, inChunkSize) {
		res := r.db.WithContext(ctx).Model(&SymbolModel{}).
			Where("ticker IN ? AND is_active = ?", part, active).
			Updates(values)
		if res.Error != nil {
			return n, db.Classify(res.Error)
		}
		n += res.RowsAffected
	}
	return n, nil
}

func upsertStocks(tx *gorm.DB, stocks []entity.Stock) error {
	if len(stocks) == 0 {
		return nil
	}
	ms := make([]StockModel, 0, len(stocks))
	for _, s := range stocks {
		ms = append(ms, toStockModel(s))
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "ticker"}},
		DoUpdates: clause.Assignments(map[string]any{
			"company_name": gorm.Expr("COALESCE(NULLIF(excluded.company_name, ''), stocks.company_name)"),
			"exchange":     gorm.Expr("COALESCE(NULLIF(excluded.exchange, ''), stocks.exchange)"),
			"industry":     gorm.Expr("COALESCE(NULLIF(excluded.industry, ''), stocks.industry)"),
			"sector":       gorm.Expr("COALESCE(NULLIF(excluded.sector, ''), stocks.sector)"),
		}),
	}).CreateInBatches(&ms, writeBatchSize).Error
}

func chunk(s []string, n int) [][]string {
	var out [][]string
	for len(s) > n {
		out = append(out, s[:n])
		s = s[n:]
	}
	if len(s) > 0 {
		out = append(out, s)
	}
	return out
}
