// Package adapters はclassificationフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/boatjones/quant-lab/internal/feature/classification/domain/entity"
	"github.com/boatjones/quant-lab/internal/feature/classification/usecase"
	"github.com/boatjones/quant-lab/internal/platform/db"
)

// ExcludedTickerModel は excluded_tickers テーブルの行です。
type ExcludedTickerModel struct {
	Ticker    string    `gorm:"primaryKey;size:16"`
	Reason    string    `gorm:"size:64;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (ExcludedTickerModel) TableName() string {
	return "excluded_tickers"
}

type excludedGorm struct {
	db *gorm.DB
}

var _ usecase.ExcludedRepository = (*excludedGorm)(nil)

// NewExcludedRepository は指定されたDB接続でexcludedGormリポジトリの新しいインスタンスを生成します。
func NewExcludedRepository(db *gorm.DB) *excludedGorm {
	return &excludedGorm{db: db}
}

// ListExcluded は ticker → reason のマップを返します。
func (r *excludedGorm) ListExcluded(ctx context.Context) (map[string]string, error) {
	rows, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, e := range rows {
		out[e.Ticker] = e.Reason
	}
	return out, nil
}

// Exclude は除外キャッシュに登録します。既に登録済みの場合は最初の理由を保持します。
func (r *excludedGorm) Exclude(ctx context.Context, ticker, reason string) error {
	m := ExcludedTickerModel{Ticker: ticker, Reason: reason, CreatedAt: time.Now().UTC()}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "ticker"}}, DoNothing: true}).
		Create(&m).Error
	return db.Classify(err)
}

// Remove は指定されたtickerを除外キャッシュから削除します。
func (r *excludedGorm) Remove(ctx context.Context, tickers []string) (int64, error) {
	if len(tickers) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("ticker IN ?", tickers).Delete(&ExcludedTickerModel{})
	if res.Error != nil {
		return 0, db.Classify(res.Error)
	}
	return res.RowsAffected, nil
}

// List は除外キャッシュの内容をticker順に返します。
func (r *excludedGorm) List(ctx context.Context) ([]entity.ExcludedTicker, error) {
	var rows []ExcludedTickerModel
	if err := r.db.WithContext(ctx).Order("ticker ASC").Find(&rows).Error; err != nil {
		return nil, db.Classify(err)
	}
	out := make([]entity.ExcludedTicker, 0, len(rows))
	for _, m := range rows {
		out = append(out, entity.ExcludedTicker{Ticker: m.Ticker, Reason: m.Reason, CreatedAt: m.CreatedAt})
	}
	return out, nil
}
