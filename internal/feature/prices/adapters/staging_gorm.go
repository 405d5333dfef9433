package adapters

import (
	"context"

	"gorm.io/gorm"

	"github.com/boatjones/quant-lab/internal/feature/prices/domain/entity"
	"github.com/boatjones/quant-lab/internal/feature/prices/usecase"
	"github.com/boatjones/quant-lab/internal/platform/db"
)

const writeBatchSize = 1000

const barColumns = "ticker, trade_date, price_open, price_high, price_low, price_close, close_unadj, volume, dividend, split"

// 同一 (ticker, trade_date) が残っていても最小 id の行だけを昇格させます。
const promoteSQL = `INSERT INTO ohlcv (` + barColumns + `)
SELECT ` + barColumns + ` FROM ohlcv_staging
WHERE id IN (SELECT MIN(id) FROM ohlcv_staging GROUP BY ticker, trade_date)
ON CONFLICT (ticker, trade_date) DO UPDATE SET
	price_open = excluded.price_open,
	price_high = excluded.price_high,
	price_low = excluded.price_low,
	price_close = excluded.price_close,
	close_unadj = excluded.close_unadj,
	volume = excluded.volume,
	dividend = excluded.dividend,
	split = excluded.split`

const dedupSQL = `DELETE FROM ohlcv_staging
WHERE id NOT IN (SELECT MIN(id) FROM ohlcv_staging GROUP BY ticker, trade_date)`

const duplicateGroupsSQL = `SELECT COUNT(*) FROM (
	SELECT ticker, trade_date FROM ohlcv_staging GROUP BY ticker, trade_date HAVING COUNT(*) > 1
) d`

// anomaly rules
const (
	condNonPositiveClose    = "price_close <= 0"
	condHighBelowLow        = "price_high < price_low"
	condCloseAboveTwiceHigh = "price_close > 2 * price_high"
	condNegativeVolume      = "volume < 0"
)

type stagingGorm struct {
	db *gorm.DB
}

var _ usecase.StagingRepository = (*stagingGorm)(nil)

// NewStagingRepository は指定されたDB接続でstagingGormリポジトリの新しいインスタンスを生成します。
func NewStagingRepository(db *gorm.DB) *stagingGorm {
	return &stagingGorm{db: db}
}

// Reset は staging を空にします。
func (r *stagingGorm) Reset(ctx context.Context) error {
	return db.Classify(truncateStaging(r.db.WithContext(ctx)))
}

// InsertBatch は複数の足をまとめて書き込みます。
func (r *stagingGorm) InsertBatch(ctx context.Context, bars []entity.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}
	ms := make([]StagingBarModel, 0, len(bars))
	for _, b := range bars {
		ms = append(ms, toStagingModel(b))
	}
	return db.Classify(r.db.WithContext(ctx).CreateInBatches(&ms, writeBatchSize).Error)
}

func (r *stagingGorm) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&StagingBarModel{}).Count(&n).Error
	return n, db.Classify(err)
}

func (r *stagingGorm) CountDuplicateGroups(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Raw(duplicateGroupsSQL).Scan(&n).Error
	return n, db.Classify(err)
}

// CountAnomalies はルールごとの件数と、いずれかに該当する行数を返します。
func (r *stagingGorm) CountAnomalies(ctx context.Context) (entity.AnomalyCounts, error) {
	var c entity.AnomalyCounts
	counts := []struct {
		cond string
		dst  *int64
	}{
		{condNonPositiveClose, &c.NonPositiveClose},
		{condHighBelowLow, &c.HighBelowLow},
		{condCloseAboveTwiceHigh, &c.CloseAboveTwiceHigh},
		{condNegativeVolume, &c.NegativeVolume},
	}
	for _, q := range counts {
		if err := r.db.WithContext(ctx).Model(&StagingBarModel{}).Where(q.cond).Count(q.dst).Error; err != nil {
			return entity.AnomalyCounts{}, db.Classify(err)
		}
	}
	err := r.db.WithContext(ctx).Model(&StagingBarModel{}).
		Where(condNonPositiveClose).
		Or(condHighBelowLow).
		Or(condCloseAboveTwiceHigh).
		Or(condNegativeVolume).
		Count(&c.Total).Error
	if err != nil {
		return entity.AnomalyCounts{}, db.Classify(err)
	}
	return c, nil
}

// Deduplicate は (ticker, trade_date) ごとに最初に挿入された行だけを残します。
func (r *stagingGorm) Deduplicate(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Exec(dedupSQL)
	return res.RowsAffected, db.Classify(res.Error)
}

// PromoteAll は staging を本番へupsertし、同じトランザクションで staging を空にします。
func (r *stagingGorm) PromoteAll(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(promoteSQL)
		if res.Error != nil {
			return res.Error
		}
		n = res.RowsAffected
		return truncateStaging(tx)
	})
	if err != nil {
		return 0, db.Classify(err)
	}
	return n, nil
}

// truncateStaging は PostgreSQL では TRUNCATE、それ以外では DELETE を使います。
func truncateStaging(tx *gorm.DB) error {
	if tx.Dialector.Name() == "postgres" {
		return tx.Exec("TRUNCATE TABLE ohlcv_staging").Error
	}
	return tx.Exec("DELETE FROM ohlcv_staging").Error
}
