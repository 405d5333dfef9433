// Package adapters はpricesフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"time"

	"github.com/boatjones/quant-lab/internal/feature/prices/domain/entity"
)

// BarModel は本番 ohlcv テーブルの行です。(ticker, trade_date) で一意です。
type BarModel struct {
	Ticker     string    `gorm:"primaryKey;size:16"`
	TradeDate  time.Time `gorm:"primaryKey;type:date;index"`
	PriceOpen  float64   `gorm:"not null"`
	PriceHigh  float64   `gorm:"not null"`
	PriceLow   float64   `gorm:"not null"`
	PriceClose float64   `gorm:"not null"`
	CloseUnadj float64   `gorm:"not null"`
	Volume     int64     `gorm:"not null"`
	Dividend   *float64
	Split      *float64
}

func (BarModel) TableName() string {
	return "ohlcv"
}

// StagingBarModel は ohlcv_staging テーブルの行です。一意制約はなく、重複は検証で除去します。
type StagingBarModel struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	Ticker     string    `gorm:"size:16;not null;index:idx_staging_ticker_date"`
	TradeDate  time.Time `gorm:"type:date;not null;index:idx_staging_ticker_date"`
	PriceOpen  float64
	PriceHigh  float64
	PriceLow   float64
	PriceClose float64
	CloseUnadj float64
	Volume     int64
	Dividend   *float64
	Split      *float64
}

func (StagingBarModel) TableName() string {
	return "ohlcv_staging"
}

func toStagingModel(b entity.PriceBar) StagingBarModel {
	return StagingBarModel{
		Ticker:     b.Ticker,
		TradeDate:  entity.Day(b.TradeDate),
		PriceOpen:  b.Open,
		PriceHigh:  b.High,
		PriceLow:   b.Low,
		PriceClose: b.Close,
		CloseUnadj: b.CloseUnadj,
		Volume:     b.Volume,
		Dividend:   b.Dividend,
		Split:      b.Split,
	}
}

func toBarEntity(m BarModel) entity.PriceBar {
	return entity.PriceBar{
		Ticker:     m.Ticker,
		TradeDate:  entity.Day(m.TradeDate),
		Open:       m.PriceOpen,
		High:       m.PriceHigh,
		Low:        m.PriceLow,
		Close:      m.PriceClose,
		CloseUnadj: m.CloseUnadj,
		Volume:     m.Volume,
		Dividend:   m.Dividend,
		Split:      m.Split,
	}
}
