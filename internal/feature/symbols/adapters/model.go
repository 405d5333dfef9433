// Package adapters はsymbolsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"time"

	"github.com/boatjones/quant-lab/internal/feature/symbols/domain/entity"
)

// SymbolModel は symbols テーブルの行です。end_date は is_active = false のときのみ値を持ちます。
type SymbolModel struct {
	Ticker      string     `gorm:"primaryKey;size:16"`
	CompanyName *string    `gorm:"size:255"`
	Exchange    *string    `gorm:"size:32;index"`
	AssetType   string     `gorm:"size:16;not null"`
	IsActive    bool       `gorm:"not null;index"`
	StartDate   time.Time  `gorm:"type:date;not null"`
	EndDate     *time.Time `gorm:"type:date"`
	DateLoaded  *time.Time `gorm:"type:date"`
}

func (SymbolModel) TableName() string {
	return "symbols"
}

// StockModel は stocks テーブルの行です。industry か sector が空のものは不完全とみなします。
type StockModel struct {
	Ticker      string  `gorm:"primaryKey;size:16"`
	CompanyName *string `gorm:"size:255"`
	Exchange    *string `gorm:"size:32"`
	Industry    *string `gorm:"size:128"`
	Sector      *string `gorm:"size:128"`
}

func (StockModel) TableName() string {
	return "stocks"
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toSymbolModel(e entity.Symbol) SymbolModel {
	return SymbolModel{
		Ticker:      e.Ticker,
		CompanyName: nullable(e.CompanyName),
		Exchange:    nullable(e.Exchange),
		AssetType:   string(e.AssetType),
		IsActive:    e.Active,
		StartDate:   entity.Day(e.StartDate),
		EndDate:     e.EndDate,
		DateLoaded:  e.DateLoaded,
	}
}

func toSymbolEntity(m SymbolModel) entity.Symbol {
	return entity.Symbol{
		Ticker:      m.Ticker,
		CompanyName: deref(m.CompanyName),
		Exchange:    deref(m.Exchange),
		AssetType:   entity.AssetType(m.AssetType),
		Active:      m.IsActive,
		StartDate:   m.StartDate,
		EndDate:     m.EndDate,
		DateLoaded:  m.DateLoaded,
	}
}

func toStockModel(e entity.Stock) StockModel {
	return StockModel{
		Ticker:      e.Ticker,
		CompanyName: nullable(e.CompanyName),
		Exchange:    nullable(e.Exchange),
		Industry:    nullable(e.Industry),
		Sector:      nullable(e.Sector),
	}
}
