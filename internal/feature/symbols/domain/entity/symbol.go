// Package entity defines the reference-data types for listed securities.
package entity

import (
	"strings"
	"time"
)

// AssetType is the normalized instrument category.
type AssetType string

const (
	AssetStock AssetType = "stock"
	AssetETF   AssetType = "etf"
	AssetIndex AssetType = "index"
	AssetFund  AssetType = "fund"
	AssetOther AssetType = "other"
)

// ParseAssetType maps provider vocabulary ("Stock", "ETF", "Mutual Fund", ...) onto AssetType.
// An empty input yields "" so that a secondary provider may fill it.
func ParseAssetType(s string) AssetType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ""
	case "stock", "common stock", "equity":
		return AssetStock
	case "etf":
		return AssetETF
	case "index":
		return AssetIndex
	case "fund", "mutual fund":
		return AssetFund
	default:
		return AssetOther
	}
}

// Symbol is a persisted listing.
// EndDate is non-nil exactly when Active is false.
type Symbol struct {
	Ticker      string     `json:"ticker"`
	CompanyName string     `json:"company_name"`
	Exchange    string     `json:"exchange"`
	AssetType   AssetType  `json:"asset_type"`
	Active      bool       `json:"active"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	DateLoaded  *time.Time `json:"date_loaded,omitempty"`
}

// IsStock reports whether the symbol carries a stock classification record.
func (s Symbol) IsStock() bool {
	return s.AssetType == AssetStock
}

// Stock is the classification record of a stock symbol.
// An empty Industry or Sector marks the record incomplete.
type Stock struct {
	Ticker      string `json:"ticker"`
	CompanyName string `json:"company_name"`
	Exchange    string `json:"exchange"`
	Industry    string `json:"industry"`
	Sector      string `json:"sector"`
}

// NormalizeTicker upper-cases and trims a ticker.
func NormalizeTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}

// Day truncates t to midnight UTC, the representation used for every stored date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
