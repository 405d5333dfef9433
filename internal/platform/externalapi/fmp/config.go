// Package fmp provides a client for the Financial Modeling Prep API: the stock screener
// universe and company profiles.
package fmp

import "time"

// Config holds configuration for the FMP API client.
type Config struct {
	APIKey         string        `yaml:"api_key"`
	BaseURL        string        `yaml:"base_url" default:"https://financialmodelingprep.com/api/v3"`
	CallsPerMinute int           `yaml:"calls_per_minute" default:"30"`
	Timeout        time.Duration `yaml:"timeout" default:"30s"`
	// Exchanges are screened one request each; a failed exchange degrades only that segment.
	Exchanges     []string `yaml:"exchanges" default:"[\"NYSE\",\"NASDAQ\",\"NYSE ARCA\"]"`
	ScreenerLimit int      `yaml:"screener_limit" default:"10000"`
}
