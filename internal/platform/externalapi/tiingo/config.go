// Package tiingo provides a client for the Tiingo end-of-day API: the supported-tickers universe,
// ticker metadata and daily prices.
package tiingo

import "time"

// Config holds configuration for the Tiingo API client.
type Config struct {
	APIKey         string        `yaml:"api_key"`
	BaseURL        string        `yaml:"base_url" default:"https://api.tiingo.com"`
	TickersURL     string        `yaml:"tickers_url" default:"https://apimedia.tiingo.com/docs/tiingo/daily/supported_tickers.zip"`
	CallsPerMinute int           `yaml:"calls_per_minute" default:"50"`
	Timeout        time.Duration `yaml:"timeout" default:"30s"`
	// Exchanges limits the universe; index listings are kept regardless.
	Exchanges []string `yaml:"exchanges" default:"[\"NYSE\",\"NASDAQ\",\"NYSE ARCA\",\"BATS\"]"`
	// ActiveGraceDays treats a listing whose end date is this recent as still active.
	ActiveGraceDays int `yaml:"active_grace_days" default:"7"`
}
