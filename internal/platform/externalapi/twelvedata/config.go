// Package twelvedata provides a client for the Twelve Data stock market API.
package twelvedata

import "time"

// Config holds configuration for the Twelve Data API client.
type Config struct {
	TwelveDataAPIKey string        `yaml:"api_key"`                                       // API key for authentication
	BaseURL          string        `yaml:"base_url" default:"https://api.twelvedata.com"` // Base URL for the API
	CallsPerMinute   int           `yaml:"calls_per_minute" default:"8"`                  // free tier allows 8 credits/min
	Timeout          time.Duration `yaml:"timeout" default:"10s"`                         // HTTP request timeout
}
