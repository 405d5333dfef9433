// Package entity defines industry/sector classification and the excluded-ticker cache.
package entity

import (
	"strings"
	"time"
)

// Reasons stored in the excluded-ticker cache.
const (
	ReasonNoCompanyName  = "no_company_name"
	ReasonNoIndustryData = "no_industry_data"
)

// Classification is what a profile provider reports for a ticker.
type Classification struct {
	Industry string
	Sector   string
	Source   string
}

// Complete reports whether both industry and sector are present.
func (c Classification) Complete() bool {
	return strings.TrimSpace(c.Industry) != "" && strings.TrimSpace(c.Sector) != ""
}

// ExcludedTicker is one entry of the excluded-ticker cache.
type ExcludedTicker struct {
	Ticker    string    `json:"ticker"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// EnrichResult summarizes one enrichment pass.
type EnrichResult struct {
	Candidates      int
	Enriched        int
	BySource        map[string]int
	SkippedExcluded int
	// Excluded were exhausted by every provider without a transient error.
	Excluded []string
	// Failed hit a transient error and are retried next run.
	Failed []string
}

// PurgeResult counts rows removed by the data-quality purge.
type PurgeResult struct {
	Tickers []string
	Stocks  int64
	Symbols int64
	Prices  int64
}
