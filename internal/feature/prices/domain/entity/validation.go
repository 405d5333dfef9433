package entity

import "time"

// Severity grades a staging issue.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityBlocking Severity = "blocking"
)

// Issue kinds.
const (
	IssueDuplicates = "duplicates"
	IssueAnomalies  = "anomalies"
)

// Issue is one finding of the staging validator.
type Issue struct {
	Kind     string   `json:"kind"`
	Severity Severity `json:"severity"`
	Count    int64    `json:"count"`
	Message  string   `json:"message"`
}

// AnomalyCounts breaks anomalous staging rows down by rule. Total counts rows matching any rule.
type AnomalyCounts struct {
	NonPositiveClose    int64 `json:"non_positive_close"`
	HighBelowLow        int64 `json:"high_below_low"`
	CloseAboveTwiceHigh int64 `json:"close_above_twice_high"`
	NegativeVolume      int64 `json:"negative_volume"`
	Total               int64 `json:"total"`
}

// ValidationReport is the outcome of validating staging.
type ValidationReport struct {
	Rows              int64         `json:"rows"`
	DuplicateGroups   int64         `json:"duplicate_groups"`
	DuplicatesRemoved int64         `json:"duplicates_removed"`
	Anomalies         AnomalyCounts `json:"anomalies"`
	Threshold         int64         `json:"threshold"`
	Blocking          bool          `json:"blocking"`
	Issues            []Issue       `json:"issues"`
}

// IngestResult summarizes one ingestion into staging.
type IngestResult struct {
	Range   DateRange
	NoOp    bool
	Tickers int
	Batches int
	Rows    int
	Dropped int
	NoData  []string
	Failed  []string
}

// PromoteResult summarizes one promotion.
type PromoteResult struct {
	Rows int64
}

// DailyCount is the number of tickers with a bar on a date.
type DailyCount struct {
	Date    time.Time `json:"date"`
	Tickers int64     `json:"tickers"`
}

// PriceStats is the reporting snapshot of production prices.
type PriceStats struct {
	Records int64        `json:"records"`
	Tickers int64        `json:"tickers"`
	MinDate *time.Time   `json:"min_date,omitempty"`
	MaxDate *time.Time   `json:"max_date,omitempty"`
	Recent  []DailyCount `json:"recent"`
}

// DaysCovered is the calendar span between the first and last bar, inclusive.
func (s PriceStats) DaysCovered() int {
	if s.MinDate == nil || s.MaxDate == nil {
		return 0
	}
	return int(s.MaxDate.Sub(*s.MinDate).Hours()/24) + 1
}
