// Package entity defines daily price bars and the staging/validation vocabulary.
package entity

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrMissingField marks a provider record lacking its date or close.
var ErrMissingField = errors.New("price record missing required field")

// PriceBar is one normalized daily bar. Open/High/Low/Close are split- and dividend-adjusted.
// Dividend and Split are nil when the provider did not report them; nil never means zero.
type PriceBar struct {
	Ticker     string    `json:"ticker"`
	TradeDate  time.Time `json:"trade_date"`
	Open       float64   `json:"open"`
	High       float64   `json:"high"`
	Low        float64   `json:"low"`
	Close      float64   `json:"close"`
	CloseUnadj float64   `json:"close_unadj"`
	Volume     int64     `json:"volume"`
	Dividend   *float64  `json:"dividend,omitempty"`
	Split      *float64  `json:"split,omitempty"`
}

// RawBar is a provider record before normalization. Unset fields are nil.
type RawBar struct {
	Date      time.Time
	Open      *float64
	High      *float64
	Low       *float64
	Close     *float64
	Volume    *float64
	AdjOpen   *float64
	AdjHigh   *float64
	AdjLow    *float64
	AdjClose  *float64
	AdjVolume *float64
	Dividend  *float64
	Split     *float64
}

// Normalize maps a raw record onto a PriceBar. Adjusted fields are preferred and fall back
// to unadjusted ones; the unadjusted close falls back to the adjusted close. Missing volume
// becomes 0. A record without a date or any close is rejected with ErrMissingField.
func Normalize(ticker string, r RawBar) (PriceBar, error) {
	if r.Date.IsZero() {
		return PriceBar{}, fmt.Errorf("%w: date", ErrMissingField)
	}
	closeAdj := first(r.AdjClose, r.Close)
	if closeAdj == nil {
		return PriceBar{}, fmt.Errorf("%w: close (%s)", ErrMissingField, r.Date.Format(time.DateOnly))
	}
	open := first(r.AdjOpen, r.Open)
	high := first(r.AdjHigh, r.High)
	low := first(r.AdjLow, r.Low)
	if open == nil || high == nil || low == nil {
		return PriceBar{}, fmt.Errorf("%w: open/high/low (%s)", ErrMissingField, r.Date.Format(time.DateOnly))
	}

	bar := PriceBar{
		Ticker:     ticker,
		TradeDate:  Day(r.Date),
		Open:       *open,
		High:       *high,
		Low:        *low,
		Close:      *closeAdj,
		CloseUnadj: *first(r.Close, r.AdjClose),
		Dividend:   r.Dividend,
		Split:      r.Split,
	}
	if v := first(r.AdjVolume, r.Volume); v != nil {
		bar.Volume = int64(math.Round(*v))
	}
	return bar, nil
}

func first(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
