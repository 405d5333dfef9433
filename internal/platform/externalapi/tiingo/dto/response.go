// Package dto defines data transfer objects for the Tiingo API responses.
package dto

// MetaResponse represents the JSON response from /tiingo/daily/{ticker}.
type MetaResponse struct {
	Ticker       string `json:"ticker"`
	Name         string `json:"name"`
	ExchangeCode string `json:"exchangeCode"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
}

// PriceResponse represents one element of /tiingo/daily/{ticker}/prices.
type PriceResponse struct {
	Date        string   `json:"date"`
	Open        *float64 `json:"open"`
	High        *float64 `json:"high"`
	Low         *float64 `json:"low"`
	Close       *float64 `json:"close"`
	Volume      *float64 `json:"volume"`
	AdjOpen     *float64 `json:"adjOpen"`
	AdjHigh     *float64 `json:"adjHigh"`
	AdjLow      *float64 `json:"adjLow"`
	AdjClose    *float64 `json:"adjClose"`
	AdjVolume   *float64 `json:"adjVolume"`
	DivCash     *float64 `json:"divCash"`
	SplitFactor *float64 `json:"splitFactor"`
}
