// Package dto defines data transfer objects for the FMP API responses.
package dto

// ScreenerItem represents one element of the stock-screener response.
type ScreenerItem struct {
	Symbol            string  `json:"symbol"`
	CompanyName       string  `json:"companyName"`
	ExchangeShortName string  `json:"exchangeShortName"`
	Sector            string  `json:"sector"`
	Industry          string  `json:"industry"`
	MarketCap         float64 `json:"marketCap"`
	IsEtf             bool    `json:"isEtf"`
	IsFund            bool    `json:"isFund"`
}

// Profile represents one element of the profile/{ticker} response.
type Profile struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"companyName"`
	Exchange    string `json:"exchangeShortName"`
	Industry    string `json:"industry"`
	Sector      string `json:"sector"`
}
