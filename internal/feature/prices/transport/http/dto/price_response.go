// Package dto defines HTTP response bodies for the prices feature.
package dto

// PriceBarResponse is one daily bar of the GET /prices/:ticker response.
type PriceBarResponse struct {
	Date       string   `json:"date"`
	Open       float64  `json:"open"`
	High       float64  `json:"high"`
	Low        float64  `json:"low"`
	Close      float64  `json:"close"`
	CloseUnadj float64  `json:"close_unadj"`
	Volume     int64    `json:"volume"`
	Dividend   *float64 `json:"dividend"`
	Split      *float64 `json:"split"`
}
