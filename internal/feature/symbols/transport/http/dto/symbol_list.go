// Package dto defines HTTP response bodies for the symbols feature.
package dto

// SymbolItem is one entry of the GET /symbols response.
type SymbolItem struct {
	Ticker    string `json:"ticker"`
	Name      string `json:"name"`
	Exchange  string `json:"exchange"`
	AssetType string `json:"asset_type"`
}
