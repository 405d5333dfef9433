package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeUniverses_PrimaryWinsSecondaryFills(t *testing.T) {
	t.Parallel()

	primary := Universe{
		Source: "tiingo",
		Listings: []Listing{
			{Ticker: "aapl", Exchange: "NASDAQ", AssetType: AssetStock},
			{Ticker: "SPY", Exchange: "NYSE ARCA", AssetType: AssetETF},
		},
	}
	secondary := Universe{
		Source: "fmp",
		Listings: []Listing{
			{Ticker: "AAPL", CompanyName: "Apple Inc.", Exchange: "NYSE", AssetType: AssetETF, Industry: "Consumer Electronics", Sector: "Technology"},
			{Ticker: "MSFT", CompanyName: "Microsoft", Exchange: "NASDAQ", AssetType: AssetStock},
		},
		FailedSegments: []string{"NYSE ARCA"},
	}

	merged, degraded := MergeUniverses(primary, secondary)

	assert.Len(t, merged, 3)
	aapl := merged["AAPL"]
	assert.Equal(t, AssetStock, aapl.AssetType, "primary asset type wins")
	assert.Equal(t, "NASDAQ", aapl.Exchange, "primary exchange wins")
	assert.Equal(t, "Apple Inc.", aapl.CompanyName, "secondary fills empty name")
	assert.Equal(t, "Technology", aapl.Sector)
	assert.Equal(t, "tiingo", merged["SPY"].Source)
	assert.True(t, IsDegraded(degraded, "NYSE ARCA"))
	assert.False(t, IsDegraded(degraded, "NASDAQ"))
}

func TestIsDegraded_AllSegments(t *testing.T) {
	t.Parallel()

	degraded := map[string]struct{}{AllSegments: {}}
	assert.True(t, IsDegraded(degraded, "NYSE"))
	assert.False(t, IsDegraded(map[string]struct{}{}, "NYSE"))
}

func TestParseAssetType(t *testing.T) {
	t.Parallel()

	tests := map[string]AssetType{
		"Stock":       AssetStock,
		"ETF":         AssetETF,
		"Mutual Fund": AssetFund,
		"index":       AssetIndex,
		"warrant":     AssetOther,
		"":            "",
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseAssetType(in), in)
	}
}

func TestListing_IsCommon(t *testing.T) {
	t.Parallel()

	tests := []struct {
		listing Listing
		want    bool
	}{
		{Listing{Ticker: "AAPL", AssetType: AssetStock}, true},
		{Listing{Ticker: "BRK-B", AssetType: AssetStock}, false},
		{Listing{Ticker: "ABC-WT", AssetType: AssetStock}, false},
		{Listing{Ticker: "ABCDU", AssetType: AssetStock}, false},
		{Listing{Ticker: "WPAU", AssetType: AssetStock}, false},
		{Listing{Ticker: "XYZ.U", AssetType: AssetStock}, false},
		{Listing{Ticker: "P-ABC", AssetType: AssetStock}, true},
		{Listing{Ticker: "12345", AssetType: AssetStock}, false},
		{Listing{Ticker: "SPY", AssetType: AssetETF}, true},
		{Listing{Ticker: "QQQW", AssetType: AssetETF}, true},
		{Listing{Ticker: "FOO-P", AssetType: AssetETF}, false},
		{Listing{Ticker: "VFIAX", AssetType: AssetFund, RawAssetType: "Mutual Fund"}, false},
		{Listing{Ticker: "", AssetType: AssetStock}, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.listing.IsCommon(), tt.listing.Ticker)
	}
}
