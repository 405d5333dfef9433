package tiingo

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	priceentity "github.com/boatjones/quant-lab/internal/feature/prices/domain/entity"
	symbolentity "github.com/boatjones/quant-lab/internal/feature/symbols/domain/entity"
	"github.com/boatjones/quant-lab/internal/shared/ratelimiter"
	"github.com/boatjones/quant-lab/internal/shared/sourceerr"
)

// countingLimiter counts WaitIfNeeded calls.
type countingLimiter struct{ calls int }

func (l *countingLimiter) WaitIfNeeded(context.Context) { l.calls++ }

var _ ratelimiter.RateLimiterInterface = (*countingLimiter)(nil)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *countingLimiter) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	lim := &countingLimiter{}
	cfg := Config{
		APIKey:          "secret",
		BaseURL:         srv.URL,
		TickersURL:      srv.URL + "/supported_tickers.zip",
		Exchanges:       []string{"NYSE", "NASDAQ", "NYSE ARCA", "BATS"},
		ActiveGraceDays: 7,
	}
	c := NewClient(cfg, srv.Client(), lim)
	c.now = func() time.Time { return time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC) }
	return c, lim
}

func zipCSV(t *testing.T, csv string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("supported_tickers.csv")
	require.NoError(t, err)
	_, err = w.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestClient_FetchUniverse(t *testing.T) {
	t.Parallel()

	csv := "ticker,exchange,assetType,priceCurrency,startDate,endDate\n" +
		"aapl,NASDAQ,Stock,USD,1980-12-12,2025-01-09\n" +
		"SPY,NYSE ARCA,ETF,USD,1993-01-29,\n" +
		"OLD,NYSE,Stock,USD,2000-01-01,2024-06-30\n" +
		"RECENT,NYSE,Stock,USD,2000-01-01,2025-01-03\n" +
		"LSE1,LSE,Stock,GBP,2000-01-01,\n" +
		"CNY1,NYSE,Stock,CNY,2000-01-01,\n" +
		"DJI,,Index,,1990-01-01,\n"

	c, lim := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/supported_tickers.zip", r.URL.Path)
		assert.Equal(t, "Token secret", r.Header.Get("Authorization"))
		_, _ = w.Write(zipCSV(t, csv))
	})

	u, err := c.FetchUniverse(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, lim.calls)
	assert.Equal(t, "tiingo", u.Source)
	var tickers []string
	for _, l := range u.Listings {
		tickers = append(tickers, l.Ticker)
	}
	assert.Equal(t, []string{"AAPL", "SPY", "RECENT", "DJI"}, tickers)
	assert.Equal(t, symbolentity.AssetStock, u.Listings[0].AssetType)
	assert.Equal(t, "Stock", u.Listings[0].RawAssetType)
	assert.Equal(t, symbolentity.AssetETF, u.Listings[1].AssetType)
	assert.Equal(t, symbolentity.AssetIndex, u.Listings[3].AssetType)
}

func TestClient_FetchUniverse_Errors(t *testing.T) {
	t.Parallel()

	t.Run("server error is transient", func(t *testing.T) {
		t.Parallel()
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := c.FetchUniverse(context.Background())

		assert.True(t, sourceerr.IsTransient(err))
	})

	t.Run("not a zip is a contract error", func(t *testing.T) {
		t.Parallel()
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>maintenance</html>"))
		})

		_, err := c.FetchUniverse(context.Background())

		assert.ErrorIs(t, err, sourceerr.ErrContract)
	})

	t.Run("missing column is a contract error", func(t *testing.T) {
		t.Parallel()
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write(zipCSV(t, "ticker,exchange\nAAPL,NASDAQ\n"))
		})

		_, err := c.FetchUniverse(context.Background())

		assert.ErrorIs(t, err, sourceerr.ErrContract)
	})
}

func TestClient_ResolveName(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tiingo/daily/AAPL":
			_, _ = w.Write([]byte(`{"ticker":"AAPL","name":"  Apple Inc  ","exchangeCode":"NASDAQ"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Not found."}`))
		}
	})

	name, err := c.ResolveName(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc", name)

	_, err = c.ResolveName(context.Background(), "NOPE")
	assert.True(t, sourceerr.IsNotFound(err))
}

func TestClient_GetDailyPrices(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tiingo/daily/brk-b/prices", r.URL.Path)
		assert.Equal(t, "2025-01-02", r.URL.Query().Get("startDate"))
		assert.Equal(t, "2025-01-03", r.URL.Query().Get("endDate"))
		_, _ = w.Write([]byte(`[
			{"date":"2025-01-02T00:00:00.000Z","open":10,"high":11,"low":9,"close":10.5,"volume":1000,
			 "adjOpen":5,"adjHigh":5.5,"adjLow":4.5,"adjClose":5.25,"adjVolume":2000,"divCash":0.0,"splitFactor":1.0},
			{"date":"2025-01-03T00:00:00.000Z","adjClose":5.5,"adjOpen":5,"adjHigh":6,"adjLow":5}
		]`))
	})
	r := priceentity.DateRange{
		Start: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC),
	}

	raws, err := c.GetDailyPrices(context.Background(), "BRK-B", r)

	require.NoError(t, err)
	require.Len(t, raws, 2)

	bar, err := priceentity.Normalize("BRK-B", raws[0])
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), bar.TradeDate)
	assert.Equal(t, 5.25, bar.Close)
	assert.Equal(t, 10.5, bar.CloseUnadj)
	assert.Equal(t, int64(2000), bar.Volume)
	require.NotNil(t, bar.Dividend)
	assert.Equal(t, 0.0, *bar.Dividend)

	bar, err = priceentity.Normalize("BRK-B", raws[1])
	require.NoError(t, err)
	assert.Equal(t, 5.5, bar.CloseUnadj)
	assert.Nil(t, bar.Dividend)
	assert.Nil(t, bar.Split)
}

func TestClient_GetDailyPrices_NotFound(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.GetDailyPrices(context.Background(), "GONE", priceentity.DateRange{})

	assert.True(t, sourceerr.IsNotFound(err))
}
