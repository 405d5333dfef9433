package tiingo

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	priceentity "github.com/boatjones/quant-lab/internal/feature/prices/domain/entity"
	priceusecase "github.com/boatjones/quant-lab/internal/feature/prices/usecase"
	symbolentity "github.com/boatjones/quant-lab/internal/feature/symbols/domain/entity"
	symbolusecase "github.com/boatjones/quant-lab/internal/feature/symbols/usecase"
	"github.com/boatjones/quant-lab/internal/platform/externalapi"
	"github.com/boatjones/quant-lab/internal/platform/externalapi/tiingo/dto"
	"github.com/boatjones/quant-lab/internal/shared/ratelimiter"
	"github.com/boatjones/quant-lab/internal/shared/sourceerr"
)

// Name is the provider name used in logs, errors and listing sources.
const Name = "tiingo"

// Client はTiingo APIからユニバース・銘柄名・日足を取得します。
type Client struct {
	cfg     Config
	fetcher *externalapi.Fetcher
	now     func() time.Time
}

var (
	_ symbolusecase.UniverseSource = (*Client)(nil)
	_ symbolusecase.NameResolver   = (*Client)(nil)
	_ priceusecase.PriceSource     = (*Client)(nil)
)

// NewClient は指定された設定・HTTPクライアント・レートリミッターでClientを生成します。
// limiter はTiingoへのすべての呼び出しで共有されます。
func NewClient(cfg Config, client *http.Client, limiter ratelimiter.RateLimiterInterface) *Client {
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	if cfg.APIKey != "" {
		header.Set("Authorization", "Token "+cfg.APIKey)
	}
	return &Client{
		cfg:     cfg,
		fetcher: externalapi.NewFetcher(Name, client, limiter, header),
		now:     time.Now,
	}
}

func (c *Client) Name() string {
	return Name
}

// ResolveName は /tiingo/daily/{ticker} から会社名を取得します。
func (c *Client) ResolveName(ctx context.Context, ticker string) (string, error) {
	var meta dto.MetaResponse
	u := fmt.Sprintf("%s/tiingo/daily/%s", c.cfg.BaseURL, url.PathEscape(ticker))
	if err := c.fetcher.GetJSON(ctx, "meta", u, &meta); err != nil {
		return "", err
	}
	return strings.TrimSpace(meta.Name), nil
}

// GetDailyPrices は r の範囲の日足を取得します。範囲の両端を含みます。
func (c *Client) GetDailyPrices(ctx context.Context, ticker string, r priceentity.DateRange) ([]priceentity.RawBar, error) {
	q := url.Values{}
	q.Set("startDate", r.Start.Format(time.DateOnly))
	q.Set("endDate", r.End.Format(time.DateOnly))
	q.Set("resampleFreq", "daily")
	u := fmt.Sprintf("%s/tiingo/daily/%s/prices?%s", c.cfg.BaseURL, url.PathEscape(strings.ToLower(ticker)), q.Encode())

	var body []dto.PriceResponse
	if err := c.fetcher.GetJSON(ctx, "prices", u, &body); err != nil {
		return nil, err
	}

	bars := make([]priceentity.RawBar, 0, len(body))
	for _, p := range body {
		d, err := parseDate(p.Date)
		if err != nil {
			// Normalize drops records without a date
			slog.Debug("unparseable tiingo date", "ticker", ticker, "date", p.Date)
		}
		bars = append(bars, priceentity.RawBar{
			Date:      d,
			Open:      p.Open,
			High:      p.High,
			Low:       p.Low,
			Close:     p.Close,
			Volume:    p.Volume,
			AdjOpen:   p.AdjOpen,
			AdjHigh:   p.AdjHigh,
			AdjLow:    p.AdjLow,
			AdjClose:  p.AdjClose,
			AdjVolume: p.AdjVolume,
			Dividend:  p.DivCash,
			Split:     p.SplitFactor,
		})
	}
	return bars, nil
}

// FetchUniverse downloads supported_tickers.zip and returns the active listings on the
// configured exchanges.
func (c *Client) FetchUniverse(ctx context.Context) (symbolentity.Universe, error) {
	body, err := c.fetcher.Get(ctx, "supported_tickers", c.cfg.TickersURL)
	if err != nil {
		return symbolentity.Universe{}, err
	}
	rows, err := parseSupportedTickers(body)
	if err != nil {
		return symbolentity.Universe{}, sourceerr.Contract(Name, "supported_tickers", err)
	}

	exchanges := make(map[string]struct{}, len(c.cfg.Exchanges))
	for _, e := range c.cfg.Exchanges {
		exchanges[strings.ToUpper(e)] = struct{}{}
	}
	cutoff := symbolentity.Day(c.now()).AddDate(0, 0, -c.cfg.ActiveGraceDays)

	u := symbolentity.Universe{Source: Name}
	for _, row := range rows {
		if !row.usable(exchanges, cutoff) {
			continue
		}
		u.Listings = append(u.Listings, symbolentity.Listing{
			Ticker:       row.Ticker,
			Exchange:     row.Exchange,
			AssetType:    symbolentity.ParseAssetType(row.AssetType),
			RawAssetType: row.AssetType,
			Source:       Name,
		})
	}
	slog.Info("tiingo universe loaded", "rows", len(rows), "listings", len(u.Listings))
	return u, nil
}

func parseDate(s string) (time.Time, error) {
	if len(s) >= len(time.DateOnly) {
		s = s[:len(time.DateOnly)]
	}
	return time.Parse(time.DateOnly, s)
}
