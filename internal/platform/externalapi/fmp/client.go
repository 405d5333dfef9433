package fmp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	classentity "github.com/boatjones/quant-lab/internal/feature/classification/domain/entity"
	classusecase "github.com/boatjones/quant-lab/internal/feature/classification/usecase"
	symbolentity "github.com/boatjones/quant-lab/internal/feature/symbols/domain/entity"
	symbolusecase "github.com/boatjones/quant-lab/internal/feature/symbols/usecase"
	"github.com/boatjones/quant-lab/internal/platform/externalapi"
	"github.com/boatjones/quant-lab/internal/platform/externalapi/fmp/dto"
	"github.com/boatjones/quant-lab/internal/shared/ratelimiter"
	"github.com/boatjones/quant-lab/internal/shared/sourceerr"
)

// Name is the provider name used in logs, errors and listing sources.
const Name = "fmp"

// Client はFMP APIからスクリーナーのユニバースと企業プロファイルを取得します。
type Client struct {
	cfg     Config
	fetcher *externalapi.Fetcher
}

var (
	_ symbolusecase.UniverseSource = (*Client)(nil)
	_ classusecase.ProfileSource   = (*Client)(nil)
)

// NewClient は指定された設定・HTTPクライアント・レートリミッターでClientを生成します。
func NewClient(cfg Config, client *http.Client, limiter ratelimiter.RateLimiterInterface) *Client {
	return &Client{cfg: cfg, fetcher: externalapi.NewFetcher(Name, client, limiter, nil)}
}

func (c *Client) Name() string {
	return Name
}

// FetchUniverse は取引所ごとにスクリーナーを呼び出します。
// 失敗した取引所は FailedSegments に記録し、残りの取引所の結果を返します。
func (c *Client) FetchUniverse(ctx context.Context) (symbolentity.Universe, error) {
	u := symbolentity.Universe{Source: Name}

	for _, exchange := range c.cfg.Exchanges {
		q := url.Values{}
		q.Set("exchange", exchange)
		q.Set("isActivelyTrading", "true")
		q.Set("limit", strconv.Itoa(c.cfg.ScreenerLimit))
		q.Set("apikey", c.cfg.APIKey)

		var items []dto.ScreenerItem
		if err := c.fetcher.GetJSON(ctx, "stock-screener", c.cfg.BaseURL+"/stock-screener?"+q.Encode(), &items); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return u, ctxErr
			}
			slog.Error("fmp screener failed", "exchange", exchange, "error", err)
			u.FailedSegments = append(u.FailedSegments, exchange)
			continue
		}

		for _, it := range items {
			ex := it.ExchangeShortName
			if ex == "" {
				ex = exchange
			}
			u.Listings = append(u.Listings, symbolentity.Listing{
				Ticker:       it.Symbol,
				CompanyName:  strings.TrimSpace(it.CompanyName),
				Exchange:     ex,
				AssetType:    screenerAssetType(it),
				RawAssetType: string(screenerAssetType(it)),
				Industry:     it.Industry,
				Sector:       it.Sector,
				Source:       Name,
			})
		}
		slog.Info("fmp screener loaded", "exchange", exchange, "listings", len(items))
	}
	return u, nil
}

func screenerAssetType(it dto.ScreenerItem) symbolentity.AssetType {
	switch {
	case it.IsEtf:
		return symbolentity.AssetETF
	case it.IsFund:
		return symbolentity.AssetFund
	default:
		return symbolentity.AssetStock
	}
}

// GetClassification は profile/{ticker} から industry と sector を取得します。
// 空の配列は ErrNotFound として返します。
func (c *Client) GetClassification(ctx context.Context, ticker string) (classentity.Classification, error) {
	u := fmt.Sprintf("%s/profile/%s?apikey=%s", c.cfg.BaseURL, url.PathEscape(ticker), url.QueryEscape(c.cfg.APIKey))

	var profiles []dto.Profile
	if err := c.fetcher.GetJSON(ctx, "profile", u, &profiles); err != nil {
		return classentity.Classification{}, err
	}
	if len(profiles) == 0 {
		return classentity.Classification{}, sourceerr.NotFound(Name, "profile")
	}
	p := profiles[0]
	return classentity.Classification{
		Industry: strings.TrimSpace(p.Industry),
		Sector:   strings.TrimSpace(p.Sector),
		Source:   Name,
	}, nil
}
