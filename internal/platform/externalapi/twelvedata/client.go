package twelvedata

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	classentity "github.com/boatjones/quant-lab/internal/feature/classification/domain/entity"
	classusecase "github.com/boatjones/quant-lab/internal/feature/classification/usecase"
	priceentity "github.com/boatjones/quant-lab/internal/feature/prices/domain/entity"
	priceusecase "github.com/boatjones/quant-lab/internal/feature/prices/usecase"
	"github.com/boatjones/quant-lab/internal/platform/externalapi"
	"github.com/boatjones/quant-lab/internal/platform/externalapi/twelvedata/dto"
	"github.com/boatjones/quant-lab/internal/shared/ratelimiter"
	"github.com/boatjones/quant-lab/internal/shared/sourceerr"
)

// Name is the provider name used in logs and errors.
const Name = "twelvedata"

// TwelveDataMarket はTwelve Data外部APIから日足と企業プロファイルを取得します。
type TwelveDataMarket struct {
	cfg     Config
	fetcher *externalapi.Fetcher
}

// TwelveDataMarketがPriceSourceとProfileSourceを実装していることをコンパイル時に検証します。
var (
	_ priceusecase.PriceSource   = (*TwelveDataMarket)(nil)
	_ classusecase.ProfileSource = (*TwelveDataMarket)(nil)
)

// NewTwelveDataMarket は指定された設定・HTTPクライアント・レートリミッターでTwelveDataMarketの新しいインスタンスを生成します。
func NewTwelveDataMarket(cfg Config, client *http.Client, limiter ratelimiter.RateLimiterInterface) *TwelveDataMarket {
	return &TwelveDataMarket{cfg: cfg, fetcher: externalapi.NewFetcher(Name, client, limiter, nil)}
}

func (t *TwelveDataMarket) Name() string {
	return Name
}

// GetDailyPrices はTwelve Data APIから r の範囲の日足を取得します。
// end_date は排他的なため1日延ばして要求し、範囲外の行は捨てます。
func (t *TwelveDataMarket) GetDailyPrices(ctx context.Context, ticker string, r priceentity.DateRange) ([]priceentity.RawBar, error) {
	q := url.Values{}
	// クエリパラメータを追加
	q.Set("symbol", ticker)
	q.Set("interval", "1day")
	q.Set("start_date", r.Start.Format(time.DateOnly))
	q.Set("end_date", r.End.AddDate(0, 0, 1).Format(time.DateOnly))
	q.Set("order", "ASC")
	q.Set("outputsize", "5000")
	q.Set("apikey", t.cfg.TwelveDataAPIKey)

	var body dto.TimeSeriesResponse
	if err := t.fetcher.GetJSON(ctx, "time_series", fmt.Sprintf("%s/time_series?%s", t.cfg.BaseURL, q.Encode()), &body); err != nil {
		return nil, err
	}
	if err := statusError("time_series", body.ErrorFields); err != nil {
		return nil, err
	}

	bars := make([]priceentity.RawBar, 0, len(body.Values))
	for _, v := range body.Values {
		// タイムスタンプをパース
		tm, err := time.Parse("2006-01-02 15:04:05", v.Datetime)
		if err != nil {
			tm, err = time.Parse("2006-01-02", v.Datetime)
			if err != nil {
				slog.Debug("unparseable twelvedata datetime", "ticker", ticker, "datetime", v.Datetime)
			}
		}
		if !tm.IsZero() && (tm.Before(r.Start) || tm.After(r.End)) {
			continue
		}
		// 解析できない値は nil のまま残し、正規化で落とします
		bars = append(bars, priceentity.RawBar{
			Date:   tm,
			Open:   parseFloat(v.Open),
			High:   parseFloat(v.High),
			Low:    parseFloat(v.Low),
			Close:  parseFloat(v.Close),
			Volume: parseFloat(v.Volume),
		})
	}
	return bars, nil
}

// GetClassification は profile エンドポイントから industry と sector を取得します。
func (t *TwelveDataMarket) GetClassification(ctx context.Context, ticker string) (classentity.Classification, error) {
	q := url.Values{}
	q.Set("symbol", ticker)
	q.Set("apikey", t.cfg.TwelveDataAPIKey)

	var body dto.ProfileResponse
	if err := t.fetcher.GetJSON(ctx, "profile", fmt.Sprintf("%s/profile?%s", t.cfg.BaseURL, q.Encode()), &body); err != nil {
		return classentity.Classification{}, err
	}
	if err := statusError("profile", body.ErrorFields); err != nil {
		return classentity.Classification{}, err
	}
	return classentity.Classification{
		Industry: strings.TrimSpace(body.Industry),
		Sector:   strings.TrimSpace(body.Sector),
		Source:   Name,
	}, nil
}

// statusError maps an in-body error. 400 and 404 mean the symbol or range has no data.
func statusError(op string, f dto.ErrorFields) error {
	if f.Status != "error" {
		return nil
	}
	if f.Code == http.StatusBadRequest || f.Code == http.StatusNotFound {
		return sourceerr.NotFound(Name, op)
	}
	return sourceerr.FromStatus(Name, op, f.Code, f.Message)
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
