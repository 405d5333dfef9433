// Package di provides dependency injection factories for creating application components.
package di

import (
	"fmt"

	"github.com/boatjones/quant-lab/internal/app/config"
	classusecase "github.com/boatjones/quant-lab/internal/feature/classification/usecase"
	priceusecase "github.com/boatjones/quant-lab/internal/feature/prices/usecase"
	symbolusecase "github.com/boatjones/quant-lab/internal/feature/symbols/usecase"
	"github.com/boatjones/quant-lab/internal/platform/externalapi/fmp"
	"github.com/boatjones/quant-lab/internal/platform/externalapi/tiingo"
	"github.com/boatjones/quant-lab/internal/platform/externalapi/twelvedata"
	infrahttp "github.com/boatjones/quant-lab/internal/platform/http"
	"github.com/boatjones/quant-lab/internal/shared/ratelimiter"
)

// Providers holds one client per provider. Each client owns the only rate limiter for
// that provider, so every stage calling it shares the same budget.
type Providers struct {
	Tiingo     *tiingo.Client
	FMP        *fmp.Client
	TwelveData *twelvedata.TwelveDataMarket
}

// NewProviders creates fully configured provider clients with their HTTP clients and limiters.
func NewProviders(cfg *config.Config) *Providers {
	return &Providers{
		Tiingo: tiingo.NewClient(cfg.Tiingo,
			infrahttp.NewHTTPClient(cfg.Tiingo.Timeout),
			ratelimiter.NewRateLimiter(tiingo.Name, cfg.Tiingo.CallsPerMinute)),
		FMP: fmp.NewClient(cfg.FMP,
			infrahttp.NewHTTPClient(cfg.FMP.Timeout),
			ratelimiter.NewRateLimiter(fmp.Name, cfg.FMP.CallsPerMinute)),
		TwelveData: twelvedata.NewTwelveDataMarket(cfg.TwelveData,
			infrahttp.NewHTTPClient(cfg.TwelveData.Timeout),
			ratelimiter.NewRateLimiter(twelvedata.Name, cfg.TwelveData.CallsPerMinute)),
	}
}

// UniverseSources returns the universe providers in the configured order.
func (p *Providers) UniverseSources(names []string) ([]symbolusecase.UniverseSource, error) {
	out := make([]symbolusecase.UniverseSource, 0, len(names))
	for _, n := range names {
		switch n {
		case config.ProviderTiingo:
			out = append(out, p.Tiingo)
		case config.ProviderFMP:
			out = append(out, p.FMP)
		default:
			return nil, fmt.Errorf("unsupported universe source %q", n)
		}
	}
	return out, nil
}

// ProfileSources returns the classification chain in the configured order.
func (p *Providers) ProfileSources(names []string) ([]classusecase.ProfileSource, error) {
	out := make([]classusecase.ProfileSource, 0, len(names))
	for _, n := range names {
		switch n {
		case config.ProviderFMP:
			out = append(out, p.FMP)
		case config.ProviderTwelveData:
			out = append(out, p.TwelveData)
		default:
			return nil, fmt.Errorf("unsupported classification source %q", n)
		}
	}
	return out, nil
}

// PriceSource returns the configured daily price provider.
func (p *Providers) PriceSource(name string) (priceusecase.PriceSource, error) {
	switch name {
	case config.ProviderTiingo:
		return p.Tiingo, nil
	case config.ProviderTwelveData:
		return p.TwelveData, nil
	}
	return nil, fmt.Errorf("unsupported price source %q", name)
}
