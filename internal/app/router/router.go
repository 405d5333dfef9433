// Package router builds the gin engine for cmd/server.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	mainthandler "github.com/boatjones/quant-lab/internal/feature/maintenance/transport/handler"
	pricehandler "github.com/boatjones/quant-lab/internal/feature/prices/transport/handler"
	symbolhandler "github.com/boatjones/quant-lab/internal/feature/symbols/transport/handler"
	platformhandler "github.com/boatjones/quant-lab/internal/platform/http/handler"
)

// Handlers groups every HTTP handler the server exposes.
type Handlers struct {
	Health  *platformhandler.HealthHandler
	Symbols *symbolhandler.SymbolHandler
	Prices  *pricehandler.PriceHandler
	Runs    *mainthandler.RunHandler
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

// NewRouter registers the read API. Every endpoint is read-only; runs are triggered by
// cmd/maintain or the server's own schedule.
func NewRouter(h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// 導通確認用
	r.GET("/healthz", h.Health.Health)
	r.HEAD("/healthz", h.Health.Health)
	r.OPTIONS("/healthz", h.Health.Health)

	r.GET("/symbols", h.Symbols.List)
	r.GET("/prices/:ticker", h.Prices.GetPrices)
	r.GET("/runs/latest", h.Runs.Latest)

	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics))
	}
	return r
}
