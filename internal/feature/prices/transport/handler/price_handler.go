// Package handler はpricesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/boatjones/quant-lab/internal/feature/prices/domain/entity"
	"github.com/boatjones/quant-lab/internal/feature/prices/transport/http/dto"
)

// PriceUsecase は日足データ取得のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type PriceUsecase interface {
	GetPrices(ctx context.Context, ticker string, limit int) ([]entity.PriceBar, error)
}

// PriceHandler は日足データのHTTPリクエストを処理します。
type PriceHandler struct {
	uc PriceUsecase
}

// NewPriceHandler は指定されたusecaseでPriceHandlerの新しいインスタンスを生成します。
func NewPriceHandler(uc PriceUsecase) *PriceHandler {
	return &PriceHandler{uc: uc}
}

// GetPrices は銘柄コードを受け取り、本番の日足を新しい順にJSONで返します。
//
// エンドポイント例:
// GET /prices/:ticker?limit=30
func (h *PriceHandler) GetPrices(c *gin.Context) {
	ticker := strings.ToUpper(strings.TrimSpace(c.Param("ticker")))
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "30"))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}

	bars, err := h.uc.GetPrices(c.Request.Context(), ticker, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]dto.PriceBarResponse, 0, len(bars))
	for _, b := range bars {
		out = append(out, dto.PriceBarResponse{
			Date:       b.TradeDate.UTC().Format("2006-01-02"),
			Open:       b.Open,
			High:       b.High,
			Low:        b.Low,
			Close:      b.Close,
			CloseUnadj: b.CloseUnadj,
			Volume:     b.Volume,
			Dividend:   b.Dividend,
			Split:      b.Split,
		})
	}
	c.JSON(http.StatusOK, out)
}
