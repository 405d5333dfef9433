// Package handler はmaintenanceフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/boatjones/quant-lab/internal/feature/maintenance/domain/entity"
	"github.com/boatjones/quant-lab/internal/feature/maintenance/usecase"
)

// ReportUsecase は実行レポート取得のユースケースインターフェースです。
type ReportUsecase interface {
	LatestReport(ctx context.Context) (entity.Report, error)
}

// RunHandler はメンテナンス実行レポートのHTTPリクエストを処理します。
type RunHandler struct {
	uc ReportUsecase
}

// NewRunHandler は新しい RunHandler を作成します。
func NewRunHandler(uc ReportUsecase) *RunHandler {
	return &RunHandler{uc: uc}
}

// Latest は直近の実行レポートを返します。?format=text ならテキストで返します。
func (h *RunHandler) Latest(c *gin.Context) {
	rep, err := h.uc.LatestReport(c.Request.Context())
	if errors.Is(err, usecase.ErrNoRuns) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if c.Query("format") == "text" {
		c.String(http.StatusOK, rep.Render())
		return
	}
	c.JSON(http.StatusOK, rep)
}
