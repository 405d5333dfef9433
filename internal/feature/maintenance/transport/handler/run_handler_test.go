package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/boatjones/quant-lab/internal/feature/maintenance/domain/entity"
	"github.com/boatjones/quant-lab/internal/feature/maintenance/usecase"
)

type mockReportUsecase struct {
	LatestReportFunc func(ctx context.Context) (entity.Report, error)
}

func (m *mockReportUsecase) LatestReport(ctx context.Context) (entity.Report, error) {
	return m.LatestReportFunc(ctx)
}

func TestRunHandler_Latest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ok := func(context.Context) (entity.Report, error) {
		return entity.Report{RunID: "run-1", Status: entity.StatusSuccess}, nil
	}

	tests := []struct {
		name           string
		query          string
		fn             func(ctx context.Context) (entity.Report, error)
		expectedStatus int
		contains       string
	}{
		{name: "json report", fn: ok, expectedStatus: http.StatusOK, contains: `"run_id":"run-1"`},
		{name: "text report", query: "?format=text", fn: ok, expectedStatus: http.StatusOK, contains: "=== Maintenance report run-1 ==="},
		{
			name:           "no runs yet",
			fn:             func(context.Context) (entity.Report, error) { return entity.Report{}, usecase.ErrNoRuns },
			expectedStatus: http.StatusNotFound,
			contains:       "no maintenance runs recorded",
		},
		{
			name:           "store failure",
			fn:             func(context.Context) (entity.Report, error) { return entity.Report{}, errors.New("db down") },
			expectedStatus: http.StatusInternalServerError,
			contains:       "db down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/runs/latest", NewRunHandler(&mockReportUsecase{LatestReportFunc: tt.fn}).Latest)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/runs/latest"+tt.query, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.contains)
		})
	}
}
