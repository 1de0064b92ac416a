package api

import (
	"bytes"
	"context"
	"encoding/json"
	"finflow/internal/domain"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type stubAnalysisService struct {
	analysis *domain.AnalysisResult
	err      error

	lastRisk string
	lastMode string
}

func (s *stubAnalysisService) GetAnalysis(ctx context.Context, amount float64, risk string, horizon int, mode string) (*domain.AnalysisResult, error) {
	s.lastRisk = risk
	s.lastMode = mode
	return s.analysis, s.err
}

func (s *stubAnalysisService) GetAnalysisByAllocation(allocation []domain.AllocationItem) *domain.AnalysisResult {
	return nil
}

func (s *stubAnalysisService) LastAnalysis() *domain.AnalysisResult {
	return s.analysis
}

func (s *stubAnalysisService) PerformanceHistory(analysis *domain.AnalysisResult, startDate, endDate string) []domain.PerformanceHistoryRow {
	return []domain.PerformanceHistoryRow{{Date: "2024-01-02", Portfolio: 0.01}}
}

func (s *stubAnalysisService) HealthStatus() domain.HealthStatus {
	return domain.HealthStatus{BundlePath: "irt_assets/test"}
}

func postJSON(t *testing.T, handler gin.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	handler(c)
	return recorder
}

func Test_predict(t *testing.T) {
	analysis := &domain.AnalysisResult{
		Allocation: []domain.AllocationItem{
			{Symbol: "AAPL", Weight: 0.6},
			{Symbol: domain.CashSymbol, Weight: 0.4},
		},
		Metrics: domain.FormattedMetrics{TotalReturn: 25.0, WinRate: 40.0},
	}

	t.Run("happy path", func(t *testing.T) {
		stub := &stubAnalysisService{analysis: analysis}
		handler := ApiHandler{AnalysisService: stub}

		recorder := postJSON(t, handler.predict, `{"investment_amount": 1000000, "risk_tolerance": "moderate"}`)
		require.Equal(t, 200, recorder.Code)

		var response predictResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		require.Len(t, response.Allocation, 2)
		require.InDelta(t, 25.0, response.Metrics.TotalReturn, 1e-9)

		// prediction always runs in fast mode
		require.Equal(t, domain.ModeFast, stub.lastMode)
	})

	t.Run("non-positive amount is a 400", func(t *testing.T) {
		handler := ApiHandler{AnalysisService: &stubAnalysisService{analysis: analysis}}

		recorder := postJSON(t, handler.predict, `{"investment_amount": 0}`)
		require.Equal(t, 400, recorder.Code)
	})

	t.Run("malformed body is a 400", func(t *testing.T) {
		handler := ApiHandler{AnalysisService: &stubAnalysisService{analysis: analysis}}

		recorder := postJSON(t, handler.predict, `{"investment_amount": "lots"}`)
		require.Equal(t, 400, recorder.Code)
	})

	t.Run("derivation failure is an opaque 500", func(t *testing.T) {
		stub := &stubAnalysisService{err: domain.ErrInternalDerivation}
		handler := ApiHandler{AnalysisService: stub}

		recorder := postJSON(t, handler.predict, `{"investment_amount": 1000}`)
		require.Equal(t, 500, recorder.Code)
		require.NotContains(t, recorder.Body.String(), "derivation")
	})
}
