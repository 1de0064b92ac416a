package api

import (
	"encoding/json"
	"finflow/internal/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_historicalPerformance(t *testing.T) {
	t.Run("falls back to the last analysis", func(t *testing.T) {
		stub := &stubAnalysisService{analysis: &domain.AnalysisResult{}}
		handler := ApiHandler{AnalysisService: stub}

		recorder := postJSON(t, handler.historicalPerformance, `{"portfolio_allocation": [{"symbol": "AAPL", "weight": 1.0}]}`)
		require.Equal(t, 200, recorder.Code)

		var response historicalResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		require.Len(t, response.PerformanceHistory, 1)
		require.Equal(t, "2024-01-02", response.PerformanceHistory[0].Date)
	})
}
