package api

import (
	"encoding/json"
	"finflow/internal/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_explain(t *testing.T) {
	analysis := &domain.AnalysisResult{
		FeatureImportance: []domain.FeatureImportance{
			{FeatureName: "average weight", AssetName: "AAPL", ImportanceScore: 0.5},
		},
		ExplanationText: "Analysis mode: fast.",
	}

	t.Run("method is forwarded", func(t *testing.T) {
		stub := &stubAnalysisService{analysis: analysis}
		handler := ApiHandler{AnalysisService: stub}

		recorder := postJSON(t, handler.explain, `{"investment_amount": 1000, "method": "accurate"}`)
		require.Equal(t, 200, recorder.Code)
		require.Equal(t, "accurate", stub.lastMode)

		var response explainResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		require.Equal(t, "Analysis mode: fast.", response.ExplanationText)
	})

	t.Run("missing amount is a 400", func(t *testing.T) {
		handler := ApiHandler{AnalysisService: &stubAnalysisService{analysis: analysis}}
		recorder := postJSON(t, handler.explain, `{}`)
		require.Equal(t, 400, recorder.Code)
	})
}
