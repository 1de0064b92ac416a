package api

import (
	"finflow/internal/domain"
	"fmt"

	"github.com/gin-gonic/gin"
)

type explainRequest struct {
	InvestmentAmount  float64 `json:"investment_amount"`
	RiskTolerance     string  `json:"risk_tolerance"`
	InvestmentHorizon int     `json:"investment_horizon"`
	Method            string  `json:"method"`
}

type explainResponse struct {
	FeatureImportance []domain.FeatureImportance `json:"feature_importance"`
	AttentionWeights  []domain.AttentionWeight   `json:"attention_weights"`
	ExplanationText   string                     `json:"explanation_text"`
}

func (m ApiHandler) explain(c *gin.Context) {
	requestBody := explainRequest{
		RiskTolerance:     domain.RiskModerate,
		InvestmentHorizon: 12,
		Method:            domain.ModeFast,
	}
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		m.returnErrorJson(fmt.Errorf("%w: failed to read request body: %s", domain.ErrInvalidRequest, err.Error()), c, "")
		return
	}
	if requestBody.InvestmentAmount <= 0 {
		m.returnErrorJson(fmt.Errorf("%w: investment amount must be positive", domain.ErrInvalidRequest), c, "")
		return
	}

	analysis, err := m.AnalysisService.GetAnalysis(
		c,
		requestBody.InvestmentAmount,
		requestBody.RiskTolerance,
		requestBody.InvestmentHorizon,
		requestBody.Method,
	)
	if err != nil {
		m.returnErrorJson(err, c, "explainability analysis failed")
		return
	}

	c.JSON(200, explainResponse{
		FeatureImportance: analysis.FeatureImportance,
		AttentionWeights:  analysis.AttentionWeights,
		ExplanationText:   analysis.ExplanationText,
	})
}
