package api

import (
	"finflow/internal/domain"
	"fmt"

	"github.com/gin-gonic/gin"
)

type predictRequest struct {
	InvestmentAmount  float64 `json:"investment_amount"`
	RiskTolerance     string  `json:"risk_tolerance"`
	InvestmentHorizon int     `json:"investment_horizon"`
}

type predictResponse struct {
	Allocation []domain.AllocationItem `json:"allocation"`
	Metrics    domain.FormattedMetrics `json:"metrics"`
}

func (m ApiHandler) predict(c *gin.Context) {
	requestBody := predictRequest{RiskTolerance: domain.RiskModerate, InvestmentHorizon: 12}
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
		domain.ModeFast,
	)
	if err != nil {
		m.returnErrorJson(err, c, "portfolio prediction failed")
		return
	}

	c.JSON(200, predictResponse{
		Allocation: analysis.Allocation,
		Metrics:    analysis.Metrics,
	})
}
