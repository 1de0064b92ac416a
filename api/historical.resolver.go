package api

import (
	"finflow/internal/domain"
	"fmt"

	"github.com/gin-gonic/gin"
)

// fallback parameters when a historical request references an allocation the
// engine has never produced and there is no prior analysis at all
const (
	fallbackAmount  = 1_000_000
	fallbackHorizon = 12
)

type historicalRequest struct {
	PortfolioAllocation []domain.AllocationItem `json:"portfolio_allocation"`
	StartDate           string                  `json:"start_date"`
	EndDate             string                  `json:"end_date"`
}

type historicalResponse struct {
	PerformanceHistory []domain.PerformanceHistoryRow `json:"performance_history"`
}

func (m ApiHandler) historicalPerformance(c *gin.Context) {
	var requestBody historicalRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		m.returnErrorJson(fmt.Errorf("%w: failed to read request body: %s", domain.ErrInvalidRequest, err.Error()), c, "")
		return
	}

	analysis := m.AnalysisService.GetAnalysisByAllocation(requestBody.PortfolioAllocation)
	if analysis == nil {
		analysis = m.AnalysisService.LastAnalysis()
	}
	if analysis == nil {
		var err error
		analysis, err = m.AnalysisService.GetAnalysis(c, fallbackAmount, domain.RiskModerate, fallbackHorizon, domain.ModeFast)
		if err != nil {
			m.returnErrorJson(err, c, "performance history lookup failed")
			return
		}
	}

	history := m.AnalysisService.PerformanceHistory(analysis, requestBody.StartDate, requestBody.EndDate)
	c.JSON(200, historicalResponse{PerformanceHistory: history})
}
