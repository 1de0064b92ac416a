package api

import (
	"finflow/internal/domain"
	"fmt"

	"github.com/gin-gonic/gin"
)

type riskReturnRequest struct {
	PortfolioAllocation []domain.AllocationItem `json:"portfolio_allocation"`
	Period              string                  `json:"period"`
}

type riskReturnResponse struct {
	RiskReturnData []domain.RiskReturnPoint `json:"risk_return_data"`
}

func (m ApiHandler) riskReturnAnalysis(c *gin.Context) {
	requestBody := riskReturnRequest{Period: "1y"}
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		m.returnErrorJson(fmt.Errorf("%w: failed to read request body: %s", domain.ErrInvalidRequest, err.Error()), c, "")
		return
	}

	data := m.MarketService.CalculateRiskReturn(c, requestBody.PortfolioAllocation, requestBody.Period)
	c.JSON(200, riskReturnResponse{RiskReturnData: data})
}
