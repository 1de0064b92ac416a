package api

import (
	"finflow/internal/domain"
	"fmt"

	"github.com/gin-gonic/gin"
)

type correlationRequest struct {
	Tickers []string `json:"tickers"`
	Period  string   `json:"period"`
}

type correlationResponse struct {
	CorrelationData []domain.CorrelationPair `json:"correlation_data"`
}

func (m ApiHandler) correlationAnalysis(c *gin.Context) {
	requestBody := correlationRequest{Period: "1y"}
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		m.returnErrorJson(fmt.Errorf("%w: failed to read request body: %s", domain.ErrInvalidRequest, err.Error()), c, "")
		return
	}
	if len(requestBody.Tickers) == 0 {
		m.returnErrorJson(fmt.Errorf("%w: tickers must not be empty", domain.ErrInvalidRequest), c, "")
		return
	}

	data := m.MarketService.CalculateCorrelation(c, requestBody.Tickers, requestBody.Period)
	c.JSON(200, correlationResponse{CorrelationData: data})
}
