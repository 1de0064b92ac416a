package api

import (
	"finflow/internal/domain"

	"github.com/gin-gonic/gin"
)

type marketStatusResponse struct {
	MarketData  []domain.MarketQuote `json:"market_data"`
	LastUpdated string               `json:"last_updated"`
}

func (m ApiHandler) marketStatus(c *gin.Context) {
	quotes, lastUpdated := m.MarketService.GetMarketStatus(c)
	c.JSON(200, marketStatusResponse{
		MarketData:  quotes,
		LastUpdated: lastUpdated,
	})
}
