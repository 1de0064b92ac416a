package api

import (
	"github.com/gin-gonic/gin"
)

func (m ApiHandler) health(c *gin.Context) {
	status := m.AnalysisService.HealthStatus()
	c.JSON(200, gin.H{
		"status":            "ok",
		"bundle_path":       status.BundlePath,
		"cached_runs":       status.CachedRuns,
		"last_params":       status.LastParams,
		"precomputed_steps": status.PrecomputedSteps,
	})
}
