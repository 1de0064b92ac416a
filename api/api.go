package api

import (
	"errors"
	"finflow/internal/domain"
	"finflow/internal/logger"
	"finflow/internal/metrics"
	"finflow/internal/service"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ApiHandler struct {
	AnalysisService service.AnalysisService
	MarketService   service.MarketService
	Collector       *metrics.Collector
	Logger          *zap.SugaredLogger
}

func (m ApiHandler) StartApi(port int, corsOrigins []string) error {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = corsOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"*"}
	router.Use(cors.New(corsConfig))
	router.Use(m.logRequestMiddleware)

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "FinFlow IRT inference server is running."})
	})
	router.GET("/health", m.health)
	if m.Collector != nil {
		router.GET("/metrics", gin.WrapH(m.Collector.Handler()))
	}
	router.POST("/predict", m.predict)
	router.POST("/explain", m.explain)
	router.POST("/historical-performance", m.historicalPerformance)
	router.POST("/correlation-analysis", m.correlationAnalysis)
	router.POST("/risk-return-analysis", m.riskReturnAnalysis)
	router.GET("/market-status", m.marketStatus)

	return router.Run(fmt.Sprintf(":%d", port))
}

// returnErrorJson maps the error taxonomy onto status codes: invalid
// requests surface as 400 with their message, everything else is an opaque
// 500 with the detail kept server-side.
func (m ApiHandler) returnErrorJson(err error, c *gin.Context, publicMessage string) {
	if errors.Is(err, domain.ErrInvalidRequest) {
		c.AbortWithStatusJSON(400, gin.H{"error": err.Error()})
		return
	}
	m.log().Errorf("%s: %s", publicMessage, err.Error())
	c.AbortWithStatusJSON(500, gin.H{"error": publicMessage})
}

func (m ApiHandler) log() *zap.SugaredLogger {
	if m.Logger != nil {
		return m.Logger
	}
	return zap.S()
}

func (m ApiHandler) logRequestMiddleware(ctx *gin.Context) {
	requestID := uuid.New()
	log := m.log().With("request_id", requestID.String())
	ctx.Set(logger.ContextKey, log)

	start := time.Now().UTC()
	ctx.Next()

	elapsed := time.Since(start)
	status := ctx.Writer.Status()
	m.Collector.ObserveRequest(
		ctx.Request.Method,
		ctx.Request.URL.Path,
		strconv.Itoa(status),
		elapsed.Seconds(),
	)
	log.Infow("request handled",
		"method", ctx.Request.Method,
		"route", ctx.Request.URL.Path,
		"status", status,
		"duration_ms", elapsed.Milliseconds(),
	)
}
