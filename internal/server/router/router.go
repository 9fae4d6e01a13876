package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mamadbah2/harvestguard/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(webhook *handlers.WebhookHandler, api *handlers.APIHandler, logger *zap.Logger) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/webhook", webhook.Verify)
	r.POST("/webhook", webhook.Receive)
	r.POST("/send-message", webhook.SendMessage)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/advisory/evaluate", api.EvaluateAdvisory)
		v1.POST("/loss/estimate", api.EstimateLoss)
		v1.POST("/ledger/summary", api.LedgerSummary)
		v1.GET("/regions/:locationID/risk", api.RegionalRisk)

		farmers := v1.Group("/farmers/:farmerID")
		farmers.PUT("", api.UpsertFarmer)
		farmers.POST("/session", api.StartSession)
		farmers.GET("/dashboard", api.Dashboard)
		farmers.POST("/transactions", api.RecordTransaction)
		farmers.DELETE("/transactions/:txID", api.RemoveTransaction)
		farmers.POST("/batches", api.RegisterBatch)
	}

	if logger != nil {
		logger.Info("router initialized", zap.Int("routes", len(r.Routes())))
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("request completed", fields...)
			return
		}
		logger.Info("request completed", fields...)
	}
}
