package api

import (
	"context"

	"github.com/gin-gonic/gin"

	v1 "github.com/shiftledger/shiftledger/internal/api/v1"
	"github.com/shiftledger/shiftledger/internal/config"
	"github.com/shiftledger/shiftledger/internal/logger"
	"github.com/shiftledger/shiftledger/internal/types"
)

// Handlers aggregates the route handlers wired by fx
type Handlers struct {
	Health       *v1.HealthHandler
	Period       *v1.PeriodHandler
	ETL          *v1.ETLHandler
	Resubmission *v1.ResubmissionHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	if cfg.Deployment.Mode == types.ModeProd {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestMiddleware())

	router.GET("/health", handlers.Health.Health)

	group := router.Group("/v1")
	{
		group.POST("/periods/generate", handlers.Period.Generate)
		group.GET("/periods", handlers.Period.List)
		group.GET("/periods/resolve", handlers.Period.Resolve)

		group.POST("/etl/runs", handlers.ETL.Ingest)
		group.GET("/etl/runs", handlers.ETL.ListRuns)
		group.GET("/etl/runs/:id", handlers.ETL.GetRun)
		group.POST("/etl/ledger/refresh", handlers.ETL.RefreshLedger)

		group.POST("/resubmissions", handlers.Resubmission.Track)
	}

	return router
}

// requestMiddleware stamps each request with an id and operator identity so
// lineage columns are populated downstream
func requestMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ctx = context.WithValue(ctx, types.CtxRequestID, types.GenerateUUID())

		if userID := c.GetHeader("X-User-Id"); userID != "" {
			ctx = types.SetUserID(ctx, userID)
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
