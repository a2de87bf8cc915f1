package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"github.com/shiftledger/shiftledger/internal/api"
	v1 "github.com/shiftledger/shiftledger/internal/api/v1"
	"github.com/shiftledger/shiftledger/internal/cache"
	"github.com/shiftledger/shiftledger/internal/clickhouse"
	"github.com/shiftledger/shiftledger/internal/config"
	"github.com/shiftledger/shiftledger/internal/logger"
	"github.com/shiftledger/shiftledger/internal/postgres"
	"github.com/shiftledger/shiftledger/internal/repository"
	"github.com/shiftledger/shiftledger/internal/sentry"
	"github.com/shiftledger/shiftledger/internal/service"
	"github.com/shiftledger/shiftledger/internal/source"
	"github.com/shiftledger/shiftledger/internal/validator"
)

func init() {
	// Load environment variables from .env if present
	_ = godotenv.Load()
}

func main() {
	fx.New(
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			postgres.NewDB,
			clickhouse.NewClickHouseStore,
			cache.NewInMemoryCache,
			sentry.NewSentryService,
			validator.NewValidator,

			repository.NewPeriodRepository,
			repository.NewDimensionRepository,
			repository.NewLedgerRepository,
			repository.NewReconciliationRepository,
			repository.NewResubmissionRepository,
			repository.NewDataQualityRepository,
			repository.NewBatchRunRepository,
			repository.NewShiftRepository,

			newSchedulingSource,
			newLedgerSource,

			service.NewServiceParams,
			service.NewPeriodService,
			service.NewDimensionService,
			newDataQualityService,
			service.NewReconciliationService,
			service.NewFactLoaderService,
			service.NewIngestionService,
			service.NewResubmissionService,
			service.NewBatchRunService,

			v1.NewHealthHandler,
			v1.NewPeriodHandler,
			v1.NewETLHandler,
			v1.NewResubmissionHandler,
			newHandlers,
			api.NewRouter,
		),
		fx.Invoke(startServer),
	).Run()
}

func newSchedulingSource(cfg *config.Configuration) source.SchedulingSource {
	return source.NewFileSource(cfg.Source.Dir)
}

func newLedgerSource(cfg *config.Configuration) source.LedgerSource {
	return source.NewFileLedgerSource(cfg.Source.Dir)
}

func newDataQualityService(params service.ServiceParams) service.DataQualityService {
	return service.NewDataQualityService(params.DataQualityRepo, params.Logger)
}

func newHandlers(
	health *v1.HealthHandler,
	period *v1.PeriodHandler,
	etl *v1.ETLHandler,
	resubmission *v1.ResubmissionHandler,
) api.Handlers {
	return api.Handlers{
		Health:       health,
		Period:       period,
		ETL:          etl,
		Resubmission: resubmission,
	}
}

func startServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
	db *postgres.DB,
	store *clickhouse.ClickHouseStore,
	sentryService *sentry.Service,
) {
	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting server", "address", cfg.Server.Address)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalw("server failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("shutting down server")
			if err := server.Shutdown(ctx); err != nil {
				log.Errorw("server shutdown failed", "error", err)
			}
			db.Close()
			if err := store.Close(); err != nil {
				log.Errorw("clickhouse close failed", "error", err)
			}
			sentryService.Flush()
			return nil
		},
	})
}
