package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/shiftledger/shiftledger/internal/cache"
	"github.com/shiftledger/shiftledger/internal/clickhouse"
	"github.com/shiftledger/shiftledger/internal/config"
	"github.com/shiftledger/shiftledger/internal/logger"
	"github.com/shiftledger/shiftledger/internal/postgres"
	"github.com/shiftledger/shiftledger/internal/repository"
	"github.com/shiftledger/shiftledger/internal/sentry"
	"github.com/shiftledger/shiftledger/internal/service"
	"github.com/shiftledger/shiftledger/internal/source"
	"github.com/shiftledger/shiftledger/internal/types"
)

const usage = `usage: etl <command> [flags]

commands:
  generate-periods  -start YYYY-MM-DD            generate billing periods for a fiscal year
  run               -regions a,b -start -end     ingest a date window for regions
  refresh-ledger                                 reload the submission ledger feed
`

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	command := os.Args[1]
	args := os.Args[2:]

	app, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init: %v\n", err)
		os.Exit(1)
	}
	defer app.close()

	// Runs abort between subwindows on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = types.SetUserID(ctx, types.DefaultUserID)

	switch command {
	case "generate-periods":
		err = app.generatePeriods(ctx, args)
	case "run":
		err = app.run(ctx, args)
	case "refresh-ledger":
		err = app.refreshLedger(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		app.log.Errorw("command failed", "command", command, "error", err)
		os.Exit(1)
	}
}

type app struct {
	log    *logger.Logger
	db     *postgres.DB
	store  *clickhouse.ClickHouseStore
	sentry *sentry.Service

	periods   service.PeriodService
	ingestion service.IngestionService
}

func newApp() (*app, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	db, err := postgres.NewDB(cfg, log)
	if err != nil {
		return nil, err
	}
	store, err := clickhouse.NewClickHouseStore(cfg)
	if err != nil {
		return nil, err
	}
	sentryService, err := sentry.NewSentryService(cfg, log)
	if err != nil {
		return nil, err
	}

	params := service.NewServiceParams(
		log, cfg, db,
		cache.NewInMemoryCache(cfg),
		sentryService,
		repository.NewPeriodRepository(db, log),
		repository.NewDimensionRepository(db, log),
		repository.NewLedgerRepository(db, log),
		repository.NewReconciliationRepository(db, log),
		repository.NewShiftRepository(store, log),
		repository.NewResubmissionRepository(db, log),
		repository.NewDataQualityRepository(db, log),
		repository.NewBatchRunRepository(db, log),
		source.NewFileSource(cfg.Source.Dir),
		source.NewFileLedgerSource(cfg.Source.Dir),
	)

	dataQuality := service.NewDataQualityService(params.DataQualityRepo, log)
	reconciliation, err := service.NewReconciliationService(params)
	if err != nil {
		return nil, err
	}
	periods := service.NewPeriodService(params)
	dimensions := service.NewDimensionService(params)
	factLoader := service.NewFactLoaderService(params, periods, dimensions, dataQuality)

	return &app{
		log:       log,
		db:        db,
		store:     store,
		sentry:    sentryService,
		periods:   periods,
		ingestion: service.NewIngestionService(params, reconciliation, factLoader, dataQuality),
	}, nil
}

func (a *app) close() {
	a.db.Close()
	if err := a.store.Close(); err != nil {
		a.log.Errorw("clickhouse close failed", "error", err)
	}
	a.sentry.Flush()
}

func (a *app) generatePeriods(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generate-periods", flag.ExitOnError)
	start := fs.String("start", "", "fiscal year start date, YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *start == "" {
		return fmt.Errorf("-start is required")
	}

	startDate, err := time.ParseInLocation(time.DateOnly, *start, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}

	result, err := a.periods.GeneratePeriods(ctx, startDate)
	if err != nil {
		return err
	}

	fmt.Printf("fiscal year %d: %d periods created, %d already existed\n",
		result.FiscalYear, result.Created, len(result.Periods)-result.Created)
	return nil
}

func (a *app) run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	regions := fs.String("regions", "", "comma-separated region codes")
	start := fs.String("start", "", "window start date, YYYY-MM-DD")
	end := fs.String("end", "", "window end date, YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *regions == "" || *start == "" || *end == "" {
		return fmt.Errorf("-regions, -start and -end are required")
	}

	startDate, err := time.ParseInLocation(time.DateOnly, *start, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}
	endDate, err := time.ParseInLocation(time.DateOnly, *end, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid -end: %w", err)
	}

	window := types.NewDateRange(startDate, endDate)
	runs, err := a.ingestion.Run(ctx, strings.Split(*regions, ","), window)

	for _, run := range runs {
		fmt.Printf("%s %s [%s]: inserted=%d rejected=%d duplicates=%d overwritten=%d skipped=%d\n",
			run.Region, run.ID, run.State,
			run.Inserted, run.Rejected, run.Duplicates, run.Overwritten, run.Skipped)
	}
	return err
}

func (a *app) refreshLedger(ctx context.Context) error {
	result, err := a.ingestion.RefreshLedger(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("ledger refreshed: %d entries, %d building mappings, %d position mappings\n",
		result.LedgerEntries, result.BuildingMappings, result.PositionMappings)
	return nil
}
