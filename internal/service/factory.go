package service

import (
	"github.com/shiftledger/shiftledger/internal/cache"
	"github.com/shiftledger/shiftledger/internal/config"
	"github.com/shiftledger/shiftledger/internal/domain/batchrun"
	"github.com/shiftledger/shiftledger/internal/domain/dataquality"
	"github.com/shiftledger/shiftledger/internal/domain/dimension"
	"github.com/shiftledger/shiftledger/internal/domain/ledger"
	"github.com/shiftledger/shiftledger/internal/domain/period"
	"github.com/shiftledger/shiftledger/internal/domain/reconciliation"
	"github.com/shiftledger/shiftledger/internal/domain/resubmission"
	"github.com/shiftledger/shiftledger/internal/domain/shift"
	"github.com/shiftledger/shiftledger/internal/logger"
	"github.com/shiftledger/shiftledger/internal/postgres"
	"github.com/shiftledger/shiftledger/internal/sentry"
	"github.com/shiftledger/shiftledger/internal/source"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.TxRunner
	Cache  cache.Cache
	Sentry *sentry.Service

	// Repositories
	PeriodRepo       period.Repository
	DimensionRepo    dimension.Repository
	LedgerRepo       ledger.Repository
	AuditRepo        reconciliation.Repository
	ShiftRepo        shift.Repository
	ResubmissionRepo resubmission.Repository
	DataQualityRepo  dataquality.Repository
	BatchRunRepo     batchrun.Repository

	// Collaborators (out-of-scope clients behind their boundary contracts)
	SchedulingSource source.SchedulingSource
	LedgerSource     source.LedgerSource
}

// NewServiceParams assembles the shared dependency set for fx
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db *postgres.DB,
	cache cache.Cache,
	sentry *sentry.Service,
	periodRepo period.Repository,
	dimensionRepo dimension.Repository,
	ledgerRepo ledger.Repository,
	auditRepo reconciliation.Repository,
	shiftRepo shift.Repository,
	resubmissionRepo resubmission.Repository,
	dataQualityRepo dataquality.Repository,
	batchRunRepo batchrun.Repository,
	schedulingSource source.SchedulingSource,
	ledgerSource source.LedgerSource,
) ServiceParams {
	return ServiceParams{
		Logger:           logger,
		Config:           config,
		DB:               db,
		Cache:            cache,
		Sentry:           sentry,
		PeriodRepo:       periodRepo,
		DimensionRepo:    dimensionRepo,
		LedgerRepo:       ledgerRepo,
		AuditRepo:        auditRepo,
		ShiftRepo:        shiftRepo,
		ResubmissionRepo: resubmissionRepo,
		DataQualityRepo:  dataQualityRepo,
		BatchRunRepo:     batchRunRepo,
		SchedulingSource: schedulingSource,
		LedgerSource:     ledgerSource,
	}
}
