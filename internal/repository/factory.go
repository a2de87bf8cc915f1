package repository

import (
	"github.com/shiftledger/shiftledger/internal/clickhouse"
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
	chRepo "github.com/shiftledger/shiftledger/internal/repository/clickhouse"
	pgRepo "github.com/shiftledger/shiftledger/internal/repository/postgres"
)

// Reference data and tracking state live in Postgres; the high-volume fact
// store lives in ClickHouse.

func NewPeriodRepository(db *postgres.DB, logger *logger.Logger) period.Repository {
	return pgRepo.NewPeriodRepository(db, logger)
}

func NewDimensionRepository(db *postgres.DB, logger *logger.Logger) dimension.Repository {
	return pgRepo.NewDimensionRepository(db, logger)
}

func NewLedgerRepository(db *postgres.DB, logger *logger.Logger) ledger.Repository {
	return pgRepo.NewLedgerRepository(db, logger)
}

func NewReconciliationRepository(db *postgres.DB, logger *logger.Logger) reconciliation.Repository {
	return pgRepo.NewReconciliationRepository(db, logger)
}

func NewResubmissionRepository(db *postgres.DB, logger *logger.Logger) resubmission.Repository {
	return pgRepo.NewResubmissionRepository(db, logger)
}

func NewDataQualityRepository(db *postgres.DB, logger *logger.Logger) dataquality.Repository {
	return pgRepo.NewDataQualityRepository(db, logger)
}

func NewBatchRunRepository(db *postgres.DB, logger *logger.Logger) batchrun.Repository {
	return pgRepo.NewBatchRunRepository(db, logger)
}

func NewShiftRepository(store *clickhouse.ClickHouseStore, logger *logger.Logger) shift.Repository {
	return chRepo.NewShiftRepository(store, logger)
}
