package service

import (
	"github.com/shiftledger/shiftledger/internal/cache"
	"github.com/shiftledger/shiftledger/internal/config"
	"github.com/shiftledger/shiftledger/internal/testutil"
)

// testStores bundles the in-memory stores behind a ServiceParams for
// service-level tests
type testStores struct {
	periods       *testutil.InMemoryPeriodStore
	dimensions    *testutil.InMemoryDimensionStore
	ledger        *testutil.InMemoryLedgerStore
	audits        *testutil.InMemoryAuditStore
	shifts        *testutil.InMemoryShiftStore
	resubmissions *testutil.InMemoryResubmissionStore
	dataQuality   *testutil.InMemoryDataQualityStore
	batchRuns     *testutil.InMemoryBatchRunStore

	scheduling *testutil.FakeSchedulingSource
	feed       *testutil.FakeLedgerSource
}

func newTestStores() *testStores {
	return &testStores{
		periods:       testutil.NewInMemoryPeriodStore(),
		dimensions:    testutil.NewInMemoryDimensionStore(),
		ledger:        testutil.NewInMemoryLedgerStore(),
		audits:        testutil.NewInMemoryAuditStore(),
		shifts:        testutil.NewInMemoryShiftStore(),
		resubmissions: testutil.NewInMemoryResubmissionStore(),
		dataQuality:   testutil.NewInMemoryDataQualityStore(),
		batchRuns:     testutil.NewInMemoryBatchRunStore(),
		scheduling:    testutil.NewFakeSchedulingSource(),
		feed:          testutil.NewFakeLedgerSource(),
	}
}

func newTestParams(stores *testStores) ServiceParams {
	cfg := config.GetDefaultConfig()
	return ServiceParams{
		Logger:           testutil.GetLogger(),
		Config:           cfg,
		DB:               testutil.NewPassthroughTxRunner(),
		Cache:            cache.NewInMemoryCache(cfg),
		PeriodRepo:       stores.periods,
		DimensionRepo:    stores.dimensions,
		LedgerRepo:       stores.ledger,
		AuditRepo:        stores.audits,
		ShiftRepo:        stores.shifts,
		ResubmissionRepo: stores.resubmissions,
		DataQualityRepo:  stores.dataQuality,
		BatchRunRepo:     stores.batchRuns,
		SchedulingSource: stores.scheduling,
		LedgerSource:     stores.feed,
	}
}
