package clickhouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/shiftledger/shiftledger/internal/clickhouse"
	"github.com/shiftledger/shiftledger/internal/domain/shift"
	ierr "github.com/shiftledger/shiftledger/internal/errors"
	"github.com/shiftledger/shiftledger/internal/logger"
)

const insertChunkSize = 100

// shiftRepository is the period-partitioned fact store. The table is a
// ReplacingMergeTree keyed by (period_id, source_shift_id) and versioned by
// ingested_at, so an overwrite is just an insert of a newer version; reads
// use FINAL to see exactly one row per key.
type shiftRepository struct {
	store  *clickhouse.ClickHouseStore
	logger *logger.Logger
}

func NewShiftRepository(store *clickhouse.ClickHouseStore, logger *logger.Logger) shift.Repository {
	return &shiftRepository{store: store, logger: logger}
}

const insertQuery = `
	INSERT INTO shift_facts (
		period_id, source_shift_id, date, region,
		employee_key, position_code, client_id,
		employee_sk, position_sk, client_sk,
		scheduled_hours, worked_hours, approved_hours,
		billable_hours, payable_hours,
		bill_rate, pay_rate, billable_amount, payable_amount,
		locked, batch_id, raw_payload, ingested_at
	)`

func (r *shiftRepository) BulkInsert(ctx context.Context, facts []*shift.Fact) error {
	if len(facts) == 0 {
		return nil
	}

	for _, chunk := range lo.Chunk(facts, insertChunkSize) {
		if err := r.insertChunk(ctx, chunk); err != nil {
			return err
		}
	}

	r.logger.Debugw("inserted shift facts", "count", len(facts))
	return nil
}

func (r *shiftRepository) insertChunk(ctx context.Context, facts []*shift.Fact) error {
	batch, err := r.store.GetConn().PrepareBatch(ctx, insertQuery)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to prepare fact insert batch").
			Mark(ierr.ErrDatabase)
	}

	for _, f := range facts {
		err := batch.Append(
			f.PeriodID, f.SourceShiftID, f.Date, f.Region,
			f.EmployeeKey, f.PositionCode, f.ClientID,
			f.EmployeeSK, f.PositionSK, f.ClientSK,
			f.ScheduledHours, f.WorkedHours, f.ApprovedHours,
			f.BillableHours, f.PayableHours,
			f.BillRate, f.PayRate, f.BillableAmount, f.PayableAmount,
			f.Locked, f.BatchID, f.RawPayload, f.IngestedAt,
		)
		if err != nil {
			return ierr.WithError(err).
				WithHintf("Failed to append fact %s to batch", f.SourceShiftID).
				Mark(ierr.ErrDatabase)
		}
	}

	if err := batch.Send(); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to send fact batch").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

const selectColumns = `
	period_id, source_shift_id, date, region,
	employee_key, position_code, client_id,
	employee_sk, position_sk, client_sk,
	scheduled_hours, worked_hours, approved_hours,
	billable_hours, payable_hours,
	bill_rate, pay_rate, billable_amount, payable_amount,
	locked, batch_id, raw_payload, ingested_at`

func (r *shiftRepository) GetByKeys(ctx context.Context, periodID string, sourceShiftIDs []string) (map[string]*shift.Fact, error) {
	result := make(map[string]*shift.Fact, len(sourceShiftIDs))
	if len(sourceShiftIDs) == 0 {
		return result, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(sourceShiftIDs)), ",")
	query := fmt.Sprintf(`
		SELECT %s FROM shift_facts FINAL
		WHERE period_id = ? AND source_shift_id IN (%s)`,
		selectColumns, placeholders)

	args := make([]any, 0, len(sourceShiftIDs)+1)
	args = append(args, periodID)
	for _, id := range sourceShiftIDs {
		args = append(args, id)
	}

	rows, err := r.store.GetConn().Query(ctx, query, args...)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query existing facts").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	for rows.Next() {
		fact, err := scanFact(rows)
		if err != nil {
			return nil, err
		}
		result[fact.SourceShiftID] = fact
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to read existing facts").
			Mark(ierr.ErrDatabase)
	}
	return result, nil
}

func (r *shiftRepository) CountByPeriod(ctx context.Context, periodID string) (int, error) {
	var count uint64
	query := `SELECT count() FROM shift_facts FINAL WHERE period_id = ?`

	if err := r.store.GetConn().QueryRow(ctx, query, periodID).Scan(&count); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count facts").
			Mark(ierr.ErrDatabase)
	}
	return int(count), nil
}

func (r *shiftRepository) ListByPeriod(ctx context.Context, periodID string) ([]*shift.Fact, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM shift_facts FINAL
		WHERE period_id = ?
		ORDER BY source_shift_id`, selectColumns)

	rows, err := r.store.GetConn().Query(ctx, query, periodID)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list facts").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var facts []*shift.Fact
	for rows.Next() {
		fact, err := scanFact(rows)
		if err != nil {
			return nil, err
		}
		facts = append(facts, fact)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to read facts").
			Mark(ierr.ErrDatabase)
	}
	return facts, nil
}

func scanFact(rows driver.Rows) (*shift.Fact, error) {
	var (
		f                                        shift.Fact
		scheduled, worked, approved              decimal.Decimal
		billable, payable                        decimal.Decimal
		billRate, payRate, billAmount, payAmount decimal.Decimal
		date, ingestedAt                         time.Time
	)

	err := rows.Scan(
		&f.PeriodID, &f.SourceShiftID, &date, &f.Region,
		&f.EmployeeKey, &f.PositionCode, &f.ClientID,
		&f.EmployeeSK, &f.PositionSK, &f.ClientSK,
		&scheduled, &worked, &approved,
		&billable, &payable,
		&billRate, &payRate, &billAmount, &payAmount,
		&f.Locked, &f.BatchID, &f.RawPayload, &ingestedAt,
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan fact row").
			Mark(ierr.ErrDatabase)
	}

	f.Date = date
	f.IngestedAt = ingestedAt
	f.ScheduledHours = scheduled
	f.WorkedHours = worked
	f.ApprovedHours = approved
	f.BillableHours = billable
	f.PayableHours = payable
	f.BillRate = billRate
	f.PayRate = payRate
	f.BillableAmount = billAmount
	f.PayableAmount = payAmount
	return &f, nil
}
