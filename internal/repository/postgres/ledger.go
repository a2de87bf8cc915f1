package postgres

import (
	"context"

	"github.com/shiftledger/shiftledger/internal/domain/ledger"
	ierr "github.com/shiftledger/shiftledger/internal/errors"
	"github.com/shiftledger/shiftledger/internal/logger"
	"github.com/shiftledger/shiftledger/internal/postgres"
)

type ledgerRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewLedgerRepository(db *postgres.DB, logger *logger.Logger) ledger.Repository {
	return &ledgerRepository{db: db, logger: logger}
}

func (r *ledgerRepository) ReplaceLedger(ctx context.Context, entries []*ledger.SubmissionEntry) error {
	return r.replace(ctx, "submission_ledger", len(entries), func(txCtx context.Context) error {
		if len(entries) == 0 {
			return nil
		}
		query := `
			INSERT INTO submission_ledger (
				id, document_id, base_document_id, owning_entity_id, submitted_at,
				status, created_at, updated_at, created_by, updated_by
			) VALUES (
				:id, :document_id, :base_document_id, :owning_entity_id, :submitted_at,
				:status, :created_at, :updated_at, :created_by, :updated_by
			)`
		_, err := r.db.NamedExecContext(txCtx, query, entries)
		return err
	})
}

func (r *ledgerRepository) ListLedger(ctx context.Context) ([]*ledger.SubmissionEntry, error) {
	var entries []*ledger.SubmissionEntry
	query := `SELECT * FROM submission_ledger ORDER BY submitted_at`

	err := r.db.GetQuerier(ctx).SelectContext(ctx, &entries, query)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list submission ledger").
			Mark(ierr.ErrDatabase)
	}
	return entries, nil
}

func (r *ledgerRepository) ReplaceBuildingMappings(ctx context.Context, mappings []*ledger.BuildingMapping) error {
	return r.replace(ctx, "building_mappings", len(mappings), func(txCtx context.Context) error {
		if len(mappings) == 0 {
			return nil
		}
		query := `
			INSERT INTO building_mappings (
				id, building_code, owning_entity_id,
				status, created_at, updated_at, created_by, updated_by
			) VALUES (
				:id, :building_code, :owning_entity_id,
				:status, :created_at, :updated_at, :created_by, :updated_by
			)`
		_, err := r.db.NamedExecContext(txCtx, query, mappings)
		return err
	})
}

func (r *ledgerRepository) ListBuildingMappings(ctx context.Context) ([]*ledger.BuildingMapping, error) {
	var mappings []*ledger.BuildingMapping
	query := `SELECT * FROM building_mappings ORDER BY building_code`

	err := r.db.GetQuerier(ctx).SelectContext(ctx, &mappings, query)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list building mappings").
			Mark(ierr.ErrDatabase)
	}
	return mappings, nil
}

func (r *ledgerRepository) ReplacePositionMappings(ctx context.Context, mappings []*ledger.PositionMapping) error {
	return r.replace(ctx, "position_mappings", len(mappings), func(txCtx context.Context) error {
		if len(mappings) == 0 {
			return nil
		}
		query := `
			INSERT INTO position_mappings (
				id, position_code, building_code,
				status, created_at, updated_at, created_by, updated_by
			) VALUES (
				:id, :position_code, :building_code,
				:status, :created_at, :updated_at, :created_by, :updated_by
			)`
		_, err := r.db.NamedExecContext(txCtx, query, mappings)
		return err
	})
}

func (r *ledgerRepository) ListPositionMappings(ctx context.Context) ([]*ledger.PositionMapping, error) {
	var mappings []*ledger.PositionMapping
	query := `SELECT * FROM position_mappings ORDER BY position_code`

	err := r.db.GetQuerier(ctx).SelectContext(ctx, &mappings, query)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list position mappings").
			Mark(ierr.ErrDatabase)
	}
	return mappings, nil
}

// replace swaps the full content of a feed table inside one transaction.
// The feed is authoritative, so no incremental diffing.
func (r *ledgerRepository) replace(ctx context.Context, table string, rows int, insert func(ctx context.Context) error) error {
	err := r.db.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := r.db.GetQuerier(txCtx).ExecContext(txCtx, `DELETE FROM `+table); err != nil {
			return err
		}
		return insert(txCtx)
	})
	if err != nil {
		return ierr.WithError(err).
			WithHintf("Failed to replace %s", table).
			Mark(ierr.ErrDatabase)
	}

	r.logger.Debugw("replaced feed table", "table", table, "rows", rows)
	return nil
}
