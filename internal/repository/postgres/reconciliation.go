package postgres

import (
	"context"

	jsoniter "github.com/json-iterator/go"
	"github.com/shiftledger/shiftledger/internal/domain/reconciliation"
	ierr "github.com/shiftledger/shiftledger/internal/errors"
	"github.com/shiftledger/shiftledger/internal/logger"
	"github.com/shiftledger/shiftledger/internal/postgres"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type reconciliationRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewReconciliationRepository(db *postgres.DB, logger *logger.Logger) reconciliation.Repository {
	return &reconciliationRepository{db: db, logger: logger}
}

func (r *reconciliationRepository) CreateBulk(ctx context.Context, audits []*reconciliation.ResolutionAudit) error {
	if len(audits) == 0 {
		return nil
	}

	for _, audit := range audits {
		payload, err := json.Marshal(audit.Candidates)
		if err != nil {
			return ierr.WithError(err).
				WithHint("Failed to serialize resolution candidates").
				Mark(ierr.ErrSystem)
		}
		audit.CandidatesJSON = string(payload)
	}

	query := `
		INSERT INTO resolution_audits (
			id, run_id, natural_key, candidates, chosen_entity_id, reason, created_at
		) VALUES (
			:id, :run_id, :natural_key, :candidates, :chosen_entity_id, :reason, :created_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, audits); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to insert resolution audits").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *reconciliationRepository) ListByRun(ctx context.Context, runID string) ([]*reconciliation.ResolutionAudit, error) {
	var audits []*reconciliation.ResolutionAudit
	query := `
		SELECT * FROM resolution_audits
		WHERE run_id = $1
		ORDER BY natural_key`

	err := r.db.GetQuerier(ctx).SelectContext(ctx, &audits, query, runID)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list resolution audits").
			Mark(ierr.ErrDatabase)
	}

	for _, audit := range audits {
		if audit.CandidatesJSON == "" {
			continue
		}
		if err := json.Unmarshal([]byte(audit.CandidatesJSON), &audit.Candidates); err != nil {
			return nil, ierr.WithError(err).
				WithHintf("audit %s carries malformed candidate data", audit.ID).
				Mark(ierr.ErrSystem)
		}
	}
	return audits, nil
}
