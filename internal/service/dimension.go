package service

import (
	"context"
	"sync"
	"time"

	"github.com/shiftledger/shiftledger/internal/domain/dimension"
	ierr "github.com/shiftledger/shiftledger/internal/errors"
	"github.com/shiftledger/shiftledger/internal/types"
)

// DimensionService is the SCD Type 2 upsert engine shared by the employee,
// client and position dimensions.
//
// Upserts for the same natural key are serialized through a per-key mutex;
// the store's uniqueness constraint on current versions stays the final
// arbiter. A violation of it surfaces as ErrOverlapViolation and aborts the
// batch: it indicates a concurrency bug, not a business condition, so it is
// deliberately not retried.
type DimensionService interface {
	// Upsert applies one observed attribute set. No current version:
	// insert one. Tracked fields unchanged: return the existing surrogate
	// key. Tracked field changed: close the current version and open a new
	// one inside a single transaction.
	Upsert(ctx context.Context, entityType types.EntityType, naturalKey string, attrs dimension.Attributes, trackedFields []string, batchID string) (int64, error)

	// EnsureCurrent returns the current surrogate key for a natural key,
	// auto-creating a minimal stub version (status unknown, attributes
	// empty) on first sighting. Used by the fact loader so high-volume
	// fact loads never interleave with dimension churn.
	EnsureCurrent(ctx context.Context, entityType types.EntityType, naturalKey string, seed dimension.Attributes, batchID string) (int64, error)

	// GetCurrent returns the current version for a natural key
	GetCurrent(ctx context.Context, entityType types.EntityType, naturalKey string) (*dimension.Record, error)
}

type dimensionService struct {
	ServiceParams

	mu       sync.Mutex
	keyLocks map[string]*sync.Mutex
}

func NewDimensionService(params ServiceParams) DimensionService {
	return &dimensionService{
		ServiceParams: params,
		keyLocks:      make(map[string]*sync.Mutex),
	}
}

// lockKey serializes writers for one (entity_type, natural_key). Locks are
// never released back to the map; the key space is bounded by the dimension
// cardinality, which is small relative to fact volume.
func (s *dimensionService) lockKey(entityType types.EntityType, naturalKey string) *sync.Mutex {
	key := string(entityType) + ":" + naturalKey
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.keyLocks[key]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.keyLocks[key] = l
	return l
}

func (s *dimensionService) Upsert(ctx context.Context, entityType types.EntityType, naturalKey string, attrs dimension.Attributes, trackedFields []string, batchID string) (int64, error) {
	if err := entityType.Validate(); err != nil {
		return 0, err
	}
	if naturalKey == "" {
		return 0, ierr.NewError("missing natural key").
			WithHintf("dimension upsert for %s requires a natural key", entityType).
			Mark(ierr.ErrValidation)
	}

	lock := s.lockKey(entityType, naturalKey)
	lock.Lock()
	defer lock.Unlock()

	current, err := s.DimensionRepo.GetCurrent(ctx, entityType, naturalKey)
	if err != nil && !ierr.IsNotFound(err) {
		return 0, err
	}

	now := time.Now().UTC()

	if current == nil {
		return s.insertVersion(ctx, entityType, naturalKey, attrs, batchID, now, types.StatusActive)
	}

	if !current.Attributes.Changed(attrs, trackedFields) {
		// Idempotent no-op: last writer wins within the serialized call,
		// and nothing was different this time
		return current.SurrogateKey, nil
	}

	var newKey int64
	err = s.DB.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.DimensionRepo.Close(txCtx, current.SurrogateKey, now, types.GetUserID(ctx)); err != nil {
			return err
		}
		key, err := s.insertVersion(txCtx, entityType, naturalKey, attrs, batchID, now, types.StatusActive)
		if err != nil {
			return err
		}
		newKey = key
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.Logger.Debugw("dimension version rotated",
		"entity_type", entityType,
		"natural_key", naturalKey,
		"closed_key", current.SurrogateKey,
		"new_key", newKey,
	)
	return newKey, nil
}

func (s *dimensionService) EnsureCurrent(ctx context.Context, entityType types.EntityType, naturalKey string, seed dimension.Attributes, batchID string) (int64, error) {
	if naturalKey == "" {
		return 0, ierr.NewError("missing natural key").
			WithHintf("cannot resolve %s dimension without a natural key", entityType).
			Mark(ierr.ErrValidation)
	}

	lock := s.lockKey(entityType, naturalKey)
	lock.Lock()
	defer lock.Unlock()

	current, err := s.DimensionRepo.GetCurrent(ctx, entityType, naturalKey)
	if err == nil {
		return current.SurrogateKey, nil
	}
	if !ierr.IsNotFound(err) {
		return 0, err
	}

	// First sighting: open a stub version. Enrichment fills it later,
	// out of band.
	key, err := s.insertVersion(ctx, entityType, naturalKey, seed, batchID, time.Now().UTC(), types.StatusUnknown)
	if err != nil {
		return 0, err
	}

	s.Logger.Debugw("created dimension stub",
		"entity_type", entityType,
		"natural_key", naturalKey,
		"surrogate_key", key,
	)
	return key, nil
}

func (s *dimensionService) GetCurrent(ctx context.Context, entityType types.EntityType, naturalKey string) (*dimension.Record, error) {
	return s.DimensionRepo.GetCurrent(ctx, entityType, naturalKey)
}

func (s *dimensionService) insertVersion(ctx context.Context, entityType types.EntityType, naturalKey string, attrs dimension.Attributes, batchID string, validFrom time.Time, status types.Status) (int64, error) {
	if attrs == nil {
		attrs = dimension.Attributes{}
	}

	record := &dimension.Record{
		EntityType: entityType,
		NaturalKey: naturalKey,
		Attributes: attrs.Clone(),
		ValidFrom:  validFrom,
		ValidTo:    nil,
		IsCurrent:  true,
		BatchID:    batchID,
		BaseModel:  types.GetDefaultBaseModel(ctx),
	}
	record.Status = status

	key, err := s.DimensionRepo.Insert(ctx, record)
	if err != nil {
		if ierr.IsOverlapViolation(err) {
			// Fatal by policy: the serialization above should have made
			// this impossible, so reaching here is a logic defect
			s.Logger.Errorw("dimension overlap detected, aborting batch",
				"entity_type", entityType,
				"natural_key", naturalKey,
				"error", err,
			)
		}
		return 0, err
	}
	return key, nil
}
