package dimension

import (
	"database/sql/driver"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shiftledger/shiftledger/internal/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Record is one version of a slowly-changing dimension entity (SCD Type 2).
// For a given (entity_type, natural_key) validity intervals never overlap and
// at most one version has IsCurrent set. Versions are never physically
// deleted; retiring an entity closes its current version.
type Record struct {
	SurrogateKey int64             `db:"surrogate_key" json:"surrogate_key"`
	EntityType   types.EntityType  `db:"entity_type" json:"entity_type"`
	NaturalKey   string            `db:"natural_key" json:"natural_key"`
	Attributes   Attributes        `db:"attributes" json:"attributes"`
	ValidFrom    time.Time         `db:"valid_from" json:"valid_from"`
	ValidTo      *time.Time        `db:"valid_to" json:"valid_to,omitempty"` // nil while current
	IsCurrent    bool              `db:"is_current" json:"is_current"`
	BatchID      string            `db:"batch_id" json:"batch_id"`
	types.BaseModel
}

// Attributes holds the descriptive attributes of a dimension version.
// Values are kept as normalized strings; which keys are change-tracked is
// decided by the caller per entity type.
type Attributes map[string]string

// Changed reports whether any of the tracked fields differ between the
// stored attributes and the incoming ones. A key absent on both sides is
// unchanged; an empty incoming value is an observed value, not a wildcard.
func (a Attributes) Changed(incoming Attributes, trackedFields []string) bool {
	for _, field := range trackedFields {
		if a[field] != incoming[field] {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer so attributes persist as a JSONB column
func (a Attributes) Value() (driver.Value, error) {
	if a == nil {
		a = Attributes{}
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner for the JSONB attributes column
func (a *Attributes) Scan(src any) error {
	if src == nil {
		*a = Attributes{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("cannot scan %T into dimension attributes", src)
	}
}

// Clone returns a shallow copy so callers cannot mutate stored versions
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// IsStub reports whether this version was auto-created by the fact loader
// before enrichment filled its attributes
func (r *Record) IsStub() bool {
	return r.Status == types.StatusUnknown
}
