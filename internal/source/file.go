package source

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/shiftledger/shiftledger/internal/domain/ledger"
	ierr "github.com/shiftledger/shiftledger/internal/errors"
	"github.com/shiftledger/shiftledger/internal/types"
)

// FileSource reads upstream exports from a directory of JSON dumps, one file
// per region and record kind (<region>_shifts.json, <region>_employees.json,
// <region>_positions.json). The live API client is a separate deployable;
// batch runs in air-gapped environments work off these exports.
type FileSource struct {
	dir string
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

func (s *FileSource) FetchShifts(ctx context.Context, region string, window types.DateRange) ([]*RawShift, error) {
	var all []*RawShift
	if err := s.load(region+"_shifts.json", &all); err != nil {
		return nil, err
	}

	// The export carries the full history; apply the window here the way
	// the live API does server-side
	var out []*RawShift
	for _, raw := range all {
		date, err := time.ParseInLocation(ShiftDateLayout, raw.Date, time.UTC)
		if err != nil {
			// Keep it: normalization owns the rejection
			out = append(out, raw)
			continue
		}
		if window.Contains(date) {
			out = append(out, raw)
		}
	}
	return out, nil
}

func (s *FileSource) FetchEmployees(ctx context.Context, region string) ([]*RawEmployee, error) {
	var out []*RawEmployee
	if err := s.load(region+"_employees.json", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *FileSource) FetchPositions(ctx context.Context, region string) ([]*RawPosition, error) {
	var out []*RawPosition
	if err := s.load(region+"_positions.json", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *FileSource) load(name string, dest any) error {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return ierr.WithError(err).
			WithHintf("cannot read source export %s", path).
			Mark(ierr.ErrSystem)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return ierr.WithError(err).
			WithHintf("source export %s is not valid JSON", path).
			Mark(ierr.ErrSystem)
	}
	return nil
}

// FileLedgerSource reads the submission feed from JSON exports in the same
// directory layout (ledger.json, building_mappings.json,
// position_mappings.json)
type FileLedgerSource struct {
	dir string
}

func NewFileLedgerSource(dir string) *FileLedgerSource {
	return &FileLedgerSource{dir: dir}
}

func (s *FileLedgerSource) FetchLedger(ctx context.Context) ([]*ledger.SubmissionEntry, error) {
	var out []*ledger.SubmissionEntry
	if err := (&FileSource{dir: s.dir}).load("ledger.json", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *FileLedgerSource) FetchBuildingMappings(ctx context.Context) ([]*ledger.BuildingMapping, error) {
	var out []*ledger.BuildingMapping
	if err := (&FileSource{dir: s.dir}).load("building_mappings.json", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *FileLedgerSource) FetchPositionMappings(ctx context.Context) ([]*ledger.PositionMapping, error) {
	var out []*ledger.PositionMapping
	if err := (&FileSource{dir: s.dir}).load("position_mappings.json", &out); err != nil {
		return nil, err
	}
	return out, nil
}
