package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/shiftledger/shiftledger/internal/domain/dimension"
	"github.com/shiftledger/shiftledger/internal/testutil"
	"github.com/shiftledger/shiftledger/internal/types"
)

var trackedFields = []string{"name", "region"}

type DimensionServiceSuite struct {
	suite.Suite
	ctx     context.Context
	stores  *testStores
	service DimensionService
}

func TestDimensionService(t *testing.T) {
	suite.Run(t, new(DimensionServiceSuite))
}

func (s *DimensionServiceSuite) SetupTest() {
	s.ctx = testutil.SetupContext()
	s.stores = newTestStores()
	s.service = NewDimensionService(newTestParams(s.stores))
}

func (s *DimensionServiceSuite) TestFirstSightingInsertsCurrentVersion() {
	key, err := s.service.Upsert(s.ctx, types.EntityTypeEmployee, "emp-100",
		dimension.Attributes{"name": "Ada", "region": "east"}, trackedFields, "batch-1")
	s.NoError(err)
	s.NotZero(key)

	current, err := s.service.GetCurrent(s.ctx, types.EntityTypeEmployee, "emp-100")
	s.NoError(err)
	s.Equal(key, current.SurrogateKey)
	s.True(current.IsCurrent)
	s.Nil(current.ValidTo)
	s.Equal("Ada", current.Attributes["name"])
}

func (s *DimensionServiceSuite) TestUnchangedAttributesAreANoOp() {
	attrs := dimension.Attributes{"name": "Ada", "region": "east"}

	first, err := s.service.Upsert(s.ctx, types.EntityTypeEmployee, "emp-100", attrs, trackedFields, "batch-1")
	s.NoError(err)

	second, err := s.service.Upsert(s.ctx, types.EntityTypeEmployee, "emp-100", attrs, trackedFields, "batch-2")
	s.NoError(err)
	s.Equal(first, second)

	versions, err := s.stores.dimensions.ListVersions(s.ctx, types.EntityTypeEmployee, "emp-100")
	s.NoError(err)
	s.Len(versions, 1)
}

func (s *DimensionServiceSuite) TestChangedAttributeRotatesVersion() {
	first, err := s.service.Upsert(s.ctx, types.EntityTypeEmployee, "emp-100",
		dimension.Attributes{"name": "Ada", "region": "east"}, trackedFields, "batch-1")
	s.NoError(err)

	second, err := s.service.Upsert(s.ctx, types.EntityTypeEmployee, "emp-100",
		dimension.Attributes{"name": "Ada", "region": "west"}, trackedFields, "batch-2")
	s.NoError(err)
	s.NotEqual(first, second)

	versions, err := s.stores.dimensions.ListVersions(s.ctx, types.EntityTypeEmployee, "emp-100")
	s.NoError(err)
	s.Len(versions, 2)

	// Old version closed, its valid_to equals the new version's valid_from
	s.False(versions[0].IsCurrent)
	s.NotNil(versions[0].ValidTo)
	s.True(versions[0].ValidTo.Equal(versions[1].ValidFrom))
	s.True(versions[1].IsCurrent)
	s.Equal("west", versions[1].Attributes["region"])
}

func (s *DimensionServiceSuite) TestUntrackedFieldChangeDoesNotRotate() {
	attrs := dimension.Attributes{"name": "Ada", "region": "east", "note": "a"}
	first, err := s.service.Upsert(s.ctx, types.EntityTypeEmployee, "emp-100", attrs, trackedFields, "batch-1")
	s.NoError(err)

	changed := dimension.Attributes{"name": "Ada", "region": "east", "note": "b"}
	second, err := s.service.Upsert(s.ctx, types.EntityTypeEmployee, "emp-100", changed, trackedFields, "batch-2")
	s.NoError(err)
	s.Equal(first, second)
}

func (s *DimensionServiceSuite) TestSingleCurrentUnderConcurrentUpserts() {
	const writers = 16

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			region := "east"
			if i%2 == 0 {
				region = "west"
			}
			_, err := s.service.Upsert(s.ctx, types.EntityTypePosition, "pos-7",
				dimension.Attributes{"name": "Guard", "region": region}, trackedFields, "batch-c")
			s.NoError(err)
		}(i)
	}
	wg.Wait()

	versions, err := s.stores.dimensions.ListVersions(s.ctx, types.EntityTypePosition, "pos-7")
	s.NoError(err)
	s.NotEmpty(versions)

	current := 0
	for _, v := range versions {
		if v.IsCurrent {
			current++
			s.Nil(v.ValidTo)
		} else {
			s.NotNil(v.ValidTo)
		}
	}
	s.Equal(1, current)
}

func (s *DimensionServiceSuite) TestEnsureCurrentCreatesStub() {
	key, err := s.service.EnsureCurrent(s.ctx, types.EntityTypeClient, "client-9",
		dimension.Attributes{"region": "east"}, "batch-1")
	s.NoError(err)
	s.NotZero(key)

	current, err := s.service.GetCurrent(s.ctx, types.EntityTypeClient, "client-9")
	s.NoError(err)
	s.True(current.IsStub())

	// Second sighting reuses the stub
	again, err := s.service.EnsureCurrent(s.ctx, types.EntityTypeClient, "client-9", nil, "batch-2")
	s.NoError(err)
	s.Equal(key, again)
}

func (s *DimensionServiceSuite) TestMissingNaturalKeyRejected() {
	_, err := s.service.Upsert(s.ctx, types.EntityTypeEmployee, "",
		dimension.Attributes{"name": "Ada"}, trackedFields, "batch-1")
	s.Error(err)

	_, err = s.service.EnsureCurrent(s.ctx, types.EntityTypeEmployee, "", nil, "batch-1")
	s.Error(err)
}
