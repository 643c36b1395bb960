package host

import (
	"testing"

	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/common"
	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/testsCommon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUnit(uniqueID string, value interface{}) *testsCommon.UnitStub {
	return &testsCommon.UnitStub{
		DescriptorValue: common.UnitDescriptor{
			Name:     "Unit " + uniqueID,
			UniqueID: uniqueID,
			Icon:     common.DefaultIcon,
		},
		StateHandler: func() common.UnitState {
			return common.UnitState{Value: value}
		},
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	assert.False(t, r.IsInterfaceNil())
	assert.Empty(t, r.Units())

	first := newUnit("a", 1)
	r.Register(first, newUnit("b", 2))
	r.Register(newUnit("a", 100), nil, newUnit("c", 3))

	units := r.Units()
	require.Len(t, units, 3)
	assert.Equal(t, "a", units[0].Descriptor().UniqueID)
	assert.Equal(t, "b", units[1].Descriptor().UniqueID)
	assert.Equal(t, "c", units[2].Descriptor().UniqueID)

	unit, found := r.Get("a")
	require.True(t, found)
	assert.True(t, unit == first)
	assert.Equal(t, 1, unit.State().Value)

	_, found = r.Get("missing")
	assert.False(t, found)
}
