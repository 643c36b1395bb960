package testsCommon

import (
	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/common"
)

// UnitStub -
type UnitStub struct {
	DescriptorValue common.UnitDescriptor
	StateHandler    func() common.UnitState
}

// Descriptor -
func (stub *UnitStub) Descriptor() common.UnitDescriptor {
	return stub.DescriptorValue
}

// State -
func (stub *UnitStub) State() common.UnitState {
	if stub.StateHandler != nil {
		return stub.StateHandler()
	}

	return common.UnitState{}
}

// IsInterfaceNil -
func (stub *UnitStub) IsInterfaceNil() bool {
	return stub == nil
}
