package testsCommon

// JobTriggerStub -
type JobTriggerStub struct {
	TriggerHandler func(name string) error
}

// Trigger -
func (stub *JobTriggerStub) Trigger(name string) error {
	if stub.TriggerHandler != nil {
		return stub.TriggerHandler(name)
	}

	return nil
}

// IsInterfaceNil -
func (stub *JobTriggerStub) IsInterfaceNil() bool {
	return stub == nil
}
