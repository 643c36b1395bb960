package testsCommon

import "context"

// BatchResetterStub -
type BatchResetterStub struct {
	ResetBatchHandler func(ctx context.Context, batchID string) error
}

// ResetBatch -
func (stub *BatchResetterStub) ResetBatch(ctx context.Context, batchID string) error {
	if stub.ResetBatchHandler != nil {
		return stub.ResetBatchHandler(ctx, batchID)
	}

	return nil
}

// IsInterfaceNil -
func (stub *BatchResetterStub) IsInterfaceNil() bool {
	return stub == nil
}
