package api

import (
	"context"

	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/engine"
)

// UnitsProvider gives read access to the registered units
type UnitsProvider interface {
	Units() []engine.Unit
	Get(uniqueID string) (engine.Unit, bool)
	IsInterfaceNil() bool
}

// BatchResetter performs the reset_batch action
type BatchResetter interface {
	ResetBatch(ctx context.Context, batchID string) error
	IsInterfaceNil() bool
}

// JobTrigger runs a scheduler job out of band
type JobTrigger interface {
	Trigger(name string) error
	IsInterfaceNil() bool
}
