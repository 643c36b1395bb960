package engine

import (
	"context"
	"net/url"
	"time"

	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/batches"
	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/common"
	"github.com/tidwall/gjson"
)

// Unit is a value-producing data point exposed to the host
type Unit interface {
	Descriptor() common.UnitDescriptor
	State() common.UnitState
	IsInterfaceNil() bool
}

// PollingUnit is a Unit that owns a periodic refresh
type PollingUnit interface {
	Unit
	Refresh(ctx context.Context)
}

// APIClient defines the upstream operations used by the units
type APIClient interface {
	Get(ctx context.Context, path string, query url.Values) ([]byte, error)
	Post(ctx context.Context, path string) error
	IsInterfaceNil() bool
}

// Paginator defines the component able to fetch every page of a list endpoint
type Paginator interface {
	FetchAll(ctx context.Context, path string, fixedParams url.Values) ([]gjson.Result, error)
	IsInterfaceNil() bool
}

// EntitySet holds the per-batch managed entries
type EntitySet interface {
	Reconcile(records []common.RawRecord, asOf time.Time) []string
	Get(key string) (batches.ManagedEntry, bool)
	Len() int
	IsInterfaceNil() bool
}

// Registrar accepts units discovered at runtime
type Registrar interface {
	Register(units ...Unit)
	IsInterfaceNil() bool
}
