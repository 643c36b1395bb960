package engine

import (
	"context"
	"errors"
	"time"

	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/common"
	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/config"
	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/mapper"
	"github.com/multiversx/mx-chain-core-go/core/check"
)

// ArgsSimpleMetric defines the arguments needed to create a simple metric
type ArgsSimpleMetric struct {
	Config      config.MetricConfig
	Client      APIClient
	TimeHandler func() time.Time
}

// simpleMetric polls one stats path and exposes its "value" field
type simpleMetric struct {
	stateHolder
	descriptor common.UnitDescriptor
	path       string
	client     APIClient
	now        func() time.Time
}

// NewSimpleMetric creates a new simple metric unit
func NewSimpleMetric(args ArgsSimpleMetric) (*simpleMetric, error) {
	if check.IfNil(args.Client) {
		return nil, errors.New("nil API client")
	}
	if args.Config.Path == "" || args.Config.UniqueID == "" {
		return nil, errors.New("metric needs a path and a unique ID")
	}

	return &simpleMetric{
		descriptor: common.UnitDescriptor{
			Name:       args.Config.Name,
			UniqueID:   args.Config.UniqueID,
			Unit:       args.Config.Unit,
			StateClass: args.Config.StateClass,
			Icon:       args.Config.Icon,
		},
		path:   args.Config.Path,
		client: args.Client,
		now:    timeHandlerOrDefault(args.TimeHandler),
	}, nil
}

// Refresh fetches the stat and replaces the state. The request is not aborted when ctx is cancelled, but its
// result is discarded.
func (m *simpleMetric) Refresh(ctx context.Context) {
	body, err := m.client.Get(context.WithoutCancel(ctx), m.path, nil)
	if ctx.Err() != nil {
		log.Debug("discarding result of unloaded unit", "unit", m.descriptor.UniqueID)
		return
	}
	if err != nil {
		m.setError(m.descriptor.UniqueID, err, m.now())
		return
	}

	value, err := mapper.MapValue(body)
	if err != nil {
		m.setError(m.descriptor.UniqueID, err, m.now())
		return
	}

	log.Trace("metric refreshed", "unit", m.descriptor.UniqueID, "value", value)
	m.set(common.UnitState{
		Value:     value,
		UpdatedAt: m.now(),
	})
}

// Descriptor returns the static unit description
func (m *simpleMetric) Descriptor() common.UnitDescriptor {
	return m.descriptor
}

// State returns the latest state
func (m *simpleMetric) State() common.UnitState {
	return m.get()
}

// IsInterfaceNil returns true if the value under the interface is nil
func (m *simpleMetric) IsInterfaceNil() bool {
	return m == nil
}
