package engine

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/aggregator"
	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/common"
	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/config"
	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/mapper"
	"github.com/multiversx/mx-chain-core-go/core/check"
)

// ArgsAggregateMetric defines the arguments needed to create an aggregate metric
type ArgsAggregateMetric struct {
	Config      config.AggregateConfig
	Paginator   Paginator
	Location    *time.Location
	TimeHandler func() time.Time
}

// aggregateMetric reduces all pages of a list endpoint into a scalar and an attribute bundle
type aggregateMetric struct {
	stateHolder
	descriptor  common.UnitDescriptor
	path        string
	fixedParams map[string]string
	startParam  string
	endParam    string
	schema      mapper.RecordSchema
	window      aggregator.Window
	scalar      aggregator.ScalarKind
	paginator   Paginator
	location    *time.Location
	now         func() time.Time
}

// NewAggregateMetric creates a new aggregate metric unit
func NewAggregateMetric(args ArgsAggregateMetric) (*aggregateMetric, error) {
	if check.IfNil(args.Paginator) {
		return nil, errors.New("nil paginator")
	}

	cfg := args.Config
	if cfg.Path == "" || cfg.UniqueID == "" {
		return nil, errors.New("aggregate needs a path and a unique ID")
	}
	schema, found := mapper.SchemaByName(cfg.Schema)
	if !found {
		return nil, fmt.Errorf("aggregate %s: unknown schema %q", cfg.UniqueID, cfg.Schema)
	}
	window, err := aggregator.NewWindow(cfg.Window, cfg.DaysAgo)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", cfg.UniqueID, err)
	}
	scalar, err := aggregator.ParseScalarKind(cfg.Scalar)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", cfg.UniqueID, err)
	}

	return &aggregateMetric{
		descriptor: common.UnitDescriptor{
			Name:       cfg.Name,
			UniqueID:   cfg.UniqueID,
			Unit:       cfg.Unit,
			StateClass: cfg.StateClass,
			Icon:       cfg.Icon,
		},
		path:        cfg.Path,
		fixedParams: cfg.Params,
		startParam:  cfg.StartParam,
		endParam:    cfg.EndParam,
		schema:      schema,
		window:      window,
		scalar:      scalar,
		paginator:   args.Paginator,
		location:    locationOrDefault(args.Location),
		now:         timeHandlerOrDefault(args.TimeHandler),
	}, nil
}

// Refresh fetches every page, aggregates the records and replaces the state with a freshly built snapshot
func (m *aggregateMetric) Refresh(ctx context.Context) {
	asOf := m.now().In(m.location)

	entries, err := m.paginator.FetchAll(context.WithoutCancel(ctx), m.path, m.queryParams(asOf))
	if ctx.Err() != nil {
		log.Debug("discarding result of unloaded unit", "unit", m.descriptor.UniqueID)
		return
	}
	if err != nil {
		m.setError(m.descriptor.UniqueID, err, asOf)
		return
	}

	records, skipped := mapper.DecodeRecords(entries, m.schema, m.location)
	if skipped > 0 {
		log.Warn("malformed records skipped", "unit", m.descriptor.UniqueID, "skipped", skipped, "kept", len(records))
	}

	snapshot := aggregator.Aggregate(records, asOf, m.window, m.scalar)
	snapshot.SkippedRecords = skipped

	log.Debug("aggregate refreshed", "unit", m.descriptor.UniqueID, "window", m.window.String(),
		"records", snapshot.Total, "scalar", snapshot.Scalar)
	m.set(common.UnitState{
		Value:      snapshot.Scalar,
		Attributes: snapshot.Attributes(),
		UpdatedAt:  asOf,
	})
}

// queryParams renders the fixed parameters plus, when configured, the window bounds. The end bound is sent as the
// last second inside the window.
func (m *aggregateMetric) queryParams(asOf time.Time) url.Values {
	params := make(url.Values, len(m.fixedParams)+2)
	for k, v := range m.fixedParams {
		params.Set(k, v)
	}

	start, end := m.window.Bounds(asOf)
	if start.IsZero() {
		return params
	}
	if m.startParam != "" {
		params.Set(m.startParam, start.Format(common.TimestampLayout))
	}
	if m.endParam != "" {
		params.Set(m.endParam, end.Add(-time.Second).Format(common.TimestampLayout))
	}

	return params
}

// Descriptor returns the static unit description
func (m *aggregateMetric) Descriptor() common.UnitDescriptor {
	return m.descriptor
}

// State returns the latest state
func (m *aggregateMetric) State() common.UnitState {
	return m.get()
}

// IsInterfaceNil returns true if the value under the interface is nil
func (m *aggregateMetric) IsInterfaceNil() bool {
	return m == nil
}
