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

const (
	batchSetName    = "Picqer Batches"
	batchNamePrefix = "Picqer Batch "
)

// ArgsBatchSet defines the arguments needed to create the batch set
type ArgsBatchSet struct {
	Config      config.BatchSetConfig
	Paginator   Paginator
	EntitySet   EntitySet
	Registrar   Registrar
	Location    *time.Location
	TimeHandler func() time.Time
}

// batchSet polls the batches endpoint, keeps the entity set up to date and registers a unit for every new batch.
// It also acts as a unit reporting the number of batches inside its window.
type batchSet struct {
	stateHolder
	path      string
	window    aggregator.Window
	paginator Paginator
	entitySet EntitySet
	registrar Registrar
	location  *time.Location
	now       func() time.Time
}

// NewBatchSet creates the batch set
func NewBatchSet(args ArgsBatchSet) (*batchSet, error) {
	if check.IfNil(args.Paginator) {
		return nil, errors.New("nil paginator")
	}
	if check.IfNil(args.EntitySet) {
		return nil, errors.New("nil entity set")
	}
	if check.IfNil(args.Registrar) {
		return nil, errors.New("nil registrar")
	}

	window, err := aggregator.NewWindow(args.Config.Window, args.Config.DaysAgo)
	if err != nil {
		return nil, fmt.Errorf("batch set: %w", err)
	}

	return &batchSet{
		path:      args.Config.Path,
		window:    window,
		paginator: args.Paginator,
		entitySet: args.EntitySet,
		registrar: args.Registrar,
		location:  locationOrDefault(args.Location),
		now:       timeHandlerOrDefault(args.TimeHandler),
	}, nil
}

// Refresh is the only writer of the entity set
func (bs *batchSet) Refresh(ctx context.Context) {
	asOf := bs.now().In(bs.location)

	entries, err := bs.paginator.FetchAll(context.WithoutCancel(ctx), bs.path, nil)
	if ctx.Err() != nil {
		log.Debug("discarding result of unloaded unit", "unit", config.BatchSetUniqueID)
		return
	}
	if err != nil {
		bs.setError(config.BatchSetUniqueID, err, asOf)
		return
	}

	records, skipped := mapper.DecodeRecords(entries, mapper.BatchSchema, bs.location)
	if skipped > 0 {
		log.Warn("malformed batches skipped", "skipped", skipped, "kept", len(records))
	}
	inWindow := aggregator.Filter(records, asOf, bs.window)

	created := bs.entitySet.Reconcile(inWindow, asOf)
	if len(created) > 0 {
		units := make([]Unit, 0, len(created))
		for _, key := range created {
			units = append(units, bs.newBatchUnit(key))
		}
		bs.registrar.Register(units...)
		log.Info("new batches discovered", "count", len(created), "keys", created)
	}

	bs.set(common.UnitState{
		Value: len(inWindow),
		Attributes: map[string]interface{}{
			"tracked":         bs.entitySet.Len(),
			"new":             len(created),
			"skipped_records": skipped,
			"window":          bs.window.String(),
		},
		UpdatedAt: asOf,
	})
}

func (bs *batchSet) newBatchUnit(key string) *batchUnit {
	name := batchNamePrefix + key
	entry, found := bs.entitySet.Get(key)
	if found && entry.Record.Reference != "" {
		name = batchNamePrefix + entry.Record.Reference
	}

	return &batchUnit{
		key: key,
		descriptor: common.UnitDescriptor{
			Name:     name,
			UniqueID: config.BatchUnitIDPrefix + key,
			Icon:     common.DefaultIcon,
		},
		entitySet: bs.entitySet,
	}
}

// Descriptor returns the static unit description
func (bs *batchSet) Descriptor() common.UnitDescriptor {
	return common.UnitDescriptor{
		Name:       batchSetName,
		UniqueID:   config.BatchSetUniqueID,
		Unit:       "batches",
		StateClass: common.StateClassMeasurement,
		Icon:       common.DefaultIcon,
	}
}

// State returns the latest state
func (bs *batchSet) State() common.UnitState {
	return bs.get()
}

// IsInterfaceNil returns true if the value under the interface is nil
func (bs *batchSet) IsInterfaceNil() bool {
	return bs == nil
}

// batchUnit exposes one managed entry. It reads the entry on demand and never polls on its own.
type batchUnit struct {
	key        string
	descriptor common.UnitDescriptor
	entitySet  EntitySet
}

// Descriptor returns the static unit description
func (bu *batchUnit) Descriptor() common.UnitDescriptor {
	return bu.descriptor
}

// State returns the derived display state of the managed entry
func (bu *batchUnit) State() common.UnitState {
	entry, found := bu.entitySet.Get(bu.key)
	if !found {
		return common.UnitState{}
	}

	return entry.State
}

// IsInterfaceNil returns true if the value under the interface is nil
func (bu *batchUnit) IsInterfaceNil() bool {
	return bu == nil
}

// batchResetter performs the reset_batch action
type batchResetter struct {
	client APIClient
}

// NewBatchResetter creates the component able to reset picklist batches
func NewBatchResetter(apiClient APIClient) (*batchResetter, error) {
	if check.IfNil(apiClient) {
		return nil, errors.New("nil API client")
	}

	return &batchResetter{
		client: apiClient,
	}, nil
}

// ResetBatch posts the reset request for the provided batch. The outcome is logged, the returned error is only
// informative.
func (br *batchResetter) ResetBatch(ctx context.Context, batchID string) error {
	if batchID == "" {
		return errors.New("empty batch ID")
	}

	err := br.client.Post(ctx, "picklists/batches/"+url.PathEscape(batchID)+"/reset")
	if err != nil {
		log.Error("failed to reset batch", "batch", batchID, "error", err)
		return err
	}

	log.Info("batch reset", "batch", batchID)
	return nil
}

// IsInterfaceNil returns true if the value under the interface is nil
func (br *batchResetter) IsInterfaceNil() bool {
	return br == nil
}
