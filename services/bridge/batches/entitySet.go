package batches

import (
	"sync"
	"time"

	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/aggregator"
	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/common"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("batches")

// ManagedEntry is the tracked state of one upstream batch
type ManagedEntry struct {
	Key       string
	Record    common.RawRecord
	State     common.UnitState
	FirstSeen time.Time
	LastSeen  time.Time
	Stale     bool
}

type entitySet struct {
	mut     sync.RWMutex
	entries map[string]*ManagedEntry
	order   []string
}

// NewEntitySet creates an empty managed set
func NewEntitySet() *entitySet {
	return &entitySet{
		entries: make(map[string]*ManagedEntry),
	}
}

// Reconcile creates the entries for keys never seen before and updates the existing ones in place. Entries whose key is
// missing from records are kept but marked stale. It returns, in first-seen order, only the keys created by this call.
func (es *entitySet) Reconcile(records []common.RawRecord, asOf time.Time) []string {
	es.mut.Lock()
	defer es.mut.Unlock()

	created := make([]string, 0)
	present := make(map[string]struct{}, len(records))
	for _, r := range records {
		present[r.Key] = struct{}{}

		entry, found := es.entries[r.Key]
		if !found {
			entry = &ManagedEntry{
				Key:       r.Key,
				FirstSeen: asOf,
			}
			es.entries[r.Key] = entry
			es.order = append(es.order, r.Key)
			created = append(created, r.Key)
		}

		if entry.Stale {
			log.Debug("batch is back", "key", r.Key)
		}

		entry.Record = r
		entry.State = DeriveState(r, asOf)
		entry.LastSeen = asOf
		entry.Stale = false
	}

	for key, entry := range es.entries {
		if _, found := present[key]; found || entry.Stale {
			continue
		}

		entry.Stale = true
		entry.State = markStale(entry.State, entry.LastSeen)
		log.Debug("batch is no longer reported", "key", key, "last seen", entry.LastSeen)
	}

	return created
}

// DeriveState builds the display state of a batch: its status as value and the record fields as attributes
func DeriveState(r common.RawRecord, asOf time.Time) common.UnitState {
	view := aggregator.ToRecordView(r, asOf)

	return common.UnitState{
		Value: r.Status,
		Attributes: map[string]interface{}{
			"reference":       view.Reference,
			"picker_name":     view.PickerName,
			"batch_type":      view.BatchType,
			"total_products":  view.TotalProducts,
			"total_picklists": view.TotalPicklists,
			"created_at":      view.CreatedAt,
			"duration":        view.Duration,
			"stale":           false,
		},
		UpdatedAt: asOf,
	}
}

func markStale(state common.UnitState, lastSeen time.Time) common.UnitState {
	attrs := make(map[string]interface{}, len(state.Attributes)+1)
	for k, v := range state.Attributes {
		attrs[k] = v
	}
	attrs["stale"] = true
	attrs["last_seen"] = lastSeen.Format(common.TimestampLayout)

	return common.UnitState{
		Value:      state.Value,
		Attributes: attrs,
		UpdatedAt:  state.UpdatedAt,
	}
}

// Get returns a copy of the entry stored under key
func (es *entitySet) Get(key string) (ManagedEntry, bool) {
	es.mut.RLock()
	defer es.mut.RUnlock()

	entry, found := es.entries[key]
	if !found {
		return ManagedEntry{}, false
	}

	return *entry, true
}

// Keys returns all tracked keys in creation order
func (es *entitySet) Keys() []string {
	es.mut.RLock()
	defer es.mut.RUnlock()

	return append([]string(nil), es.order...)
}

// Len returns the number of tracked entries
func (es *entitySet) Len() int {
	es.mut.RLock()
	defer es.mut.RUnlock()

	return len(es.entries)
}

// IsInterfaceNil returns true if the value under the interface is nil
func (es *entitySet) IsInterfaceNil() bool {
	return es == nil
}
