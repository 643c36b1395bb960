package host

import (
	"sync"

	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/engine"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("host")

type registry struct {
	mut   sync.RWMutex
	units map[string]engine.Unit
	order []string
}

// NewRegistry creates an empty unit registry
func NewRegistry() *registry {
	return &registry{
		units: make(map[string]engine.Unit),
	}
}

// Register adds the units not already known. Registration is a one-time action per unique ID, the first unit wins.
func (r *registry) Register(units ...engine.Unit) {
	r.mut.Lock()
	defer r.mut.Unlock()

	for _, unit := range units {
		if check.IfNil(unit) {
			continue
		}

		uniqueID := unit.Descriptor().UniqueID
		if _, exists := r.units[uniqueID]; exists {
			log.Debug("unit already registered", "unique ID", uniqueID)
			continue
		}

		r.units[uniqueID] = unit
		r.order = append(r.order, uniqueID)
		log.Debug("unit registered", "unique ID", uniqueID, "name", unit.Descriptor().Name)
	}
}

// Units returns the registered units in registration order
func (r *registry) Units() []engine.Unit {
	r.mut.RLock()
	defer r.mut.RUnlock()

	units := make([]engine.Unit, 0, len(r.order))
	for _, uniqueID := range r.order {
		units = append(units, r.units[uniqueID])
	}

	return units
}

// Get returns the unit registered under the provided unique ID
func (r *registry) Get(uniqueID string) (engine.Unit, bool) {
	r.mut.RLock()
	defer r.mut.RUnlock()

	unit, found := r.units[uniqueID]
	return unit, found
}

// IsInterfaceNil returns true if the value under the interface is nil
func (r *registry) IsInterfaceNil() bool {
	return r == nil
}
