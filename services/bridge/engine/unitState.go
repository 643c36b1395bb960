package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/client"
	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/common"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("engine")

// stateHolder keeps the latest state of a unit. Every write replaces the whole state.
type stateHolder struct {
	mut   sync.RWMutex
	state common.UnitState
}

func (sh *stateHolder) set(state common.UnitState) {
	sh.mut.Lock()
	sh.state = state
	sh.mut.Unlock()
}

func (sh *stateHolder) get() common.UnitState {
	sh.mut.RLock()
	defer sh.mut.RUnlock()

	return sh.state
}

// setError replaces the state with the display token matching err
func (sh *stateHolder) setError(uniqueID string, err error, now time.Time) {
	logFailure(uniqueID, err)
	sh.set(common.UnitState{
		Value:     displayToken(err),
		UpdatedAt: now,
	})
}

// displayToken maps an error to the short token shown instead of the value
func displayToken(err error) string {
	if errors.Is(err, client.ErrShape) || errors.Is(err, client.ErrMapping) {
		return common.StateInvalidFormat
	}

	return common.StateError
}

func logFailure(uniqueID string, err error) {
	var statusErr *client.HTTPStatusError
	if errors.As(err, &statusErr) {
		log.Warn("upstream rejected the request", "unit", uniqueID, "status", statusErr.StatusCode, "path", statusErr.Path)
		return
	}

	log.Warn("refresh failed", "unit", uniqueID, "error", err)
}

func timeHandlerOrDefault(handler func() time.Time) func() time.Time {
	if handler == nil {
		return time.Now
	}

	return handler
}

func locationOrDefault(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}

	return loc
}
