package host

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/engine"
	"github.com/multiversx/mx-chain-core-go/core/check"
)

const statesPath = "/api/states/sensor."

// UnitsProvider returns the units to publish
type UnitsProvider interface {
	Units() []engine.Unit
	IsInterfaceNil() bool
}

// ArgsStatePublisher defines the arguments needed to create a state publisher
type ArgsStatePublisher struct {
	HostURL  string
	Token    string
	Provider UnitsProvider
	Timeout  time.Duration
}

type statePayload struct {
	State      interface{}            `json:"state"`
	Attributes map[string]interface{} `json:"attributes"`
}

type statePublisher struct {
	hostURL  string
	token    string
	provider UnitsProvider
	client   *http.Client
}

// NewStatePublisher creates a publisher that pushes the unit states to the host's REST states endpoint
func NewStatePublisher(args ArgsStatePublisher) (*statePublisher, error) {
	if len(args.HostURL) == 0 {
		return nil, errors.New("empty host URL")
	}
	if check.IfNil(args.Provider) {
		return nil, errors.New("nil units provider")
	}

	return &statePublisher{
		hostURL:  strings.TrimSuffix(args.HostURL, "/"),
		token:    args.Token,
		provider: args.Provider,
		client: &http.Client{
			Timeout: args.Timeout,
		},
	}, nil
}

// Publish sends the current state of every unit. A failing unit does not stop the others.
func (sp *statePublisher) Publish(ctx context.Context) error {
	units := sp.provider.Units()
	numFailed := 0
	for _, unit := range units {
		err := sp.publishUnit(ctx, unit)
		if err != nil {
			numFailed++
			log.Warn("failed to publish unit state", "unique ID", unit.Descriptor().UniqueID, "error", err)
		}
	}

	if numFailed > 0 {
		return fmt.Errorf("%d out of %d unit states were not published", numFailed, len(units))
	}

	log.Debug("published unit states", "host", sp.hostURL, "count", len(units))

	return nil
}

func (sp *statePublisher) publishUnit(ctx context.Context, unit engine.Unit) error {
	descriptor := unit.Descriptor()
	state := unit.State()

	attributes := make(map[string]interface{}, len(state.Attributes)+4)
	for k, v := range state.Attributes {
		attributes[k] = v
	}
	attributes["friendly_name"] = descriptor.Name
	attributes["icon"] = descriptor.Icon
	if descriptor.Unit != "" {
		attributes["unit_of_measurement"] = descriptor.Unit
	}
	if descriptor.StateClass != "" {
		attributes["state_class"] = descriptor.StateClass
	}

	body, err := json.Marshal(statePayload{
		State:      state.Value,
		Attributes: attributes,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal state payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sp.hostURL+statesPath+descriptor.UniqueID, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create publish request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if sp.token != "" {
		req.Header.Set("Authorization", "Bearer "+sp.token)
	}

	resp, err := sp.client.Do(req)
	if err != nil {
		return fmt.Errorf("network error publishing state: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("host rejected state with status code: %d", resp.StatusCode)
	}

	return nil
}

// IsInterfaceNil returns true if the value under the interface is nil
func (sp *statePublisher) IsInterfaceNil() bool {
	return sp == nil
}
