package factory

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/common"
	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCredential = common.Credential{
	APIKey:      "api-key",
	StorePrefix: "shop",
}

func createConfig() config.Config {
	cfg := config.Config{
		ListenAddress: "127.0.0.1:0",
		Aggregates: []config.AggregateConfig{
			{
				Name:       "Picqer Products Picked Today",
				UniqueID:   "picqer_products_picked_today",
				Path:       "picklists",
				Schema:     config.SchemaPicklist,
				Scalar:     "products",
				Params:     map[string]string{"status": "closed"},
				StartParam: "closed_after",
				EndParam:   "closed_before",
			},
		},
		BatchSet: config.BatchSetConfig{
			Enabled: true,
		},
		HostURL: "http://127.0.0.1:8123",
	}
	cfg.ApplyDefaults()

	return cfg
}

func TestNewComponentsHandler(t *testing.T) {
	t.Parallel()

	t.Run("invalid credential should error", func(t *testing.T) {
		handler, err := NewComponentsHandler(common.Credential{}, "", "", createConfig())
		assert.Nil(t, handler)
		assert.Error(t, err)
	})
	t.Run("invalid timezone should error", func(t *testing.T) {
		cfg := createConfig()
		cfg.Timezone = "Mars/Olympus_Mons"

		handler, err := NewComponentsHandler(testCredential, "", "", cfg)
		assert.Nil(t, handler)
		assert.Contains(t, err.Error(), "invalid timezone")
	})
	t.Run("invalid aggregate should error", func(t *testing.T) {
		cfg := createConfig()
		cfg.Aggregates[0].Scalar = "median"

		handler, err := NewComponentsHandler(testCredential, "", "", cfg)
		assert.Nil(t, handler)
		assert.Error(t, err)
	})
	t.Run("duplicated unique ID should error", func(t *testing.T) {
		cfg := createConfig()
		cfg.Metrics = append(cfg.Metrics, cfg.Metrics[0])

		handler, err := NewComponentsHandler(testCredential, "", "", cfg)
		assert.Nil(t, handler)
		assert.Error(t, err)
	})
	t.Run("reserved unique ID should error", func(t *testing.T) {
		cfg := createConfig()
		cfg.Aggregates[0].UniqueID = config.BatchSetUniqueID

		handler, err := NewComponentsHandler(testCredential, "", "", cfg)
		assert.Nil(t, handler)
		require.ErrorIs(t, err, config.ErrInvalidConfig)
	})
	t.Run("should work", func(t *testing.T) {
		handler, err := NewComponentsHandler(testCredential, "host-token", "service-key", createConfig())
		assert.NotNil(t, handler)
		assert.Nil(t, err)

		handler.Close()
	})
}

func TestComponentsHandlerMethods(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/v1/stats/"):
			_, _ = w.Write([]byte(`{"value": 1}`))
		case strings.HasPrefix(r.URL.Path, "/api/v1/"):
			_, _ = w.Write([]byte(`[]`))
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer upstream.Close()

	cfg := createConfig()
	cfg.Timezone = "Europe/Amsterdam"
	cfg.BaseURL = upstream.URL
	cfg.HostURL = upstream.URL
	handler, err := NewComponentsHandler(testCredential, "host-token", "service-key", cfg)
	require.NoError(t, err)

	registry := handler.GetRegistry()
	assert.Equal(t, "*host.registry", fmt.Sprintf("%T", registry))
	assert.Len(t, registry.Units(), 14)
	_, found := registry.Get("picqer_batches")
	assert.True(t, found)

	sched := handler.GetScheduler()
	assert.Equal(t, "*scheduler.scheduler", fmt.Sprintf("%T", sched))
	jobs := sched.Jobs()
	assert.Len(t, jobs, 15)
	assert.Equal(t, "picqer_open_picklists", jobs[0])
	assert.Equal(t, "picqer_products_picked_today", jobs[12])
	assert.Equal(t, config.BatchSetJobName, jobs[13])
	assert.Equal(t, config.PublisherJobName, jobs[14])

	publisher := handler.GetPublisher()
	assert.Equal(t, "*host.statePublisher", fmt.Sprintf("%T", publisher))

	serv := handler.GetServer()
	assert.Equal(t, "*api.server", fmt.Sprintf("%T", serv))

	handler.Start()
	handler.Start()
	assert.NotEqual(t, "127.0.0.1:0", serv.Address())

	handler.Close()
	handler.Close()
}

func TestComponentsHandler_WithoutOptionalComponents(t *testing.T) {
	t.Parallel()

	cfg := createConfig()
	cfg.HostURL = ""
	cfg.BatchSet.Enabled = false
	cfg.Aggregates = nil

	handler, err := NewComponentsHandler(testCredential, "", "", cfg)
	require.NoError(t, err)
	defer handler.Close()

	assert.Nil(t, handler.GetPublisher())
	assert.Len(t, handler.GetRegistry().Units(), 12)
	assert.Len(t, handler.GetScheduler().Jobs(), 12)
}
