package factory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/api"
	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/batches"
	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/client"
	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/common"
	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/config"
	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/engine"
	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/host"
	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/paginator"
	"github.com/iulianpascalau/picqer-stats-bridge/services/bridge/scheduler"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("factory")

type componentsHandler struct {
	registry  api.UnitsProvider
	scheduler Scheduler
	publisher Publisher
	server    Server
	mutCancel sync.Mutex
	cancel    func()
}

// NewComponentsHandler creates a new components handler
func NewComponentsHandler(
	credential common.Credential,
	hostToken string,
	serviceKey string,
	cfg config.Config,
) (*componentsHandler, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	location, err := loadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	apiClient, err := client.NewAPIClient(client.ArgsAPIClient{
		Credential: credential,
		BaseDomain: cfg.BaseDomain,
		Scheme:     cfg.Scheme,
		BaseURL:    cfg.BaseURL,
		UserAgent:  cfg.Name,
		Timeout:    time.Duration(cfg.RequestTimeoutInSeconds) * time.Second,
	})
	if err != nil {
		return nil, err
	}

	pager, err := paginator.NewPaginator(apiClient, cfg.PageSize, paginator.DefaultMaxPages)
	if err != nil {
		return nil, err
	}

	registry := host.NewRegistry()
	sched := scheduler.NewScheduler()
	queryInterval := time.Duration(cfg.QueryIntervalInSeconds) * time.Second

	for _, metricCfg := range cfg.Metrics {
		metric, errCreate := engine.NewSimpleMetric(engine.ArgsSimpleMetric{
			Config: metricCfg,
			Client: apiClient,
		})
		if errCreate != nil {
			return nil, errCreate
		}

		errCreate = addPollingUnit(sched, registry, metric, metricCfg.UniqueID, queryInterval)
		if errCreate != nil {
			return nil, errCreate
		}
	}

	for _, aggregateCfg := range cfg.Aggregates {
		metric, errCreate := engine.NewAggregateMetric(engine.ArgsAggregateMetric{
			Config:    aggregateCfg,
			Paginator: pager,
			Location:  location,
		})
		if errCreate != nil {
			return nil, errCreate
		}

		errCreate = addPollingUnit(sched, registry, metric, aggregateCfg.UniqueID, queryInterval)
		if errCreate != nil {
			return nil, errCreate
		}
	}

	if cfg.BatchSet.Enabled {
		batchSet, errCreate := engine.NewBatchSet(engine.ArgsBatchSet{
			Config:    cfg.BatchSet,
			Paginator: pager,
			EntitySet: batches.NewEntitySet(),
			Registrar: registry,
			Location:  location,
		})
		if errCreate != nil {
			return nil, errCreate
		}

		interval := time.Duration(cfg.BatchSet.IntervalInSeconds) * time.Second
		errCreate = addPollingUnit(sched, registry, batchSet, config.BatchSetJobName, interval)
		if errCreate != nil {
			return nil, errCreate
		}
	}

	var publisher Publisher
	if cfg.HostURL != "" {
		statePublisher, errCreate := host.NewStatePublisher(host.ArgsStatePublisher{
			HostURL:  cfg.HostURL,
			Token:    hostToken,
			Provider: registry,
			Timeout:  time.Duration(cfg.RequestTimeoutInSeconds) * time.Second,
		})
		if errCreate != nil {
			return nil, errCreate
		}

		interval := time.Duration(cfg.PublishIntervalInSeconds) * time.Second
		errCreate = sched.AddJob(config.PublisherJobName, interval, func(ctx context.Context) {
			errPublish := statePublisher.Publish(ctx)
			if errPublish != nil {
				log.Warn("failed to publish the unit states", "error", errPublish)
			}
		})
		if errCreate != nil {
			return nil, errCreate
		}
		publisher = statePublisher
	}

	resetter, err := engine.NewBatchResetter(apiClient)
	if err != nil {
		return nil, err
	}

	server, err := api.NewServer(api.ArgsWebServer{
		ServiceKey:     serviceKey,
		ListenAddress:  cfg.ListenAddress,
		Units:          registry,
		Resetter:       resetter,
		Trigger:        sched,
		GeneralHandler: api.CORSMiddleware,
	})
	if err != nil {
		return nil, err
	}

	log.Debug("components created", "units", len(registry.Units()), "jobs", len(sched.Jobs()), "location", location.String())

	return &componentsHandler{
		registry:  registry,
		scheduler: sched,
		publisher: publisher,
		server:    server,
	}, nil
}

// addPollingUnit registers the unit with the host and schedules its refresh as its own job
func addPollingUnit(sched Scheduler, registrar engine.Registrar, unit engine.PollingUnit, jobName string, interval time.Duration) error {
	registrar.Register(unit)

	return sched.AddJob(jobName, interval, unit.Refresh)
}

func loadLocation(timezone string) (*time.Location, error) {
	if timezone == "" {
		return time.Local, nil
	}

	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}

	return location, nil
}

// GetRegistry returns the units registry
func (ch *componentsHandler) GetRegistry() api.UnitsProvider {
	return ch.registry
}

// GetScheduler returns the scheduler component
func (ch *componentsHandler) GetScheduler() Scheduler {
	return ch.scheduler
}

// GetPublisher returns the state publisher, nil when no host URL is configured
func (ch *componentsHandler) GetPublisher() Publisher {
	return ch.publisher
}

// GetServer returns the server component
func (ch *componentsHandler) GetServer() Server {
	return ch.server
}

// Start starts the inner components
func (ch *componentsHandler) Start() {
	ch.mutCancel.Lock()
	defer ch.mutCancel.Unlock()

	if ch.cancel != nil {
		return
	}

	var ctx context.Context
	ctx, ch.cancel = context.WithCancel(context.Background())

	ch.server.Start()
	ch.scheduler.Start(ctx)
}

// Close closes the inner components
func (ch *componentsHandler) Close() {
	ch.mutCancel.Lock()
	defer ch.mutCancel.Unlock()

	if ch.cancel != nil {
		ch.cancel()
		ch.cancel = nil
	}

	_ = ch.scheduler.Close()
	err := ch.server.Close()
	if err != nil {
		log.Warn("error closing the server", "error", err)
	}
}
