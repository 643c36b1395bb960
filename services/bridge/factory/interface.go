package factory

import (
	"context"
	"time"
)

// Server defines the operation of an entity able to serve requests
type Server interface {
	Start()
	Address() string
	Close() error
}

// Scheduler defines the operations of the periodic jobs runner
type Scheduler interface {
	AddJob(name string, interval time.Duration, handler func(ctx context.Context)) error
	Start(ctx context.Context)
	Trigger(name string) error
	Jobs() []string
	Close() error
	IsInterfaceNil() bool
}

// Publisher pushes the unit states to the host
type Publisher interface {
	Publish(ctx context.Context) error
	IsInterfaceNil() bool
}
