package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iulianpascalau/picqer-stats-bridge/commonGo"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("scheduler")

// ErrUnknownJob signals a job name that was never added
var ErrUnknownJob = errors.New("unknown job")

// ErrJobRunning signals an invocation skipped because the previous one did not return yet
var ErrJobRunning = errors.New("job is already running")

// ErrNotStarted signals a Trigger call on a scheduler that is not running
var ErrNotStarted = errors.New("scheduler is not started")

type job struct {
	name     string
	interval time.Duration
	handler  func(ctx context.Context)
	running  sync.Mutex
}

type scheduler struct {
	mut     sync.Mutex
	jobs    map[string]*job
	order   []string
	ctx     context.Context
	cancel  func()
	doneChs []<-chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler with no jobs
func NewScheduler() *scheduler {
	return &scheduler{
		jobs: make(map[string]*job),
	}
}

// AddJob registers a periodic handler. Jobs added after Start are started right away, a closed scheduler
// rejects new jobs with ErrNotStarted.
func (s *scheduler) AddJob(name string, interval time.Duration, handler func(ctx context.Context)) error {
	if handler == nil {
		return fmt.Errorf("nil handler for job %s", name)
	}
	if interval <= 0 {
		return fmt.Errorf("invalid interval %v for job %s", interval, name)
	}

	s.mut.Lock()
	defer s.mut.Unlock()

	if s.ctx != nil && s.ctx.Err() != nil {
		return fmt.Errorf("%w: can not add job %s to a closed scheduler", ErrNotStarted, name)
	}
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("duplicate job %s", name)
	}

	j := &job{
		name:     name,
		interval: interval,
		handler:  handler,
	}
	s.jobs[name] = j
	s.order = append(s.order, name)

	if s.ctx != nil {
		s.startJob(j)
	}

	return nil
}

// Start launches every job on its own timer. The first run of each job happens right away.
func (s *scheduler) Start(ctx context.Context) {
	s.mut.Lock()
	defer s.mut.Unlock()

	if s.ctx != nil {
		return
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	for _, name := range s.order {
		s.startJob(s.jobs[name])
	}

	log.Debug("scheduler started", "jobs", len(s.order))
}

func (s *scheduler) startJob(j *job) {
	done := commonGo.CronJobStarter(s.ctx, func(ctx context.Context) {
		if !s.runOnce(ctx, j) {
			log.Debug("skipping tick, previous run still in progress", "job", j.name)
		}
	}, j.interval)
	s.doneChs = append(s.doneChs, done)
}

// runOnce executes the handler unless the job is already running
func (s *scheduler) runOnce(ctx context.Context, j *job) bool {
	if !j.running.TryLock() {
		return false
	}
	defer j.running.Unlock()

	s.execute(ctx, j)

	return true
}

func (s *scheduler) execute(ctx context.Context, j *job) {
	defer func() {
		r := recover()
		if r != nil {
			log.Error("job panicked", "job", j.name, "id", uuid.New().String(), "panic", r, "stack", string(debug.Stack()))
		}
	}()

	start := time.Now()
	j.handler(ctx)
	log.Trace("job finished", "job", j.name, "duration", time.Since(start))
}

// Trigger runs a job out of band, in the background. Returns ErrJobRunning when the job is in progress.
func (s *scheduler) Trigger(name string) error {
	s.mut.Lock()
	defer s.mut.Unlock()

	if s.ctx == nil || s.ctx.Err() != nil {
		return ErrNotStarted
	}

	j, found := s.jobs[name]
	if !found {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	if !j.running.TryLock() {
		return fmt.Errorf("%w: %s", ErrJobRunning, name)
	}

	ctx := s.ctx
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer j.running.Unlock()

		s.execute(ctx, j)
	}()

	return nil
}

// Jobs returns the job names in the order they were added
func (s *scheduler) Jobs() []string {
	s.mut.Lock()
	defer s.mut.Unlock()

	return append([]string(nil), s.order...)
}

// Close stops all timers and waits for the running handlers to return
func (s *scheduler) Close() error {
	s.mut.Lock()
	if s.cancel == nil {
		s.mut.Unlock()
		return nil
	}

	s.cancel()
	doneChs := s.doneChs
	s.doneChs = nil
	s.mut.Unlock()

	for _, done := range doneChs {
		<-done
	}
	s.wg.Wait()

	return nil
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *scheduler) IsInterfaceNil() bool {
	return s == nil
}
