// Package scheduler implements the Command Scheduler: a bounded queue,
// serial-number dedup cache, and per-kind executor dispatch running on a
// single dedicated worker.
package scheduler

import (
	"context"
	"sync"

	"agentcore/internal/config"
	"agentcore/internal/config/logger"
	"agentcore/internal/core/util"
	"agentcore/internal/metrics"
)

// Kind is this service's lookup identity in the Service Manager.
const Kind = "command_scheduler"

// Priority places the scheduler after the channel manager, since its
// commands typically arrive over the channel.
const Priority = -900

// Scheduler receives collector-issued commands, suppresses duplicates, and
// dispatches them to per-kind executors.
type Scheduler struct {
	log     logger.Logger
	guard   *util.Guard
	metrics *metrics.Metrics

	cache *serialCache
	queue chan Command

	execMu    sync.RWMutex
	executors map[string]Executor

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewScheduler constructs a Scheduler with the configured queue and cache
// capacities.
func NewScheduler(cfg *config.Config, log logger.Logger) *Scheduler {
	scoped := log.WithComponent("SCHEDULER")
	return &Scheduler{
		log:       scoped,
		guard:     util.NewGuard(scoped),
		cache:     newSerialCache(config.SerialCacheCapacity),
		queue:     make(chan Command, config.CommandQueueCapacity),
		executors: make(map[string]Executor),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

func (s *Scheduler) Kind() string  { return Kind }
func (s *Scheduler) Priority() int { return Priority }

// SetMetrics attaches the collector set this scheduler reports queue depth
// and dispatch counts to. Optional; uncalled, the scheduler just doesn't
// report.
func (s *Scheduler) SetMetrics(mt *metrics.Metrics) {
	s.metrics = mt
}

func (s *Scheduler) Prepare(context.Context) error { return nil }

func (s *Scheduler) Start(context.Context) error {
	s.guard.Go("command-dispatch", s.executeLoop)
	return nil
}
func (s *Scheduler) OnComplete(context.Context) {}

func (s *Scheduler) Shutdown(context.Context) error {
	close(s.stopCh)
	<-s.doneCh
	return nil
}

// RegisterExecutor binds an executor to a command kind. Registration
// happens at boot, directly, with no class-loader equivalent needed.
func (s *Scheduler) RegisterExecutor(kind string, executor Executor) {
	s.execMu.Lock()
	defer s.execMu.Unlock()
	s.executors[kind] = executor
}

func (s *Scheduler) executorFor(kind string) (Executor, bool) {
	s.execMu.RLock()
	defer s.execMu.RUnlock()
	ex, ok := s.executors[kind]
	return ex, ok
}

// Receive deserializes a batch that has already been pulled off the wire.
// Commands whose serial is already cached (from a prior dispatch) or that
// duplicate another command earlier in this same batch are logged and
// dropped. Others are enqueued; a full queue drops the command rather than
// blocking the caller.
func (s *Scheduler) Receive(batch []Command) {
	seenThisBatch := make(map[string]bool, len(batch))

	for _, cmd := range batch {
		if seenThisBatch[cmd.Serial] {
			s.log.Warn().Str("serial", cmd.Serial).Msg("duplicate serial within batch, dropped")
			continue
		}
		seenThisBatch[cmd.Serial] = true

		if s.cache.contains(cmd.Serial) {
			s.log.Debug().Str("serial", cmd.Serial).Msg("serial already executed, dropped at receive gate")
			continue
		}

		select {
		case s.queue <- cmd:
		default:
			s.log.Warn().Str("kind", cmd.Kind).Str("serial", cmd.Serial).Msg("command queue full, command dropped")
		}
	}

	if s.metrics != nil {
		s.metrics.CommandQueueDepth.Set(float64(s.QueueDepth()))
	}
}

// QueueDepth reports the number of commands currently queued, for metrics.
func (s *Scheduler) QueueDepth() int {
	return len(s.queue)
}

func (s *Scheduler) executeLoop() {
	defer close(s.doneCh)

	for {
		select {
		case <-s.stopCh:
			return
		case cmd := <-s.queue:
			s.guard.Run("command-execute", func() { s.dispatch(cmd) })
		}
	}
}

func (s *Scheduler) dispatch(cmd Command) {
	if s.cache.contains(cmd.Serial) {
		s.log.Debug().Str("serial", cmd.Serial).Msg("serial already executed, dropped at dequeue gate")
		return
	}

	executor, ok := s.executorFor(cmd.Kind)
	if !ok {
		s.log.Error().Str("kind", cmd.Kind).Msg("no executor registered for command kind")
		return
	}

	err := executor.Execute(cmd)
	s.cache.add(cmd.Serial)

	if s.metrics != nil {
		s.metrics.ObserveDispatch(cmd.Kind, err)
		s.metrics.CommandQueueDepth.Set(float64(s.QueueDepth()))
	}

	if err != nil {
		s.log.Error().Str("kind", cmd.Kind).Str("serial", cmd.Serial).Err(err).Msg("executor failed")
	}
}
