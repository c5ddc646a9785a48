package dynconfig

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"agentcore/internal/config"
	"agentcore/internal/config/logger"
	"agentcore/internal/core/channel"
	"agentcore/internal/core/scheduler"
	"agentcore/internal/core/util"
	"agentcore/internal/metrics"
	"agentcore/internal/transport/collector"
)

// Kind is this service's lookup identity in the Service Manager.
const Kind = "dynamic_config_service"

// Priority places polling after the scheduler is ready to receive the
// batches this service's worker produces.
const Priority = -800

// argUUID mirrors collector.ArgUUID: the reserved argument that carries the
// sync cursor and is excluded from the diff.
const argUUID = "UUID"

// Service is the Dynamic Configuration Service: it polls the collector,
// diffs the response against registered watchers, and also serves as the
// Command Scheduler's executor for ConfigurationDiscoveryCommand.
type Service struct {
	cfg     *config.Config
	log     logger.Logger
	guard   *util.Guard
	chMgr   *channel.Manager
	client  *collector.Client
	sched   *scheduler.Scheduler
	metrics *metrics.Metrics

	reg *registry

	mu       sync.Mutex
	lastN    int
	cursor   string
	lastUUID string

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewService constructs the Dynamic Configuration Service.
func NewService(cfg *config.Config, log logger.Logger, chMgr *channel.Manager, sched *scheduler.Scheduler) *Service {
	scoped := log.WithComponent("DYNCONFIG")
	return &Service{
		cfg:    cfg,
		log:    scoped,
		guard:  util.NewGuard(scoped),
		chMgr:  chMgr,
		client: collector.NewClient(),
		sched:  sched,
		reg:    newRegistry(),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

func (s *Service) Kind() string  { return Kind }
func (s *Service) Priority() int { return Priority }

// SetMetrics attaches the collector set config-sync durations are reported
// to. Optional; uncalled, polls simply don't report.
func (s *Service) SetMetrics(mt *metrics.Metrics) {
	s.metrics = mt
}

func (s *Service) Prepare(context.Context) error { return nil }

// Start registers this service as the executor for configuration-discovery
// commands and launches the poll worker.
func (s *Service) Start(context.Context) error {
	s.sched.RegisterExecutor(collector.CommandConfigurationDiscovery, scheduler.ExecutorFunc(s.handleCommand))
	s.guard.Go("config-poll-loop", s.runPollLoop)
	return nil
}

func (s *Service) OnComplete(context.Context) {}

// Shutdown stops the poll worker and waits for it to exit.
func (s *Service) Shutdown(context.Context) error {
	close(s.stopCh)
	<-s.doneCh
	return nil
}

// Register adds a watcher to the registry. Safe to call after boot; the
// next poll tick will notice the registry grew and force a full resync.
func (s *Service) Register(w Watcher) error {
	return s.reg.register(w)
}

// runPollLoop blocks, polling at GET_AGENT_DYNAMIC_CONFIG_INTERVAL, until
// stopCh closes. Launched by Start via util.Guard.
func (s *Service) runPollLoop() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.cfg.DynamicConfigInterval)
	defer ticker.Stop()

	ctx := context.Background()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.guard.Run("config-poll", func() { s.poll(ctx) })
		}
	}
}

// poll implements the per-tick poll/diff algorithm.
func (s *Service) poll(ctx context.Context) {
	if s.chMgr.State() != channel.Connected {
		return
	}

	s.mu.Lock()
	n := s.reg.count()
	if n != s.lastN {
		s.cursor = ""
		s.lastN = n
	}
	req := collector.SyncRequest{Service: s.cfg.ServiceName, UUID: s.cursor}
	s.mu.Unlock()

	conn, err := s.chMgr.Snapshot()
	if err != nil {
		s.log.Warn().Err(err).Msg("no channel available, skipping poll")
		return
	}

	rpcCtx, cancel := context.WithTimeout(ctx, s.cfg.UpstreamTimeout)
	defer cancel()

	start := time.Now()
	resp, err := s.client.FetchConfigurations(rpcCtx, conn, req)
	if s.metrics != nil {
		s.metrics.ObserveConfigSync(time.Since(start))
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("configuration sync failed")
		s.chMgr.ReportError(err)
		return
	}

	commands, skipped := collector.DecodeBatch(resp)
	if skipped > 0 {
		s.log.Warn().Int("skipped", skipped).Msg("dropped commands with unknown kind")
	}

	s.sched.Receive(commands)
}

// handleCommand implements "Handling a ConfigurationDiscoveryCommand":
// delivered back via the scheduler → executor path, it computes a diff
// against the registry and notifies watchers.
func (s *Service) handleCommand(cmd scheduler.Command) error {
	incomingUUID, _ := cmd.Get(argUUID)

	s.mu.Lock()
	if incomingUUID != "" && incomingUUID == s.lastUUID {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	handled := make(map[string]bool)

	for _, arg := range cmd.Args {
		if arg.Key == argUUID {
			continue
		}
		handled[arg.Key] = true
		s.applyChange(arg.Key, arg.Value)
	}

	remaining := s.reg.keys()
	sort.Strings(remaining)
	for _, key := range remaining {
		if handled[key] {
			continue
		}
		s.applyChange(key, "")
	}

	s.mu.Lock()
	s.lastUUID = incomingUUID
	s.cursor = incomingUUID
	s.mu.Unlock()

	return nil
}

func (s *Service) applyChange(key, value string) {
	watcher, ok := s.reg.watcherFor(key)
	if !ok {
		s.log.Debug().Str("key", key).Msg("no watcher registered, skipping")
		return
	}

	value = strings.TrimSpace(value)
	current, hasValue, _ := s.reg.currentValue(key)

	switch {
	case value == "":
		if hasValue {
			watcher.Notify("", Delete)
			s.reg.clearValue(key)
		}
	case !hasValue || current != value:
		watcher.Notify(value, Modify)
		s.reg.recordValue(key, value)
	}
}
