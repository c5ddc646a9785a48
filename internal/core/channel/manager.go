package channel

import (
	"context"
	"math/rand"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/looplab/fsm"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"

	"agentcore/internal/apperrors"
	"agentcore/internal/config"
	"agentcore/internal/config/logger"
	"agentcore/internal/core/util"
	"agentcore/internal/metrics"
)

// Kind is this service's lookup identity in the Service Manager.
const Kind = "channel_manager"

// Priority places the Channel Manager right after identity synthesis: it
// needs INSTANCE_NAME for the identity decorator but must be ready before
// anything that depends on a live channel (scheduler, dynconfig).
const Priority = -1000

const (
	stateDisconnect = "DISCONNECT"
	stateConnected  = "CONNECTED"

	eventConnect    = "connect"
	eventDisconnect = "disconnect"
)

// Manager maintains the single logical RPC channel to the collector fleet:
// selection, reconnection, DNS refresh, decoration, and listener fan-out.
type Manager struct {
	cfg     *config.Config
	log     logger.Logger
	guard   *util.Guard
	metrics *metrics.Metrics

	machine *fsm.FSM

	mu        sync.RWMutex
	listeners []Listener

	channelPtr atomic.Pointer[managedChannel]

	servers  *serverList
	resolver *net.Resolver
	rng      *rand.Rand

	// reconnectNeeded is set from ReportError (config-poll goroutine) and
	// read/cleared from tick (channel-health goroutine); atomic keeps that
	// cross-goroutine signal race-free. ReportError's only other writes are
	// the atomic channelPtr swap and the state machine's disconnect event.
	reconnectNeeded atomic.Bool
	sameIndexCount  int
	disabled        bool

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewManager constructs the Channel Manager. If BACKEND_SERVICE is unset,
// the manager disables itself at Prepare time: missing backend logs
// and disables uplink without aborting the host process.
func NewManager(cfg *config.Config, log logger.Logger) *Manager {
	scoped := log.WithComponent("CHANNEL")
	return &Manager{
		cfg:      cfg,
		log:      scoped,
		guard:    util.NewGuard(scoped),
		resolver: net.DefaultResolver,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

func (m *Manager) Kind() string  { return Kind }
func (m *Manager) Priority() int { return Priority }

// SetMetrics attaches the collector set this manager reports its connected
// state to. Optional; a nil or never-called manager simply doesn't report.
func (m *Manager) SetMetrics(mt *metrics.Metrics) {
	m.metrics = mt
}

// Prepare parses the configured server list and builds the state machine.
// A missing or malformed BACKEND_SERVICE disables the manager rather than
// failing boot.
func (m *Manager) Prepare(context.Context) error {
	if !m.cfg.HasBackendService() {
		m.log.Error().Msg("BACKEND_SERVICE not configured, disabling channel manager")
		m.disabled = true
		return nil
	}

	servers, err := newServerList(m.cfg.BackendService)
	if err != nil {
		m.log.Error().Err(err).Msg("invalid BACKEND_SERVICE, disabling channel manager")
		m.disabled = true
		return nil
	}
	m.servers = servers
	m.reconnectNeeded.Store(true)

	m.machine = fsm.NewFSM(
		stateDisconnect,
		fsm.Events{
			{Name: eventConnect, Src: []string{stateDisconnect, stateConnected}, Dst: stateConnected},
			{Name: eventDisconnect, Src: []string{stateConnected, stateDisconnect}, Dst: stateDisconnect},
		},
		fsm.Callbacks{
			"enter_" + stateConnected: func(ctx context.Context, e *fsm.Event) {
				m.notify(Connected)
			},
			"enter_" + stateDisconnect: func(ctx context.Context, e *fsm.Event) {
				m.notify(Disconnect)
			},
		},
	)

	return nil
}

// Start launches the channel-health worker.
func (m *Manager) Start(context.Context) error {
	if m.disabled {
		return nil
	}

	m.guard.Go("channel-health", m.runTickLoop)
	return nil
}

func (m *Manager) OnComplete(context.Context) {}

// Shutdown stops the health worker and releases the current channel.
func (m *Manager) Shutdown(context.Context) error {
	if m.disabled {
		return nil
	}

	close(m.stopCh)
	<-m.doneCh

	if ch := m.channelPtr.Load(); ch != nil {
		ch.close()
	}
	return nil
}

// AddListener registers a listener for channel-state transitions.
// Notification order is registration order.
func (m *Manager) AddListener(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// Snapshot returns the currently active connection, if any.
func (m *Manager) Snapshot() (*grpc.ClientConn, error) {
	ch := m.channelPtr.Load()
	if ch == nil || ch.conn == nil {
		return nil, apperrors.ErrNoChannelAvailable
	}
	return ch.conn, nil
}

// State returns the current state machine value.
func (m *Manager) State() State {
	if m.machine == nil {
		return Disconnect
	}
	if m.machine.Current() == stateConnected {
		return Connected
	}
	return Disconnect
}

// ReportError is called by uplink consumers (Dynamic Configuration Service
// or any other listener) when an RPC fails. Network-class errors flip the
// state to DISCONNECT; other errors are ignored.
func (m *Manager) ReportError(err error) {
	if !isNetworkError(err) {
		return
	}
	if m.State() != Connected {
		return
	}

	m.log.Warn().Err(err).Msg("network error reported, disconnecting channel")

	if ch := m.channelPtr.Swap(nil); ch != nil {
		ch.close()
	}
	m.reconnectNeeded.Store(true)

	_ = m.machine.Event(context.Background(), eventDisconnect)
}

func (m *Manager) notify(state State) {
	if m.metrics != nil {
		m.metrics.SetConnected(state == Connected)
	}

	m.mu.RLock()
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.RUnlock()

	for _, l := range listeners {
		m.notifyOne(l, state)
	}
}

func (m *Manager) notifyOne(l Listener, state State) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error().Msgf("listener panicked during notify: %v", r)
		}
	}()
	l.OnStateChange(state)
}

func (m *Manager) runTickLoop() {
	defer close(m.doneCh)

	ticker := time.NewTicker(m.cfg.ChannelCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.guard.Run("channel-tick", m.tick)
		}
	}
}

// tick implements the periodic reconnect/health-check algorithm.
func (m *Manager) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.UpstreamTimeout)
	defer cancel()

	if m.cfg.ResolveDNSPeriodically && m.reconnectNeeded.Load() {
		if err := util.RetryBounded(ctx, m.cfg.ChannelCheckInterval/2, func() error {
			return m.servers.refreshDNS(ctx, m.resolver)
		}); err != nil {
			m.log.Warn().Err(err).Msg("DNS refresh failed")
		}
	}

	if !m.reconnectNeeded.Load() {
		return
	}
	if m.servers.len() == 0 {
		m.log.Warn().Msg("server list is empty, cannot reconnect")
		return
	}

	index := m.rng.Intn(m.servers.len())

	if !m.servers.hasLastIdx || index != m.servers.lastIndex {
		m.reconnectTo(ctx, index)
		return
	}

	m.sameIndexCount++
	forceThreshold := m.cfg.ForceReconnectionPeriod
	if forceThreshold <= 0 {
		forceThreshold = 1
	}

	if ch := m.channelPtr.Load(); ch != nil {
		ready := connIsReady(ch.conn)
		if ready || m.sameIndexCount >= forceThreshold {
			forced := m.sameIndexCount >= forceThreshold
			m.reconnectNeeded.Store(false)
			m.sameIndexCount = 0
			if forced {
				// looplab/fsm treats same-state Event calls as a
				// NoTransitionError and skips enter_CONNECTED, so the
				// forced re-notification is delivered directly instead of
				// through the state machine.
				m.notify(Connected)
			}
		}
		return
	}

	m.reconnectTo(ctx, index)
}

func (m *Manager) reconnectTo(ctx context.Context, index int) {
	target := m.servers.at(index)

	if old := m.channelPtr.Swap(nil); old != nil {
		old.close()
	}

	opts := dialOptions(m.cfg.ServiceName, m.cfg.InstanceName, m.cfg.AuthToken, m.cfg.TLSEnabled)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		m.log.Error().Str("target", target).Err(err).Msg("failed to build channel")
		return
	}

	m.channelPtr.Store(&managedChannel{target: target, conn: conn})
	m.servers.lastIndex = index
	m.servers.hasLastIdx = true
	m.reconnectNeeded.Store(false)
	m.sameIndexCount = 0

	_ = m.machine.Event(ctx, eventConnect)
}

func connIsReady(conn *grpc.ClientConn) bool {
	if conn == nil {
		return false
	}
	state := conn.GetState()
	return state == connectivity.Ready || state == connectivity.Idle
}
