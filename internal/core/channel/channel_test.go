package channel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"agentcore/internal/config"
	"agentcore/internal/config/logger"
)

func testManager(t *testing.T, backendService string) *Manager {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.BackendService = backendService
	cfg.ResolveDNSPeriodically = false
	cfg.ServiceName = "agentcore-test"
	cfg.InstanceName = "deadbeef@127.0.0.1"

	m := NewManager(cfg, &logger.NoopLogger{})
	require.NoError(t, m.Prepare(context.Background()))
	return m
}

type recordingListener struct {
	events []State
}

func (r *recordingListener) OnStateChange(s State) {
	r.events = append(r.events, s)
}

func TestIsNetworkError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"unavailable", status.Error(codes.Unavailable, "x"), true},
		{"permission denied", status.Error(codes.PermissionDenied, "x"), true},
		{"unauthenticated", status.Error(codes.Unauthenticated, "x"), true},
		{"resource exhausted", status.Error(codes.ResourceExhausted, "x"), true},
		{"unknown", status.Error(codes.Unknown, "x"), true},
		{"not found, not a network error", status.Error(codes.NotFound, "x"), false},
		{"invalid argument, not a network error", status.Error(codes.InvalidArgument, "x"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isNetworkError(tt.err))
		})
	}
}

func TestManager_PrepareDisablesWithoutBackendService(t *testing.T) {
	cfg := config.DefaultConfig()
	m := NewManager(cfg, &logger.NoopLogger{})

	require.NoError(t, m.Prepare(context.Background()))
	assert.True(t, m.disabled)

	require.NoError(t, m.Start(context.Background()))
	require.NoError(t, m.Shutdown(context.Background()))
}

func TestManager_InitialStateIsDisconnect(t *testing.T) {
	m := testManager(t, "127.0.0.1:10001")
	assert.Equal(t, Disconnect, m.State())
}

func TestManager_ReconnectNotifiesConnectedInRegistrationOrder(t *testing.T) {
	m := testManager(t, "127.0.0.1:10001,127.0.0.1:10002")

	first := &recordingListener{}
	second := &recordingListener{}
	m.AddListener(first)
	m.AddListener(second)

	m.reconnectTo(context.Background(), 1)

	assert.Equal(t, Connected, m.State())
	assert.Equal(t, []State{Connected}, first.events)
	assert.Equal(t, []State{Connected}, second.events)

	conn, err := m.Snapshot()
	require.NoError(t, err)
	assert.NotNil(t, conn)
}

func TestManager_ReportError_NetworkErrorDisconnectsOnce(t *testing.T) {
	m := testManager(t, "127.0.0.1:10001")
	listener := &recordingListener{}
	m.AddListener(listener)

	m.reconnectTo(context.Background(), 0)
	require.Equal(t, Connected, m.State())

	m.ReportError(status.Error(codes.Unavailable, "gone"))

	assert.Equal(t, Disconnect, m.State())
	assert.Equal(t, []State{Connected, Disconnect}, listener.events)

	_, err := m.Snapshot()
	assert.Error(t, err)
}

func TestManager_ReportError_NonNetworkErrorLeavesStateUnchanged(t *testing.T) {
	m := testManager(t, "127.0.0.1:10001")
	listener := &recordingListener{}
	m.AddListener(listener)

	m.reconnectTo(context.Background(), 0)
	listener.events = nil

	m.ReportError(status.Error(codes.InvalidArgument, "bad"))

	assert.Equal(t, Connected, m.State())
	assert.Empty(t, listener.events)
}

func TestManager_TickForcesReaffirmAfterThreshold(t *testing.T) {
	m := testManager(t, "127.0.0.1:10001")
	m.cfg.ForceReconnectionPeriod = 2

	require.NoError(t, m.machine.Event(context.Background(), eventConnect))

	listener := &recordingListener{}
	m.AddListener(listener)

	// simulate a channel stuck short of Ready (e.g. TRANSIENT_FAILURE)
	// picking the same, only configured server on every tick.
	m.channelPtr.Store(&managedChannel{target: "127.0.0.1:10001"})
	m.servers.hasLastIdx = true
	m.servers.lastIndex = 0
	m.reconnectNeeded.Store(true)

	m.tick()
	assert.Empty(t, listener.events, "no reaffirm before the threshold is reached")

	m.tick()
	assert.Equal(t, []State{Connected}, listener.events, "reaffirm fires once the threshold is reached")
	assert.False(t, m.reconnectNeeded.Load())
}

func TestManager_PanickingListenerIsSkipped(t *testing.T) {
	m := testManager(t, "127.0.0.1:10001")

	m.AddListener(ListenerFunc(func(State) { panic("boom") }))
	after := &recordingListener{}
	m.AddListener(after)

	assert.NotPanics(t, func() {
		m.reconnectTo(context.Background(), 0)
	})
	assert.Equal(t, []State{Connected}, after.events)
}
