package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"agentcore/internal/app/cli"
	"agentcore/internal/config"
	"agentcore/internal/config/logger"
	"agentcore/internal/core/service"
	"agentcore/internal/metrics"
)

type mockLifecycle struct {
	hooks []fx.Hook
}

func (m *mockLifecycle) Append(hook fx.Hook) {
	m.hooks = append(m.hooks, hook)
}

func testApp(opts *cli.Options) *App {
	cfg := config.DefaultConfig()
	manager := service.NewManager(&logger.NoopLogger{})
	return NewApp(cfg, &logger.NoopLogger{}, manager, metrics.New(), opts)
}

func TestApp_Run_VersionReturnsImmediately(t *testing.T) {
	app := testApp(&cli.Options{Type: cli.CommandVersion})

	done := make(chan struct{})
	go func() {
		app.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return for CommandVersion")
	}
}

func TestApp_Run_StopUnblocksRun(t *testing.T) {
	app := testApp(&cli.Options{Type: cli.CommandRun})

	done := make(chan struct{})
	go func() {
		app.Run(context.Background())
		close(done)
	}()

	// give Run a moment to reach the signal wait before stopping it.
	time.Sleep(20 * time.Millisecond)
	app.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not unblock Run")
	}
}

func TestRegister_AppendsStartAndStopHooks(t *testing.T) {
	app := testApp(&cli.Options{Type: cli.CommandVersion})
	lc := &mockLifecycle{}

	Register(lc, app)

	require.Len(t, lc.hooks, 1)
	assert.NotNil(t, lc.hooks[0].OnStart)
	assert.NotNil(t, lc.hooks[0].OnStop)
}

func TestRegister_OnStopWaitsForRun(t *testing.T) {
	app := testApp(&cli.Options{Type: cli.CommandVersion})
	lc := &mockLifecycle{}
	Register(lc, app)

	require.NoError(t, lc.hooks[0].OnStart(context.Background()))
	require.NoError(t, lc.hooks[0].OnStop(context.Background()))
}
