package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/fx"

	"agentcore/internal/app/cli"
	"agentcore/internal/config"
	"agentcore/internal/config/logger"
	"agentcore/internal/core/service"
	"agentcore/internal/metrics"
)

// App wires the resident core's lifecycle to the process: boot the Service
// Manager and block until a termination signal arrives. App does not serve
// the metrics itself; they are only registered with the process registry.
type App struct {
	cfg     *config.Config
	log     logger.Logger
	manager *service.Manager
	metrics *metrics.Metrics
	opts    *cli.Options

	cancel context.CancelFunc
	doneCh chan struct{}
}

// NewApp creates the application container with its dependencies.
func NewApp(cfg *config.Config, log logger.Logger, manager *service.Manager, mt *metrics.Metrics, opts *cli.Options) *App {
	return &App{
		cfg:     cfg,
		log:     log,
		manager: manager,
		metrics: mt,
		opts:    opts,
		doneCh:  make(chan struct{}),
	}
}

// Run executes the parsed command. For CommandVersion it prints and
// returns immediately; for CommandRun it boots the core and blocks until a
// termination signal arrives.
func (a *App) Run(ctx context.Context) {
	defer close(a.doneCh)

	if a.opts.Type == cli.CommandVersion {
		fmt.Printf("agent version %s\n", cli.Version)
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	defer cancel()

	if err := a.manager.Boot(runCtx); err != nil {
		a.log.Error().Err(err).Msg("service manager boot failed")
		return
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.log.Info().Msgf("received signal %s, shutting down", sig)
	case <-runCtx.Done():
		a.log.Info().Msg("context cancelled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer shutdownCancel()
	a.manager.Shutdown(shutdownCtx)
}

// Stop cancels a running App, unblocking Run. Safe to call even if Run
// hasn't reached its signal wait yet.
func (a *App) Stop() {
	if a.cancel != nil {
		a.cancel()
	}
}

// Register wires App into fx's lifecycle: OnStart launches Run in the
// background, OnStop cancels it and waits for it to finish tearing down.
func Register(lifecycle fx.Lifecycle, app *App) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go app.Run(context.Background())
			return nil
		},
		OnStop: func(ctx context.Context) error {
			app.Stop()
			select {
			case <-app.doneCh:
			case <-ctx.Done():
			}
			return nil
		},
	})
}
