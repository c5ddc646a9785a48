package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"agentcore/internal/core/channel"
	"agentcore/internal/core/dynconfig"
	"agentcore/internal/core/identity"
	"agentcore/internal/core/scheduler"
	"agentcore/internal/core/service"
	"agentcore/internal/metrics"
)

// Module provides the fx dependency injection options for the resident
// core: every subsystem constructor, registration into the Service
// Manager, and the App lifecycle hook.
var Module = fx.Options(
	fx.Provide(
		service.NewManager,
		channel.NewManager,
		scheduler.NewScheduler,
		identity.NewGenerator,
		dynconfig.NewService,
		metrics.New,
		func() prometheus.Registerer { return prometheus.DefaultRegisterer },
	),
	fx.Provide(NewApp),
	fx.Invoke(
		wireMetrics,
		registerServices,
	),
	fx.Invoke(Register),
)

// wireMetrics registers the collector set with the process registry and
// attaches it to the subsystems that report against it.
func wireMetrics(reg prometheus.Registerer, mt *metrics.Metrics, chMgr *channel.Manager, sched *scheduler.Scheduler, dyn *dynconfig.Service) {
	mt.Register(reg)
	chMgr.SetMetrics(mt)
	sched.SetMetrics(mt)
	dyn.SetMetrics(mt)
}

// registerServices installs every core subsystem into the Service Manager
// in discovery order, so default/override/sole resolution sees them in
// the sequence this wiring intends.
func registerServices(manager *service.Manager, identityGen *identity.Generator, chMgr *channel.Manager, sched *scheduler.Scheduler, dyn *dynconfig.Service) {
	manager.Register(identityGen)
	manager.Register(chMgr)
	manager.Register(sched)
	manager.Register(dyn)
}

