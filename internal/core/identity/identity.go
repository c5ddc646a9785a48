// Package identity synthesizes the agent's INSTANCE_NAME before any other
// service boots, per the external interface contract in the configuration
// surface: "<uuid-without-dashes>@<ipv4>" when the operator hasn't pinned
// one explicitly.
package identity

import (
	"context"
	"math"
	"net"

	"agentcore/internal/config"
	"agentcore/internal/config/logger"
	"agentcore/internal/core/util"
)

// Kind is this service's lookup identity in the Service Manager.
const Kind = "identity"

// Generator is a Service Manager participant with the lowest possible
// boot priority, guaranteeing INSTANCE_NAME is resolved before any
// service that might read it through cfg.
type Generator struct {
	cfg *config.Config
	log logger.Logger

	instanceName string
}

// NewGenerator constructs the identity service. cfg is mutated in Prepare
// if it has no INSTANCE_NAME set.
func NewGenerator(cfg *config.Config, log logger.Logger) *Generator {
	return &Generator{cfg: cfg, log: log.WithComponent("IDENTITY")}
}

func (g *Generator) Kind() string  { return Kind }
func (g *Generator) Priority() int { return math.MinInt32 }

// Prepare synthesizes INSTANCE_NAME if the operator left it blank.
func (g *Generator) Prepare(context.Context) error {
	if g.cfg.InstanceName != "" {
		g.instanceName = g.cfg.InstanceName
		return nil
	}

	g.instanceName = Synthesize()
	g.cfg.InstanceName = g.instanceName

	g.log.Info().Str("instance_name", g.instanceName).Msg("synthesized instance name")
	return nil
}

func (g *Generator) Start(context.Context) error { return nil }
func (g *Generator) OnComplete(context.Context)  {}
func (g *Generator) Shutdown(context.Context) error {
	return nil
}

// InstanceName returns the resolved INSTANCE_NAME, valid after Prepare.
func (g *Generator) InstanceName() string {
	return g.instanceName
}

// Synthesize builds "<uuid-without-dashes>@<ipv4>", falling back to
// 0.0.0.0 if no outbound-routable address can be determined.
func Synthesize() string {
	return util.NewIDNoDashes() + "@" + localIPv4()
}

func localIPv4() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "0.0.0.0"
	}

	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}

	return "0.0.0.0"
}
