// Package util holds the small set of concurrency and identifier helpers
// shared by the channel, scheduler, dynconfig, and identity packages.
package util

import (
	"fmt"

	"github.com/getsentry/sentry-go"

	"agentcore/internal/config/logger"
)

// Guard runs functions in a way that keeps one failing worker from taking
// down the process: panics are recovered, reported to Sentry, and logged,
// never propagated past the guard.
type Guard struct {
	log logger.Logger
}

// NewGuard returns a Guard that logs recovered panics through log.
func NewGuard(log logger.Logger) *Guard {
	return &Guard{log: log}
}

// Go runs fn in a new goroutine, recovering and reporting any panic.
func (g *Guard) Go(name string, fn func()) {
	go g.Run(name, fn)
}

// Run executes fn on the calling goroutine, recovering and reporting any
// panic instead of letting it unwind further. Useful for ticker callbacks
// and queue-dispatch loops that must keep running after a bad iteration.
func (g *Guard) Run(name string, fn func()) {
	defer g.recoverFrom(name)
	fn()
}

func (g *Guard) recoverFrom(name string) {
	r := recover()
	if r == nil {
		return
	}

	err := fmt.Errorf("panic in %s: %v", name, r)

	if hub := sentry.CurrentHub(); hub != nil {
		hub.Recover(r)
	}

	if g.log != nil {
		g.log.Error().Str("worker", name).Err(err).Msg("recovered from panic")
	}
}
