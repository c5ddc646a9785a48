package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"agentcore/internal/apperrors"
	"agentcore/internal/config/logger"
)

// Manager owns the discovered service list and the resolved active set. It
// is process-wide but not a package-level singleton: callers hold an
// explicit handle, obtained through dependency injection.
type Manager struct {
	log logger.Logger

	mu          sync.RWMutex
	discovered  []Service
	active      map[string]Service
	roles       map[string]Role
	installedAt map[string]int
	statuses    map[string]Status
	resolved    bool
}

// NewManager constructs an empty Manager. Services are added with Register
// before Boot is called.
func NewManager(log logger.Logger) *Manager {
	return &Manager{
		log:         log.WithComponent("SERVICE_MANAGER"),
		active:      make(map[string]Service),
		roles:       make(map[string]Role),
		installedAt: make(map[string]int),
		statuses:    make(map[string]Status),
	}
}

// Register adds a service to the discovery list. Order of registration is
// the discovery order used for default/override resolution and for
// OnComplete dispatch.
func (m *Manager) Register(svc Service) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.discovered = append(m.discovered, svc)
	m.statuses[svc.Kind()] = StatusPending
}

// Find returns the active service registered for kind, if any.
func (m *Manager) Find(kind string) (Service, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	svc, ok := m.active[kind]
	return svc, ok
}

// Status reports the resolution/boot outcome for kind.
func (m *Manager) Status(kind string) Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.statuses[kind]
}

// Boot resolves the active set from the discovered services and runs
// Prepare, Start, and OnComplete in the required order: prepare and
// start ascending priority, OnComplete in discovery order. A failure in any
// phase is logged against that service only; the rest of the boot proceeds.
func (m *Manager) Boot(ctx context.Context) error {
	m.mu.Lock()
	if err := m.resolveLocked(); err != nil {
		m.mu.Unlock()
		return err
	}
	ordered := m.orderedActiveLocked()
	discoveryOrder := m.activeInDiscoveryOrderLocked()
	m.mu.Unlock()

	for _, svc := range ordered {
		if err := svc.Prepare(ctx); err != nil {
			m.fail(svc.Kind(), err)
		}
	}

	for _, svc := range ordered {
		if m.Status(svc.Kind()) == StatusFailed {
			continue
		}
		if err := svc.Start(ctx); err != nil {
			m.fail(svc.Kind(), err)
		}
	}

	for _, svc := range discoveryOrder {
		if m.Status(svc.Kind()) == StatusFailed {
			continue
		}
		svc.OnComplete(ctx)
		m.markActive(svc.Kind())
	}

	return nil
}

// Shutdown invokes Shutdown on every active service in descending priority
// order. Errors are logged per-service; shutdown of the remaining services
// continues regardless.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.RLock()
	ordered := m.orderedActiveLocked()
	m.mu.RUnlock()

	for i := len(ordered) - 1; i >= 0; i-- {
		svc := ordered[i]
		if err := svc.Shutdown(ctx); err != nil {
			m.log.Error().Str("kind", svc.Kind()).Err(err).Msg("service shutdown failed")
		}
	}
}

func (m *Manager) fail(kind string, err error) {
	m.mu.Lock()
	m.statuses[kind] = StatusFailed
	m.mu.Unlock()

	m.log.Error().Str("kind", kind).Err(err).Msg("service lifecycle phase failed")
}

func (m *Manager) markActive(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.statuses[kind] = StatusActive
}

// resolveLocked implements the default/override/sole resolution scheme of
// resolveLocked implements the default/override/sole resolution scheme.
// Must be called with m.mu held for writing.
func (m *Manager) resolveLocked() error {
	if m.resolved {
		return nil
	}

	for idx, svc := range m.discovered {
		role, overrideKind := roleOf(svc)
		kind := svc.Kind()

		switch role {
		case RoleDefault:
			if _, exists := m.active[kind]; !exists {
				m.active[kind] = svc
				m.roles[kind] = RoleDefault
				m.installedAt[kind] = idx
			}

		case RoleSole:
			if _, exists := m.active[kind]; exists {
				return fmt.Errorf("%w: kind=%s", apperrors.ErrDuplicateService, kind)
			}
			m.active[kind] = svc
			m.roles[kind] = RoleSole
			m.installedAt[kind] = idx

		case RoleOverride:
			target := overrideKind
			if _, exists := m.active[target]; exists {
				if m.roles[target] != RoleDefault {
					return fmt.Errorf("%w: target=%s by=%s", apperrors.ErrOverrideTargetNotDefault, target, kind)
				}
			}
			m.active[target] = svc
			m.roles[target] = RoleOverride
			m.installedAt[target] = idx
		}
	}

	m.resolved = true
	return nil
}

func (m *Manager) orderedActiveLocked() []Service {
	out := make([]Service, 0, len(m.active))
	for _, svc := range m.active {
		out = append(out, svc)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority() < out[j].Priority()
	})
	return out
}

// activeInDiscoveryOrderLocked orders the resolved services by the
// discovery index at which they won their slot — not by their own Kind(),
// since an override's slot may differ from the overriding service's
// identity. This is the "discovery order" OnComplete dispatch requires.
func (m *Manager) activeInDiscoveryOrderLocked() []Service {
	type entry struct {
		svc Service
		idx int
	}

	entries := make([]entry, 0, len(m.active))
	for kind, svc := range m.active {
		entries = append(entries, entry{svc: svc, idx: m.installedAt[kind]})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].idx < entries[j].idx })

	out := make([]Service, len(entries))
	for i, e := range entries {
		out[i] = e.svc
	}
	return out
}
