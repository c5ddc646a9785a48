package dynconfig

import (
	"fmt"
	"sync"

	"agentcore/internal/apperrors"
)

// registry is the watcher registry: map from configuration-property key to
// a watcher, with exclusive-write/shared-read discipline.
type registry struct {
	mu       sync.RWMutex
	watchers map[string]*watcherEntry
}

func newRegistry() *registry {
	return &registry{watchers: make(map[string]*watcherEntry)}
}

// register inserts w under its key. Duplicate keys are a programming error
// and fail.
func (r *registry) register(w Watcher) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.watchers[w.Key()]; exists {
		return fmt.Errorf("%w: key=%s", apperrors.ErrWatcherKeyCollision, w.Key())
	}

	r.watchers[w.Key()] = &watcherEntry{watcher: w}
	return nil
}

func (r *registry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.watchers)
}

func (r *registry) watcherFor(key string) (Watcher, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.watchers[key]
	if !ok {
		return nil, false
	}
	return e.watcher, true
}

// currentValue returns the last value recorded for key, whether a value is
// currently recorded, and whether key is registered at all.
func (r *registry) currentValue(key string) (value string, hasValue bool, found bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.watchers[key]
	if !ok {
		return "", false, false
	}
	return e.value, e.hasValue, true
}

// keys returns every registered key, in no particular order — the diff
// algorithm that consumes this iterates the incoming wire order instead,
// and sorts these keys to visit the ones absent from the response.
func (r *registry) keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.watchers))
	for k := range r.watchers {
		out = append(out, k)
	}
	return out
}

func (r *registry) recordValue(key, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.watchers[key]; ok {
		e.hasValue = true
		e.value = value
	}
}

func (r *registry) clearValue(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.watchers[key]; ok {
		e.hasValue = false
		e.value = ""
	}
}
