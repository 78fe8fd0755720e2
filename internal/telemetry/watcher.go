package telemetry

import "sync"

// WatcherScope defines what a watcher tracks.
type WatcherScope int

const (
	// WatcherScopeMatch tracks events for both sides.
	WatcherScopeMatch WatcherScope = iota
	// WatcherScopeSide tracks events of one side only.
	WatcherScopeSide
)

func (ws WatcherScope) String() string {
	switch ws {
	case WatcherScopeMatch:
		return "MATCH"
	case WatcherScopeSide:
		return "SIDE"
	default:
		return "UNKNOWN"
	}
}

// Watcher observes events and aggregates them.
type Watcher interface {
	Watch(event Event)
	Reset()
	Scope() WatcherScope
	Key() string
}

// BaseWatcher carries the bookkeeping shared by watchers.
type BaseWatcher struct {
	scope WatcherScope
	side  string
	key   string
}

// NewBaseWatcher creates a base watcher. side is only used for
// WatcherScopeSide.
func NewBaseWatcher(scope WatcherScope, side, name string) BaseWatcher {
	key := name
	if scope == WatcherScopeSide && side != "" {
		key = side + "_" + name
	}
	return BaseWatcher{scope: scope, side: side, key: key}
}

// Scope returns the watcher's scope.
func (bw *BaseWatcher) Scope() WatcherScope { return bw.scope }

// Key returns the registry key.
func (bw *BaseWatcher) Key() string { return bw.key }

// Side returns the tracked side, empty for match scope.
func (bw *BaseWatcher) Side() string { return bw.side }

// Accepts reports whether the event falls within the watcher's scope.
func (bw *BaseWatcher) Accepts(event Event) bool {
	return bw.scope == WatcherScopeMatch || event.Side == bw.side
}

// Registry fans events out to its watchers. It is a Sink.
type Registry struct {
	mu       sync.RWMutex
	watchers map[string]Watcher
	order    []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{watchers: make(map[string]Watcher)}
}

// Add registers w, replacing any watcher with the same key.
func (r *Registry) Add(w Watcher) {
	if w == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.watchers[w.Key()]; !ok {
		r.order = append(r.order, w.Key())
	}
	r.watchers[w.Key()] = w
}

// Get returns the watcher registered under key.
func (r *Registry) Get(key string) Watcher {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.watchers[key]
}

// All returns the watchers in registration order.
func (r *Registry) All() []Watcher {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Watcher, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.watchers[k])
	}
	return out
}

// Reset resets every watcher.
func (r *Registry) Reset() {
	for _, w := range r.All() {
		w.Reset()
	}
}

// Notify implements Sink.
func (r *Registry) Notify(event Event) {
	for _, w := range r.All() {
		w.Watch(event)
	}
}
