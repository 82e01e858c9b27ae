package cache

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Cache is the read-through surface the services depend on.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	// DeletePrefix drops every entry whose key starts with prefix.
	DeletePrefix(prefix string) int
	Size() int
}

var _ Cache[int] = (*LRUCache[int])(nil)

// Managed is what a cache must offer to be swept and reported by a Manager.
type Managed interface {
	CleanExpired() int
	Stats() Stats
}

// Manager sweeps expired entries of its named caches on an interval and
// exposes their statistics.
type Manager struct {
	mu     sync.Mutex
	caches map[string]Managed

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func NewManager() *Manager {
	return &Manager{caches: make(map[string]Managed)}
}

// Register adds c under name, replacing any cache registered before with
// the same name.
func (m *Manager) Register(name string, c Managed) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches[name] = c
}

// StartCleanup starts the sweeper. Later calls are no-ops.
func (m *Manager) StartCleanup(interval time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stop != nil {
		return
	}
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	go m.run(interval, m.stop, m.done)
}

func (m *Manager) run(interval time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				slog.Debug("Expired cache entries removed", "component", "cache", "count", n)
			}
		case <-stop:
			return
		}
	}
}

// Sweep removes expired entries from every cache now.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	caches := make([]Managed, 0, len(m.caches))
	for _, c := range m.caches {
		caches = append(caches, c)
	}
	m.mu.Unlock()

	total := 0
	for _, c := range caches {
		total += c.CleanExpired()
	}
	return total
}

// NamedStats pairs a cache name with its statistics.
type NamedStats struct {
	Name string
	Stats
}

// Stats reports every registered cache, sorted by name.
func (m *Manager) Stats() []NamedStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]NamedStats, 0, len(m.caches))
	for name, c := range m.caches {
		out = append(out, NamedStats{Name: name, Stats: c.Stats()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Stop ends the sweeper and waits for it. Safe to call more than once and
// without StartCleanup.
func (m *Manager) Stop() {
	m.once.Do(func() {
		m.mu.Lock()
		stop, done := m.stop, m.done
		m.mu.Unlock()
		if stop == nil {
			return
		}
		close(stop)
		<-done
	})
}
