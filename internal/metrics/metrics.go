package metrics

import (
	"sync"
	"sync/atomic"
)

// MetricKey is a strongly typed metric identifier.
type MetricKey string

// Metric keys (centralized)
const (
	// Clipboard store
	EntriesLive         MetricKey = "clipboard_entries_live"
	SubmissionsTotal    MetricKey = "clipboard_submissions_total"
	RejectedTotal       MetricKey = "clipboard_rejected_total"
	ListsTotal          MetricKey = "clipboard_lists_total"
	EntriesExpiredTotal MetricKey = "clipboard_entries_expired_total"

	// TTL
	TTLCleanupRunsTotal    MetricKey = "ttl_cleanup_runs_total"
	TTLEntriesRemovedTotal MetricKey = "ttl_entries_removed_total"

	// API
	HTTPRequestsTotal       MetricKey = "http_requests_total"
	HTTPInternalErrorsTotal MetricKey = "http_internal_errors_total"
	HTTPPanicsTotal         MetricKey = "http_panics_total"
)

// Registry stores all metrics.
type Registry struct {
	mu       sync.RWMutex
	counters map[MetricKey]*int64
}

// NewRegistry creates a metrics registry.
func NewRegistry() *Registry {
	return &Registry{
		counters: make(map[MetricKey]*int64),
	}
}

// Inc increments a metric by 1.
func (r *Registry) Inc(key MetricKey) {
	r.Add(key, 1)
}

// Dec decrements a metric by 1. Used for gauges such as live entries.
func (r *Registry) Dec(key MetricKey) {
	r.Add(key, -1)
}

// Add increments a metric by delta.
func (r *Registry) Add(key MetricKey, delta int64) {
	r.mu.RLock()
	ptr, ok := r.counters[key]
	r.mu.RUnlock()

	if ok {
		atomic.AddInt64(ptr, delta)
		return
	}

	// Slow path: metric not yet initialized
	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if ptr, ok = r.counters[key]; ok {
		atomic.AddInt64(ptr, delta)
		return
	}

	var val int64
	r.counters[key] = &val
	atomic.AddInt64(&val, delta)
}

// Get returns the current value of a metric, zero when unset.
func (r *Registry) Get(key MetricKey) int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ptr, ok := r.counters[key]
	if !ok {
		return 0
	}
	return atomic.LoadInt64(ptr)
}

// Snapshot returns a copy of every metric keyed by name.
// Mutating the result does not affect the registry.
func (r *Registry) Snapshot() map[string]int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]int64, len(r.counters))
	for key, ptr := range r.counters {
		out[string(key)] = atomic.LoadInt64(ptr)
	}
	return out
}
