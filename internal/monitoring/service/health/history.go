package health

import (
	"sync"
	"time"

	"github.com/merchantops/sentinel/internal/monitoring/model"
)

// History keeps a bounded trailing window of check results per service for
// trend display. Entries older than the window are pruned on insert, not by a
// separate job. Buckets are partitioned per service to keep contention local.
type History struct {
	window  time.Duration
	mu      sync.RWMutex
	buckets map[string]*serviceHistory
}

type serviceHistory struct {
	mu      sync.Mutex
	results []model.HealthCheckResult
}

func NewHistory(window time.Duration) *History {
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &History{window: window, buckets: make(map[string]*serviceHistory)}
}

func (h *History) bucket(service string) *serviceHistory {
	h.mu.RLock()
	b, ok := h.buckets[service]
	h.mu.RUnlock()
	if ok {
		return b
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if b, ok = h.buckets[service]; ok {
		return b
	}
	b = &serviceHistory{}
	h.buckets[service] = b
	return b
}

// Append records a result and prunes entries older than the window.
func (h *History) Append(r model.HealthCheckResult) {
	b := h.bucket(r.ServiceName)
	cutoff := r.Timestamp.Add(-h.window)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.results = append(b.results, r)
	i := 0
	for i < len(b.results) && b.results[i].Timestamp.Before(cutoff) {
		i++
	}
	if i > 0 {
		b.results = append(b.results[:0:0], b.results[i:]...)
	}
}

// Recent returns results for one service newer than since, oldest first.
func (h *History) Recent(service string, since time.Time) []model.HealthCheckResult {
	b := h.bucket(service)
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []model.HealthCheckResult
	for _, r := range b.results {
		if r.Timestamp.After(since) {
			out = append(out, r)
		}
	}
	return out
}

// Services lists all service names with recorded history.
func (h *History) Services() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.buckets))
	for name := range h.buckets {
		out = append(out, name)
	}
	return out
}

// UptimePct computes the fraction of non-unhealthy checks for a service since
// the given time, as a percentage. Returns 100 when there is no history.
func (h *History) UptimePct(service string, since time.Time) float64 {
	results := h.Recent(service, since)
	if len(results) == 0 {
		return 100
	}
	up := 0
	for _, r := range results {
		if r.Status != model.HealthUnhealthy {
			up++
		}
	}
	return float64(up) / float64(len(results)) * 100
}
