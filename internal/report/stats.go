package report

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Havens-blog/e-cam-web/internal/domain"
)

// Stats counts reported failures by type and code.
type Stats struct {
	failures *prometheus.CounterVec

	mu     sync.Mutex
	counts map[string]int
}

// NewStats registers the failure counter on reg. A nil reg keeps the
// counter unregistered.
func NewStats(reg prometheus.Registerer) *Stats {
	return &Stats{
		failures: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cam",
				Subsystem: "client",
				Name:      "failures_total",
				Help:      "Total number of failed API calls by error type and code",
			},
			[]string{"type", "code"},
		),
		counts: make(map[string]int),
	}
}

// Record counts one failure.
func (s *Stats) Record(info *domain.ErrorInfo) {
	code := codeLabel(info.Code)
	s.failures.WithLabelValues(string(info.Type), code).Inc()

	s.mu.Lock()
	s.counts[string(info.Type)+":"+code]++
	s.mu.Unlock()
}

// Snapshot returns counts keyed "type:code".
func (s *Stats) Snapshot() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.counts))
	for k, v := range s.counts {
		out[k] = v
	}
	return out
}

// Clear resets all counts.
func (s *Stats) Clear() {
	s.failures.Reset()
	s.mu.Lock()
	clear(s.counts)
	s.mu.Unlock()
}

// Collector exposes the underlying counter.
func (s *Stats) Collector() *prometheus.CounterVec {
	return s.failures
}

func codeLabel(code int) string {
	if code == 0 {
		return "unknown"
	}
	return strconv.Itoa(code)
}
