package grant

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus counters an Engine reports against. A nil
// *Metrics is valid and simply records nothing; use NewMetrics to register
// a real set against the default registry, or build one with a custom
// registerer for tests.
type Metrics struct {
	GrantsIssued *prometheus.CounterVec
	Errors       *prometheus.CounterVec
}

// NewMetrics constructs and registers Engine metrics against the default
// Prometheus registry.
func NewMetrics() *Metrics {
	return &Metrics{
		GrantsIssued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "grant_issued_total",
			Help: "Total number of artifacts issued, by grant kind.",
		}, []string{"grant"}),
		Errors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "grant_errors_total",
			Help: "Total number of engine operations that failed, by RFC error kind.",
		}, []string{"kind"}),
	}
}

func (m *Metrics) recordIssued(grant string) {
	if m == nil {
		return
	}
	m.GrantsIssued.WithLabelValues(grant).Inc()
}

func (m *Metrics) recordError(kind ErrorKind) {
	if m == nil {
		return
	}
	m.Errors.WithLabelValues(string(kind)).Inc()
}
