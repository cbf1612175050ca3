package prometheus

import (
	"restaurant-menu/internal/core/domain"
	"restaurant-menu/internal/core/port"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "restaurant"

// Metrics holds the Prometheus collectors of the core services
type Metrics struct {
	UploadDuration *prometheus.HistogramVec
	UploadFailures *prometheus.CounterVec
	MergeFailures  *prometheus.CounterVec
	CodeConflicts  *prometheus.CounterVec
}

var _ port.Metrics = (*Metrics)(nil)

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UploadDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "duration_seconds",
			Help:      "Time spent storing a file, by provider",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider", "status"}),
		UploadFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "failures_total",
			Help:      "Total number of uploads rejected by a provider",
		}, []string{"provider"}),
		MergeFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "entity",
			Name:      "merge_failures_total",
			Help:      "Total number of updates rejected because a stored value has an unexpected shape",
		}, []string{"kind"}),
		CodeConflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sequence",
			Name:      "code_conflicts_total",
			Help:      "Total number of allocated domain codes already taken at insert time",
		}, []string{"prefix"}),
	}
}

// ObserveUpload records the duration and outcome of one upload
func (m *Metrics) ObserveUpload(provider domain.Provider, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		m.UploadFailures.WithLabelValues(string(provider)).Inc()
	}
	m.UploadDuration.WithLabelValues(string(provider), status).Observe(duration.Seconds())
}

// IncMergeFailure counts a rejected merge
func (m *Metrics) IncMergeFailure(kind domain.EntityKind) {
	m.MergeFailures.WithLabelValues(string(kind)).Inc()
}

// IncCodeConflict counts a code taken by a concurrent create
func (m *Metrics) IncCodeConflict(prefix string) {
	m.CodeConflicts.WithLabelValues(prefix).Inc()
}
