package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	evaluations     *prom.CounterVec
	clustersSkipped prom.Counter
	maintenance     *prom.CounterVec
	batchDuration   prom.Histogram
	batchNotices    prom.Histogram
	cachedEntries   prom.Gauge
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		evaluations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "servicestate",
			Name:      "evaluations_total",
			Help:      "Service state evaluations by outcome",
		}, []string{"outcome"}),
		clustersSkipped: prom.NewCounter(prom.CounterOpts{
			Namespace: "servicestate",
			Name:      "clusters_skipped_total",
			Help:      "Clusters skipped because they no longer exist",
		}),
		maintenance: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "servicestate",
			Name:      "maintenance_events_total",
			Help:      "Maintenance events by result",
		}, []string{"result"}),
		batchDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "servicestate",
			Name:      "batch_duration_seconds",
			Help:      "Time to evaluate one component update batch",
			Buckets:   prom.DefBuckets,
		}),
		batchNotices: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "servicestate",
			Name:      "batch_notices",
			Help:      "Component update notices per batch",
			Buckets:   prom.ExponentialBuckets(1, 4, 8),
		}),
		cachedEntries: prom.NewGauge(prom.GaugeOpts{
			Namespace: "servicestate",
			Name:      "cached_states",
			Help:      "Published (cluster, service) states held in memory",
		}),
	}
	reg.MustRegister(pr.evaluations, pr.clustersSkipped, pr.maintenance, pr.batchDuration, pr.batchNotices, pr.cachedEntries)
	return pr
}

func (p *PrometheusRecorder) IncEvaluation(outcome Outcome) {
	if p == nil {
		return
	}
	p.evaluations.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncClusterSkipped() {
	if p == nil {
		return
	}
	p.clustersSkipped.Inc()
}

func (p *PrometheusRecorder) IncMaintenance(published bool) {
	if p == nil {
		return
	}
	res := "ignored"
	if published {
		res = "published"
	}
	p.maintenance.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) ObserveBatch(notices int, d time.Duration) {
	if p == nil {
		return
	}
	p.batchNotices.Observe(float64(notices))
	p.batchDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetCachedEntries(n int) {
	if p == nil {
		return
	}
	p.cachedEntries.Set(float64(n))
}
