package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.IncEvaluation(OutcomePublished)
	pr.IncEvaluation(OutcomePublished)
	pr.IncEvaluation(OutcomeUnchanged)
	pr.IncClusterSkipped()
	pr.IncMaintenance(true)
	pr.IncMaintenance(false)
	pr.ObserveBatch(12, 40*time.Millisecond)
	pr.SetCachedEntries(7)

	require.Equal(t, float64(2), testutil.ToFloat64(pr.evaluations.WithLabelValues("published")))
	require.Equal(t, float64(1), testutil.ToFloat64(pr.evaluations.WithLabelValues("unchanged")))
	require.Equal(t, float64(1), testutil.ToFloat64(pr.clustersSkipped))
	require.Equal(t, float64(1), testutil.ToFloat64(pr.maintenance.WithLabelValues("ignored")))
	require.Equal(t, float64(7), testutil.ToFloat64(pr.cachedEntries))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.IncEvaluation(OutcomeResolveFailed)
	pr.IncClusterSkipped()
	pr.SetCachedEntries(1)
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).IncEvaluation(OutcomePublishFailed)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), `servicestate_evaluations_total{outcome="publish_failed"} 1`))
}

var _ Recorder = NoopRecorder{}
var _ Recorder = (*PrometheusRecorder)(nil)
