package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

var _ Recorder = NoopRecorder{}
var _ Recorder = (*PrometheusRecorder)(nil)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveTaskDuration("render-templates", 150*time.Millisecond)
	pr.ObserveBuildDuration("production", 500*time.Millisecond)
	pr.IncTaskResult("render-templates", ResultWarning)
	pr.IncBuildOutcome(BuildOutcomeSuccess)
	pr.AddPagesRendered(true, 3)
	pr.AddPagesRendered(false, 0)
	pr.IncWatchTrigger("compile-styles")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) != 6 {
		t.Fatalf("expected 6 metric families, got %d", len(mfs))
	}
}

func TestHTTPHandlerServesRegistry(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).IncBuildOutcome(BuildOutcomeFailed)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `sitebuilder_build_outcomes_total{outcome="failed"} 1`) {
		t.Fatalf("missing outcome counter in:\n%s", rec.Body.String())
	}
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObserveTaskDuration("x", time.Second)
	pr.IncTaskResult("x", ResultFatal)
	pr.IncBuildOutcome(BuildOutcomeCanceled)
}
