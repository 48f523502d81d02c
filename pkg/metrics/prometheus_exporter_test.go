package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func scrapeExporter(t *testing.T, pe *PrometheusExporter, path string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	pe.Handler().ServeHTTP(rr, req)
	return rr.Code, rr.Body.String()
}

func TestPrometheusExporter_RegistryMetrics(t *testing.T) {
	r := NewRegistry()
	r.Counter("tournament.periods_run").Add(27)
	r.Gauge("tournament.pending_rescinds").Set(2)
	r.Histogram("tournament.period_clear_us").Observe(125)

	pe := NewPrometheusExporter(r, PrometheusConfig{Namespace: "TOURNEY"})
	code, body := scrapeExporter(t, pe, "/metrics")

	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "# TYPE TOURNEY_tournament_periods_run counter")
	require.Contains(t, body, "TOURNEY_tournament_periods_run 27")
	require.Contains(t, body, "TOURNEY_tournament_pending_rescinds 2")
	require.Contains(t, body, "TOURNEY_tournament_period_clear_us_count 1")
	require.Contains(t, body, "TOURNEY_tournament_period_clear_us_sum 125")
}

func TestPrometheusExporter_NoNamespace(t *testing.T) {
	r := NewRegistry()
	r.Counter("tournament.bids_admitted").Inc()

	pe := NewPrometheusExporter(r, PrometheusConfig{})
	_, body := scrapeExporter(t, pe, "/metrics")
	require.Contains(t, body, "tournament_bids_admitted 1")
}

func TestPrometheusExporter_RuntimeMetricsToggle(t *testing.T) {
	r := NewRegistry()

	pe := NewPrometheusExporter(r, PrometheusConfig{EnableRuntime: true})
	_, body := scrapeExporter(t, pe, "/metrics")
	require.Contains(t, body, "go_goroutines")

	pe = NewPrometheusExporter(r, PrometheusConfig{EnableRuntime: false})
	_, body = scrapeExporter(t, pe, "/metrics")
	require.NotContains(t, body, "go_goroutines")
}

func TestPrometheusExporter_CustomCollector(t *testing.T) {
	pe := NewPrometheusExporter(NewRegistry(), DefaultPrometheusConfig())

	sm := NewSystemMetrics()
	sm.SetActiveTournamentsFunc(func() int { return 3 })
	pe.RegisterCollector("harness", sm)

	_, body := scrapeExporter(t, pe, "/metrics")
	require.Contains(t, body, "TOURNEY_active_tournaments 3")

	pe.UnregisterCollector("harness")
	_, body = scrapeExporter(t, pe, "/metrics")
	require.NotContains(t, body, "TOURNEY_active_tournaments")
}

func TestPrometheusExporter_CollectorLabels(t *testing.T) {
	pe := NewPrometheusExporter(NewRegistry(), PrometheusConfig{})
	pe.RegisterCollector("labelled", collectorFunc(func() []MetricLine {
		return []MetricLine{{
			Name:   "run.progress",
			Labels: map[string]string{"run": "batch-7", "mechanism": "second_price"},
			Value:  0.5,
		}}
	}))

	_, body := scrapeExporter(t, pe, "/metrics")
	// Label keys render in sorted order.
	require.Contains(t, body, `run_progress{mechanism="second_price",run="batch-7"} 0.5`)
}

func TestPrometheusExporter_RejectsNonGet(t *testing.T) {
	pe := NewPrometheusExporter(NewRegistry(), DefaultPrometheusConfig())
	req := httptest.NewRequest(http.MethodPost, "/metrics", nil)
	rr := httptest.NewRecorder()
	pe.Handler().ServeHTTP(rr, req)
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

type collectorFunc func() []MetricLine

func (f collectorFunc) Collect() []MetricLine { return f() }
