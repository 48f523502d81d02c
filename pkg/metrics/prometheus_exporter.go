package metrics

import (
	"fmt"
	"math"
	"net/http"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// PrometheusConfig configures the Prometheus exporter.
type PrometheusConfig struct {
	// Namespace is an optional prefix prepended to all metric names
	// (e.g. "TOURNEY" produces "TOURNEY_tournament_periods_run").
	Namespace string
	// EnableRuntime controls whether Go runtime metrics (goroutines,
	// memory, GC) are included in the output.
	EnableRuntime bool
	// Path is the HTTP path to serve metrics on (default "/metrics").
	Path string
}

// DefaultPrometheusConfig returns a config with sensible defaults.
func DefaultPrometheusConfig() PrometheusConfig {
	return PrometheusConfig{
		Namespace:     "TOURNEY",
		EnableRuntime: true,
		Path:          "/metrics",
	}
}

// CustomCollector is a metric producer invoked on every scrape, alongside
// the registry. SystemMetrics implements it so a batch harness can expose
// its run-level gauges through the same endpoint.
type CustomCollector interface {
	Collect() []MetricLine
}

// MetricLine is a single data point emitted by a CustomCollector.
type MetricLine struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// PrometheusExporter renders a Registry (plus optional runtime stats and
// custom collectors) in the Prometheus text exposition format and serves
// it over HTTP. Scrapes read the registry live; nothing is cached between
// requests.
type PrometheusExporter struct {
	mu         sync.RWMutex
	config     PrometheusConfig
	registry   *Registry
	collectors map[string]CustomCollector
}

// NewPrometheusExporter creates an exporter reading from registry.
func NewPrometheusExporter(registry *Registry, config PrometheusConfig) *PrometheusExporter {
	if config.Path == "" {
		config.Path = "/metrics"
	}
	return &PrometheusExporter{
		config:     config,
		registry:   registry,
		collectors: make(map[string]CustomCollector),
	}
}

// RegisterCollector adds a named custom collector, replacing any existing
// collector under the same name.
func (pe *PrometheusExporter) RegisterCollector(name string, c CustomCollector) {
	pe.mu.Lock()
	pe.collectors[name] = c
	pe.mu.Unlock()
}

// UnregisterCollector removes a previously registered custom collector.
func (pe *PrometheusExporter) UnregisterCollector(name string) {
	pe.mu.Lock()
	delete(pe.collectors, name)
	pe.mu.Unlock()
}

// Handler returns an http.Handler serving the configured metrics path.
func (pe *PrometheusExporter) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(pe.config.Path, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		w.Write([]byte(pe.scrape()))
	})
	return mux
}

// scrape renders one complete exposition document.
func (pe *PrometheusExporter) scrape() string {
	var b strings.Builder
	pe.writeRegistry(&b)
	if pe.config.EnableRuntime {
		pe.writeRuntime(&b)
	}
	pe.writeCollectors(&b)
	return b.String()
}

// emit writes the HELP/TYPE preamble for one metric family, then invokes
// body to append its sample lines.
func emit(b *strings.Builder, name, promType, help string, body func()) {
	fmt.Fprintf(b, "# HELP %s %s\n", name, help)
	fmt.Fprintf(b, "# TYPE %s %s\n", name, promType)
	body()
}

func (pe *PrometheusExporter) writeRegistry(b *strings.Builder) {
	pe.registry.mu.RLock()
	defer pe.registry.mu.RUnlock()

	for _, name := range sortedKeys(pe.registry.counters) {
		v := pe.registry.counters[name].Value()
		pn := pe.promName(name)
		emit(b, pn, "counter", name, func() {
			fmt.Fprintf(b, "%s %d\n", pn, v)
		})
	}
	for _, name := range sortedKeys(pe.registry.gauges) {
		v := pe.registry.gauges[name].Value()
		pn := pe.promName(name)
		emit(b, pn, "gauge", name, func() {
			fmt.Fprintf(b, "%s %d\n", pn, v)
		})
	}
	// Histograms carry no buckets (count/sum/min/max/mean only), so they
	// export as summaries.
	for _, name := range sortedKeys(pe.registry.histograms) {
		h := pe.registry.histograms[name]
		pn := pe.promName(name)
		emit(b, pn, "summary", name, func() {
			fmt.Fprintf(b, "%s_count %d\n", pn, h.Count())
			fmt.Fprintf(b, "%s_sum %s\n", pn, formatFloat(h.Sum()))
			if h.Count() > 0 {
				fmt.Fprintf(b, "%s_min %s\n", pn, formatFloat(h.Min()))
				fmt.Fprintf(b, "%s_max %s\n", pn, formatFloat(h.Max()))
				fmt.Fprintf(b, "%s_mean %s\n", pn, formatFloat(h.Mean()))
			}
		})
	}
}

func (pe *PrometheusExporter) writeRuntime(b *strings.Builder) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	prefix := pe.config.Namespace
	if prefix != "" {
		prefix += "_"
	}
	gauge := func(name, help string, value float64) {
		n := prefix + name
		emit(b, n, "gauge", help, func() {
			fmt.Fprintf(b, "%s %s\n", n, formatFloat(value))
		})
	}
	counter := func(name, help string, value float64) {
		n := prefix + name
		emit(b, n, "counter", help, func() {
			fmt.Fprintf(b, "%s %s\n", n, formatFloat(value))
		})
	}

	gauge("go_goroutines", "Number of active goroutines", float64(runtime.NumGoroutine()))
	gauge("go_threads", "GOMAXPROCS: max OS threads executing Go code at once", float64(runtime.GOMAXPROCS(0)))
	gauge("go_memstats_alloc_bytes", "Bytes of allocated heap objects", float64(m.Alloc))
	counter("go_memstats_alloc_bytes_total", "Total bytes allocated", float64(m.TotalAlloc))
	gauge("go_memstats_sys_bytes", "Bytes of memory obtained from the OS", float64(m.Sys))
	gauge("go_memstats_heap_inuse_bytes", "Bytes in in-use heap spans", float64(m.HeapInuse))
	gauge("go_memstats_heap_objects", "Number of allocated heap objects", float64(m.HeapObjects))
	counter("go_gc_cycles_total", "Total number of GC cycles", float64(m.NumGC))
	counter("go_gc_pause_total_seconds", "Total GC pause time in seconds", float64(m.PauseTotalNs)/1e9)
	gauge("process_start_time_seconds", "Process start time in seconds since epoch", float64(processStartTime.Unix()))
}

func (pe *PrometheusExporter) writeCollectors(b *strings.Builder) {
	pe.mu.RLock()
	names := make([]string, 0, len(pe.collectors))
	for name := range pe.collectors {
		names = append(names, name)
	}
	sort.Strings(names)
	collectors := make([]CustomCollector, len(names))
	for i, name := range names {
		collectors[i] = pe.collectors[name]
	}
	pe.mu.RUnlock()

	for _, c := range collectors {
		for _, line := range c.Collect() {
			pn := pe.promName(line.Name)
			if len(line.Labels) > 0 {
				fmt.Fprintf(b, "%s{%s} %s\n", pn, formatLabels(line.Labels), formatFloat(line.Value))
			} else {
				fmt.Fprintf(b, "%s %s\n", pn, formatFloat(line.Value))
			}
		}
	}
}

// promName flattens a dot-separated registry key into Prometheus form and
// prepends the namespace.
func (pe *PrometheusExporter) promName(name string) string {
	flat := strings.NewReplacer(".", "_", "-", "_").Replace(name)
	if pe.config.Namespace == "" {
		return flat
	}
	return pe.config.Namespace + "_" + flat
}

// formatLabels renders a label map as key="value" pairs in sorted key
// order, so scrapes are byte-stable.
func formatLabels(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%q", k, labels[k])
	}
	return strings.Join(parts, ",")
}

// formatFloat renders a float64 per the exposition format, including the
// special values.
func formatFloat(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	case math.IsNaN(v):
		return "NaN"
	}
	return fmt.Sprintf("%g", v)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// processStartTime is recorded at init for process_start_time_seconds.
var processStartTime = time.Now()
