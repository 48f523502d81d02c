// system_metrics.go provides collection and export of runtime system
// metrics (goroutine count, memory usage, GC statistics, disk usage) and
// configurable batch-harness-level metrics (active tournament count,
// periods cleared, overall run progress) for a process driving many
// tournaments at once.
package metrics

import (
	"encoding/json"
	"runtime"
	"sync"
	"time"
)

// MemStats holds key memory statistics from the Go runtime.
type MemStats struct {
	// HeapAlloc is the number of bytes of allocated heap objects.
	HeapAlloc uint64 `json:"heapAlloc"`

	// TotalAlloc is the cumulative bytes allocated for heap objects.
	TotalAlloc uint64 `json:"totalAlloc"`

	// Sys is the total bytes of memory obtained from the OS.
	Sys uint64 `json:"sys"`

	// NumGC is the number of completed GC cycles.
	NumGC uint64 `json:"numGC"`
}

// DiskStats holds disk usage information.
type DiskStats struct {
	// Total is the total capacity of the disk in bytes.
	Total uint64 `json:"total"`

	// Used is the number of bytes in use on the disk.
	Used uint64 `json:"used"`

	// Free is the number of bytes available on the disk.
	Free uint64 `json:"free"`
}

// ActiveTournamentsFunc is a callback that returns the number of
// tournaments currently running in a batch harness process.
type ActiveTournamentsFunc func() int

// PeriodsClearedFunc is a callback that returns the cumulative count of
// periods cleared across all tournaments in the process.
type PeriodsClearedFunc func() uint64

// RunProgressFunc is a callback that returns the current batch run's
// progress as a float64 between 0.0 (not started) and 1.0 (every
// scheduled tournament has completed).
type RunProgressFunc func() float64

// DiskUsageFunc is a callback that returns disk usage for a given path.
type DiskUsageFunc func(path string) DiskStats

// SystemMetrics tracks key system-level and batch-harness-level metrics
// for a process driving one or more tournaments.
type SystemMetrics struct {
	mu        sync.RWMutex
	startTime time.Time

	// Cached snapshot from the last Sample() call.
	memStats    MemStats
	goroutines  int
	lastCollect time.Time

	// Configurable callbacks for batch-harness-level metrics.
	activeTournamentsFn ActiveTournamentsFunc
	periodsClearedFn    PeriodsClearedFunc
	runProgressFn       RunProgressFunc
	diskUsageFn         DiskUsageFunc
}

// NewSystemMetrics creates a new SystemMetrics instance. Callbacks default
// to no-op functions returning zero values; use Set*Func methods to override.
func NewSystemMetrics() *SystemMetrics {
	return &SystemMetrics{
		startTime:            time.Now(),
		activeTournamentsFn:  func() int { return 0 },
		periodsClearedFn:     func() uint64 { return 0 },
		runProgressFn:        func() float64 { return 0.0 },
		diskUsageFn:          func(path string) DiskStats { return DiskStats{} },
	}
}

// SetActiveTournamentsFunc sets the callback for the current count of
// running tournaments.
func (sm *SystemMetrics) SetActiveTournamentsFunc(fn ActiveTournamentsFunc) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if fn != nil {
		sm.activeTournamentsFn = fn
	}
}

// SetPeriodsClearedFunc sets the callback for the cumulative periods-
// cleared count.
func (sm *SystemMetrics) SetPeriodsClearedFunc(fn PeriodsClearedFunc) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if fn != nil {
		sm.periodsClearedFn = fn
	}
}

// SetRunProgressFunc sets the callback for the batch run's overall progress.
func (sm *SystemMetrics) SetRunProgressFunc(fn RunProgressFunc) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if fn != nil {
		sm.runProgressFn = fn
	}
}

// SetDiskUsageFunc sets the callback for retrieving disk usage.
func (sm *SystemMetrics) SetDiskUsageFunc(fn DiskUsageFunc) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if fn != nil {
		sm.diskUsageFn = fn
	}
}

// Sample takes a snapshot of the current system metrics from the Go
// runtime. Call this periodically (e.g. every few seconds) to update
// cached values.
func (sm *SystemMetrics) Sample() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.memStats = MemStats{
		HeapAlloc:  ms.HeapAlloc,
		TotalAlloc: ms.TotalAlloc,
		Sys:        ms.Sys,
		NumGC:      uint64(ms.NumGC),
	}
	sm.goroutines = runtime.NumGoroutine()
	sm.lastCollect = time.Now()
}

// GoRoutineCount returns the number of goroutines at the last Sample() call.
// If Sample() has not been called, reads the current goroutine count directly.
func (sm *SystemMetrics) GoRoutineCount() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if sm.goroutines == 0 {
		return runtime.NumGoroutine()
	}
	return sm.goroutines
}

// MemoryUsage returns the memory statistics from the last Sample() call.
// If Sample() has not been called, performs a live read.
func (sm *SystemMetrics) MemoryUsage() MemStats {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if sm.lastCollect.IsZero() {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		return MemStats{
			HeapAlloc:  ms.HeapAlloc,
			TotalAlloc: ms.TotalAlloc,
			Sys:        ms.Sys,
			NumGC:      uint64(ms.NumGC),
		}
	}
	return sm.memStats
}

// DiskUsage returns disk usage statistics for the given path by invoking
// the configured disk usage callback.
func (sm *SystemMetrics) DiskUsage(path string) DiskStats {
	sm.mu.RLock()
	fn := sm.diskUsageFn
	sm.mu.RUnlock()
	return fn(path)
}

// UptimeSeconds returns the number of seconds since the SystemMetrics
// instance was created.
func (sm *SystemMetrics) UptimeSeconds() float64 {
	return time.Since(sm.startTime).Seconds()
}

// ActiveTournaments returns the current count of running tournaments by
// invoking the callback.
func (sm *SystemMetrics) ActiveTournaments() int {
	sm.mu.RLock()
	fn := sm.activeTournamentsFn
	sm.mu.RUnlock()
	return fn()
}

// PeriodsCleared returns the cumulative periods-cleared count by invoking
// the callback.
func (sm *SystemMetrics) PeriodsCleared() uint64 {
	sm.mu.RLock()
	fn := sm.periodsClearedFn
	sm.mu.RUnlock()
	return fn()
}

// RunProgress returns the batch run's overall progress as a float64
// between 0.0 (not started) and 1.0 (fully complete).
func (sm *SystemMetrics) RunProgress() float64 {
	sm.mu.RLock()
	fn := sm.runProgressFn
	sm.mu.RUnlock()

	p := fn()
	// Clamp to [0.0, 1.0].
	if p < 0.0 {
		return 0.0
	}
	if p > 1.0 {
		return 1.0
	}
	return p
}

// Collect implements CustomCollector so a SystemMetrics instance can be
// registered directly with a PrometheusExporter via RegisterCollector,
// exposing the batch-harness-level gauges alongside the registry's own
// counters/gauges/histograms.
func (sm *SystemMetrics) Collect() []MetricLine {
	return []MetricLine{
		{Name: "active_tournaments", Value: float64(sm.ActiveTournaments())},
		{Name: "periods_cleared", Value: float64(sm.PeriodsCleared())},
		{Name: "run_progress", Value: sm.RunProgress()},
	}
}

// metricsSnapshot is the internal type used for JSON serialization of all
// system metrics.
type metricsSnapshot struct {
	Goroutines        int      `json:"goroutines"`
	Memory            MemStats `json:"memory"`
	UptimeSec         float64  `json:"uptimeSeconds"`
	ActiveTournaments int      `json:"activeTournaments"`
	PeriodsCleared    uint64   `json:"periodsCleared"`
	RunProgress       float64  `json:"runProgress"`
	CollectedAt       string   `json:"collectedAt"`
}

// ExportJSON serializes all current metrics as a JSON object. It performs
// a fresh Sample() before exporting to ensure up-to-date values.
func (sm *SystemMetrics) ExportJSON() ([]byte, error) {
	sm.Sample()

	sm.mu.RLock()
	memSnap := sm.memStats
	goroutineSnap := sm.goroutines
	sm.mu.RUnlock()

	snapshot := metricsSnapshot{
		Goroutines:        goroutineSnap,
		Memory:            memSnap,
		UptimeSec:         sm.UptimeSeconds(),
		ActiveTournaments: sm.ActiveTournaments(),
		PeriodsCleared:    sm.PeriodsCleared(),
		RunProgress:       sm.RunProgress(),
		CollectedAt:       time.Now().UTC().Format(time.RFC3339),
	}

	return json.Marshal(snapshot)
}

// LastCollectTime returns the time of the last Sample() call, or zero
// if Sample() has never been called.
func (sm *SystemMetrics) LastCollectTime() time.Time {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.lastCollect
}

// GoVersion returns the Go runtime version string.
func GoVersion() string {
	return runtime.Version()
}

// NumCPU returns the number of logical CPUs available.
func NumCPU() int {
	return runtime.NumCPU()
}

// GOARCH returns the target architecture.
func GOARCH() string {
	return runtime.GOARCH
}

// GOOS returns the target operating system.
func GOOS() string {
	return runtime.GOOS
}
