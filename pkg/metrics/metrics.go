// Package metrics provides the counters, gauges, and histograms the
// tournament engine reports against: bids submitted/admitted/dropped,
// rescind activity, period clearing latency, and tournament lifecycle
// transitions (see standard.go). Counter and Gauge are lock-free via
// atomic operations; Histogram is mutex-guarded since it tracks a
// running count/sum/min/max rather than a single int64.
package metrics

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// scalar is the shared core of Counter and Gauge: a named atomic int64.
type scalar struct {
	name  string
	value atomic.Int64
}

// Name returns the metric name.
func (s *scalar) Name() string { return s.name }

// Value returns the current value.
func (s *scalar) Value() int64 { return s.value.Load() }

// Counter is a monotonically increasing counter.
type Counter struct {
	scalar
}

// NewCounter returns a new Counter with the given name.
func NewCounter(name string) *Counter {
	c := &Counter{}
	c.name = name
	return c
}

// Inc increments the counter by 1.
func (c *Counter) Inc() { c.value.Add(1) }

// Add increments the counter by n. Non-positive deltas are ignored
// because counters are monotonic.
func (c *Counter) Add(n int64) {
	if n > 0 {
		c.value.Add(n)
	}
}

// Gauge is a value that can go up and down.
type Gauge struct {
	scalar
}

// NewGauge returns a new Gauge with the given name.
func NewGauge(name string) *Gauge {
	g := &Gauge{}
	g.name = name
	return g
}

// Set sets the gauge to the given value.
func (g *Gauge) Set(v int64) { g.value.Store(v) }

// Inc increments the gauge by 1.
func (g *Gauge) Inc() { g.value.Add(1) }

// Dec decrements the gauge by 1.
func (g *Gauge) Dec() { g.value.Add(-1) }

// Histogram tracks the distribution of observed values, e.g. how long a
// period takes to clear. It keeps running count/sum/min/max only; no
// buckets, no quantiles.
type Histogram struct {
	name string

	mu    sync.Mutex
	count int64
	sum   float64
	min   float64
	max   float64
}

// NewHistogram returns a new Histogram with the given name.
func NewHistogram(name string) *Histogram {
	return &Histogram{
		name: name,
		min:  math.MaxFloat64,
		max:  -math.MaxFloat64,
	}
}

// Name returns the metric name.
func (h *Histogram) Name() string { return h.name }

// Observe records a value.
func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	h.count++
	h.sum += v
	if v < h.min {
		h.min = v
	}
	if v > h.max {
		h.max = v
	}
	h.mu.Unlock()
}

// stats returns a consistent snapshot of the running statistics. With no
// observations, min and max report 0 rather than their sentinel extremes.
func (h *Histogram) stats() (count int64, sum, min, max float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.count == 0 {
		return 0, h.sum, 0, 0
	}
	return h.count, h.sum, h.min, h.max
}

// Count returns the number of observations.
func (h *Histogram) Count() int64 {
	count, _, _, _ := h.stats()
	return count
}

// Sum returns the sum of all observed values.
func (h *Histogram) Sum() float64 {
	_, sum, _, _ := h.stats()
	return sum
}

// Min returns the smallest observed value, or 0 with no observations.
func (h *Histogram) Min() float64 {
	_, _, min, _ := h.stats()
	return min
}

// Max returns the largest observed value, or 0 with no observations.
func (h *Histogram) Max() float64 {
	_, _, _, max := h.stats()
	return max
}

// Mean returns the arithmetic mean of all observations, or 0 with none.
func (h *Histogram) Mean() float64 {
	count, sum, _, _ := h.stats()
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// Timer times a single operation. runPeriod uses one to record each
// mechanism clearing pass into PeriodClearTime, in microseconds — a
// clearing pass is sub-millisecond work, so milliseconds would flatten
// every observation to zero.
type Timer struct {
	start time.Time
	hist  *Histogram
}

// NewTimer starts a timer that records into h when stopped.
func NewTimer(h *Histogram) *Timer {
	return &Timer{start: time.Now(), hist: h}
}

// Stop records the elapsed time in microseconds into the associated
// histogram and returns the duration.
func (t *Timer) Stop() time.Duration {
	d := time.Since(t.start)
	if t.hist != nil {
		t.hist.Observe(float64(d.Microseconds()))
	}
	return d
}
