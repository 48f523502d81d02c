package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCounter_MonotonicAddAndInc(t *testing.T) {
	c := NewCounter("test.bids_admitted")
	c.Inc()
	c.Add(4)
	require.Equal(t, int64(5), c.Value())
	require.Equal(t, "test.bids_admitted", c.Name())

	// Counters never decrease: negative and zero deltas are ignored.
	c.Add(0)
	c.Add(-100)
	require.Equal(t, int64(5), c.Value())
}

func TestCounter_ConcurrentInc(t *testing.T) {
	c := NewCounter("test.concurrent")
	const n = 1000
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			c.Inc()
		}()
	}
	wg.Wait()
	require.Equal(t, int64(n), c.Value())
}

func TestGauge_SetIncDec(t *testing.T) {
	g := NewGauge("test.pending_rescinds")
	g.Set(3)
	g.Inc()
	g.Dec()
	g.Dec()
	require.Equal(t, int64(2), g.Value())

	// Set overwrites, including to negative values.
	g.Set(-1)
	require.Equal(t, int64(-1), g.Value())
}

func TestHistogram_Statistics(t *testing.T) {
	h := NewHistogram("test.period_clear_us")
	for _, v := range []float64{10, 20, 30} {
		h.Observe(v)
	}
	require.Equal(t, int64(3), h.Count())
	require.InDelta(t, 60, h.Sum(), 1e-9)
	require.InDelta(t, 10, h.Min(), 1e-9)
	require.InDelta(t, 30, h.Max(), 1e-9)
	require.InDelta(t, 20, h.Mean(), 1e-9)
}

func TestHistogram_EmptyReportsZeros(t *testing.T) {
	h := NewHistogram("test.empty")
	require.Zero(t, h.Count())
	require.Zero(t, h.Min())
	require.Zero(t, h.Max())
	require.Zero(t, h.Mean())
}

func TestHistogram_ConcurrentObserve(t *testing.T) {
	h := NewHistogram("test.concurrent")
	const n = 500
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(v int) {
			defer wg.Done()
			h.Observe(float64(v))
		}(i)
	}
	wg.Wait()
	require.Equal(t, int64(n), h.Count())
	require.InDelta(t, 0, h.Min(), 1e-9)
	require.InDelta(t, n-1, h.Max(), 1e-9)
}

func TestTimer_RecordsMicrosecondsIntoHistogram(t *testing.T) {
	h := NewHistogram("test.timed")
	timer := NewTimer(h)
	time.Sleep(2 * time.Millisecond)
	d := timer.Stop()

	require.GreaterOrEqual(t, d, 2*time.Millisecond)
	require.Equal(t, int64(1), h.Count())
	require.GreaterOrEqual(t, h.Sum(), float64(2000)) // microseconds
}

func TestTimer_NilHistogramIsSafe(t *testing.T) {
	timer := NewTimer(nil)
	require.NotPanics(t, func() { timer.Stop() })
}
