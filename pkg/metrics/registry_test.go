package metrics

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_GetOrCreateReturnsSameInstance(t *testing.T) {
	r := NewRegistry()
	c1 := r.Counter("tournament.periods_run")
	c1.Inc()
	c2 := r.Counter("tournament.periods_run")
	require.Same(t, c1, c2)
	require.Equal(t, int64(1), c2.Value())

	require.Same(t, r.Gauge("g"), r.Gauge("g"))
	require.Same(t, r.Histogram("h"), r.Histogram("h"))
}

func TestRegistry_SameNameDifferentTypesAreDistinct(t *testing.T) {
	// Counters, gauges, and histograms live in separate namespaces; the
	// same key resolves independently per type.
	r := NewRegistry()
	r.Counter("tournament.rescinds").Add(7)
	r.Gauge("tournament.rescinds").Set(-1)
	require.Equal(t, int64(7), r.Counter("tournament.rescinds").Value())
	require.Equal(t, int64(-1), r.Gauge("tournament.rescinds").Value())
}

func TestRegistry_ConcurrentGetOrCreate(t *testing.T) {
	r := NewRegistry()
	const goroutines = 64
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			// Half contend on one name, half fan out.
			r.Counter("tournament.contended").Inc()
			r.Counter(fmt.Sprintf("tournament.fanout_%d", i%8)).Inc()
		}(i)
	}
	wg.Wait()
	require.Equal(t, int64(goroutines), r.Counter("tournament.contended").Value())
}

func TestRegistry_SnapshotIsIsolated(t *testing.T) {
	r := NewRegistry()
	r.Counter("c").Add(2)
	r.Gauge("g").Set(5)
	r.Histogram("h").Observe(1.5)

	snap := r.Snapshot()
	require.Equal(t, int64(2), snap["c"])
	require.Equal(t, int64(5), snap["g"])
	hist, ok := snap["h"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, int64(1), hist["count"])

	// Mutations after the snapshot do not leak into it.
	r.Counter("c").Inc()
	require.Equal(t, int64(2), snap["c"])
}

func TestDefaultRegistry_BacksStandardMetrics(t *testing.T) {
	require.NotNil(t, DefaultRegistry)
	require.Same(t, PeriodsRun, DefaultRegistry.Counter("tournament.periods_run"))
	require.Same(t, PendingRescinds, DefaultRegistry.Gauge("tournament.pending_rescinds"))
	require.Same(t, PeriodClearTime, DefaultRegistry.Histogram("tournament.period_clear_us"))
}

func TestStandardMetrics_NamingConvention(t *testing.T) {
	// Every pre-declared engine metric lives under the "tournament." key
	// space, the convention the Prometheus exporter flattens from.
	for _, name := range []string{
		PeriodsRun.Name(),
		ZeroAllocationPeriods.Name(),
		BidsSubmitted.Name(),
		BidsAdmitted.Name(),
		BidsDropped.Name(),
		AgentDecisionFailures.Name(),
		RescindsOffered.Name(),
		RescindsTaken.Name(),
		RescindsRevealed.Name(),
		PendingRescinds.Name(),
		TournamentsStarted.Name(),
		TournamentsCompleted.Name(),
		StagesAwarded.Name(),
		PeriodClearTime.Name(),
	} {
		require.True(t, strings.HasPrefix(name, "tournament."), "metric %q outside the tournament namespace", name)
	}
}
