package tournament

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/auctiontourney/engine/pkg/mechanism"
)

// An agent holding onto its observation must not be able to reach back
// into engine state: every field is a value copy, down to the rescinded
// flag pointer and the allocation slices inside history records.
func TestBuildObservation_SharesNoMemoryWithStore(t *testing.T) {
	cfg := testConfig()
	store, err := NewStore(cfg, []AgentID{"x", "y"})
	require.NoError(t, err)

	require.NoError(t, store.AddHolding("x", Holding{Stage: 0, Period: 0, Quantity: money("100"), PricePaidPer: money("11"), PointsPerToken: money("1")}))
	store.AppendPeriodRecord(PeriodRecord{
		Stage: 0, PeriodInStage: 0, AbsolutePeriod: 0,
		Winner:      "x",
		Allocations: []mechanism.Allocation{{AgentID: "x", Tokens: money("100"), PricePerToken: money("11"), TotalPaid: money("1100")}},
		AdmittedBids: []mechanism.Bid{
			{AgentID: "x", PricePerToken: money("12"), Sequence: 0},
			{AgentID: "y", PricePerToken: money("11"), Sequence: 1},
		},
	})
	_, err = store.EnqueueRescind("x", 0, 0, 0)
	require.NoError(t, err)
	store.RevealDueRescinds(2)

	obs, err := buildObservation(cfg, store, "x", 0, 2, 2, money("200"), money("10"), money("1"))
	require.NoError(t, err)

	// Vandalize every mutable reach of the observation.
	require.True(t, obs.History[0].IsRescindedPublicly())
	*obs.History[0].Rescinded = false
	obs.History[0].Allocations[0].Tokens = money("999999")
	obs.History[0].AdmittedBids[0].PricePerToken = money("0")
	obs.Holdings = append(obs.Holdings, Holding{Stage: 9})
	obs.StageTokens[0] = money("-1")
	obs.Leaderboard[0].StageTokens[0] = money("-1")

	// The store is untouched.
	rec := store.Log()[0]
	require.True(t, rec.IsRescindedPublicly())
	require.True(t, rec.Allocations[0].Tokens.Equal(money("100")))
	require.True(t, rec.AdmittedBids[0].PricePerToken.Equal(money("12")))

	state, err := store.AgentState("x")
	require.NoError(t, err)
	require.Empty(t, state.Holdings)
	require.True(t, state.StageTokens[0].IsZero())
}

func TestBuildObservation_PositionFields(t *testing.T) {
	cfg := testConfig()
	store, err := NewStore(cfg, []AgentID{"x"})
	require.NoError(t, err)

	obs, err := buildObservation(cfg, store, "x", 1, 3, 12, money("66"), money("10.50"), money("1.5"))
	require.NoError(t, err)

	require.Equal(t, 1, obs.Stage)
	require.Equal(t, 3, obs.PeriodInStage)
	require.Equal(t, 12, obs.AbsolutePeriod)
	require.Equal(t, 5, obs.PeriodsRemainingInStage) // 9 - 3 - 1
	require.Equal(t, 1, obs.StagesRemaining)         // 3 - 1 - 1
}
