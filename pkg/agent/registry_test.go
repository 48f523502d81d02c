package agent

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/auctiontourney/engine/pkg/tournament"
)

func TestNewRegistry_DuplicateID(t *testing.T) {
	a := NewSimpleBidder("x", decimal.NewFromInt(1))
	b := NewRescinder("x", decimal.NewFromInt(2))

	_, err := NewRegistry(a, b)
	require.ErrorIs(t, err, ErrDuplicateID)
}

func TestNewRegistry_PreservesOrder(t *testing.T) {
	a := NewSimpleBidder("x", decimal.NewFromInt(1))
	b := NewRescinder("y", decimal.NewFromInt(2))

	reg, err := NewRegistry(a, b)
	require.NoError(t, err)
	require.Equal(t, 2, reg.Len())

	agents := reg.Agents()
	require.Equal(t, tournament.AgentID("x"), agents[0].ID())
	require.Equal(t, tournament.AgentID("y"), agents[1].ID())
}

func TestSimpleBidder_BidsFloorPlusDelta(t *testing.T) {
	b := NewSimpleBidder("x", decimal.NewFromInt(2))
	obs := tournament.Observation{Floor: decimal.NewFromInt(10)}

	decision, err := b.DecideBids(obs)
	require.NoError(t, err)
	require.Len(t, decision.Bids, 1)
	require.True(t, decision.Bids[0].PricePerToken.Equal(decimal.NewFromInt(12)))

	rescind, err := b.DecideRescind(obs, tournament.PeriodRecord{})
	require.NoError(t, err)
	require.False(t, rescind.Rescind)
}

func TestRescinder_AlwaysRescinds(t *testing.T) {
	r := NewRescinder("x", decimal.NewFromInt(5))
	obs := tournament.Observation{Floor: decimal.NewFromInt(10)}

	decision, err := r.DecideRescind(obs, tournament.PeriodRecord{Winner: "x"})
	require.NoError(t, err)
	require.True(t, decision.Rescind)
}
