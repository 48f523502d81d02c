package mechanism

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestSecondPrice_NoBids(t *testing.T) {
	m := NewSecondPrice()
	res, err := m.Clear(nil, d("100"), d("10"))
	require.NoError(t, err)
	require.True(t, res.ClearingPrice.Equal(d("10")))
	require.Empty(t, res.Allocations)
	require.Empty(t, res.Winner)
}

func TestSecondPrice_SingleBid_PaysFloor(t *testing.T) {
	m := NewSecondPrice()
	bids := []Bid{{AgentID: "a", PricePerToken: d("15"), Sequence: 0}}
	res, err := m.Clear(bids, d("100"), d("10"))
	require.NoError(t, err)
	require.True(t, res.ClearingPrice.Equal(d("10")))
	require.Equal(t, "a", res.Winner)
	require.Len(t, res.Allocations, 1)
	require.True(t, res.Allocations[0].Tokens.Equal(d("100")))
	require.True(t, res.Allocations[0].TotalPaid.Equal(d("1000")))
}

func TestSecondPrice_TwoBids_WinnerPaysSecond(t *testing.T) {
	m := NewSecondPrice()
	bids := []Bid{
		{AgentID: "x", PricePerToken: d("12"), Sequence: 0},
		{AgentID: "y", PricePerToken: d("11"), Sequence: 1},
	}
	res, err := m.Clear(bids, d("100"), d("10"))
	require.NoError(t, err)
	require.Equal(t, "x", res.Winner)
	require.True(t, res.ClearingPrice.Equal(d("11")))
	require.True(t, res.Allocations[0].TotalPaid.Equal(d("1100")))
}

func TestSecondPrice_TiedHighest_EarliestWins(t *testing.T) {
	m := NewSecondPrice()
	bids := []Bid{
		{AgentID: "late", PricePerToken: d("12"), Sequence: 5},
		{AgentID: "early", PricePerToken: d("12"), Sequence: 1},
		{AgentID: "low", PricePerToken: d("11"), Sequence: 2},
	}
	res, err := m.Clear(bids, d("50"), d("10"))
	require.NoError(t, err)
	require.Equal(t, "early", res.Winner)
	require.True(t, res.ClearingPrice.Equal(d("12")))
}

func TestSecondPrice_SecondHighestAtFloor_WinnerPaysFloor(t *testing.T) {
	// Admission already guarantees bids >= floor, but the second bid can
	// still equal the floor exactly; the winner pays that.
	m := NewSecondPrice()
	bids := []Bid{
		{AgentID: "x", PricePerToken: d("20"), Sequence: 0},
		{AgentID: "y", PricePerToken: d("10"), Sequence: 1},
	}
	res, err := m.Clear(bids, d("100"), d("10"))
	require.NoError(t, err)
	require.True(t, res.ClearingPrice.Equal(d("10")))
}

func TestSecondPrice_NegativeSupplyRejected(t *testing.T) {
	m := NewSecondPrice()
	_, err := m.Clear(nil, d("-1"), d("0"))
	require.ErrorIs(t, err, ErrNegativeSupply)
}
