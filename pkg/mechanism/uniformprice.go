package mechanism

import (
	"sort"

	"github.com/shopspring/decimal"
)

// proRataPrecision is the fixed fractional precision (8 digits) used
// when rounding pro-rata shares under uniform-price clearing.
const proRataPrecision = 8

// uniformPrice is a multi-winner uniform-price auction. Bids express a
// price-per-token and a total-cost budget, from which a demanded
// quantity (TotalCost / PricePerToken) is implied. If total demand does
// not exceed supply, every bid fills in full at the floor price.
// Otherwise the clearing price is the marginal bid's price; bids
// strictly above it fill in full at that price, and bids exactly at it
// share the residual supply pro-rata by quantity demanded, with banker's
// rounding and the last tied bid (by admission order) absorbing any
// rounding residue so allocations sum exactly to the residual.
type uniformPrice struct{}

// NewUniformPrice returns the multi-winner uniform-price mechanism.
func NewUniformPrice() Mechanism { return uniformPrice{} }

func (uniformPrice) Tag() Tag { return UniformPrice }

type demandItem struct {
	bid Bid
	qty decimal.Decimal
}

func (uniformPrice) Clear(bids []Bid, supply, floor decimal.Decimal) (Result, error) {
	if supply.IsNegative() {
		return Result{}, ErrNegativeSupply
	}
	if floor.IsNegative() {
		return Result{}, ErrNegativeFloor
	}
	if len(bids) == 0 {
		return Result{ClearingPrice: floor}, nil
	}

	items := make([]demandItem, len(bids))
	for i, b := range bids {
		items[i] = demandItem{bid: b, qty: b.TotalCost.Div(b.PricePerToken)}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].bid.PricePerToken.Equal(items[j].bid.PricePerToken) {
			return items[i].bid.PricePerToken.GreaterThan(items[j].bid.PricePerToken)
		}
		return items[i].bid.Sequence < items[j].bid.Sequence
	})

	totalDemand := decimal.Zero
	for _, it := range items {
		totalDemand = totalDemand.Add(it.qty)
	}

	if totalDemand.LessThanOrEqual(supply) {
		allocations := make([]Allocation, 0, len(items))
		for _, it := range items {
			allocations = append(allocations, Allocation{
				AgentID:       it.bid.AgentID,
				Tokens:        it.qty,
				PricePerToken: floor,
				TotalPaid:     it.qty.Mul(floor),
			})
		}
		return Result{
			ClearingPrice:   floor,
			Allocations:     allocations,
			TokensAllocated: totalDemand,
		}, nil
	}

	cumulative := decimal.Zero
	marginal := len(items) - 1
	for i, it := range items {
		cumulative = cumulative.Add(it.qty)
		if cumulative.GreaterThanOrEqual(supply) {
			marginal = i
			break
		}
	}
	clearingPrice := items[marginal].bid.PricePerToken

	var allocations []Allocation
	filled := decimal.Zero
	var tied []demandItem
	for _, it := range items {
		switch {
		case it.bid.PricePerToken.GreaterThan(clearingPrice):
			allocations = append(allocations, Allocation{
				AgentID:       it.bid.AgentID,
				Tokens:        it.qty,
				PricePerToken: clearingPrice,
				TotalPaid:     it.qty.Mul(clearingPrice),
			})
			filled = filled.Add(it.qty)
		case it.bid.PricePerToken.Equal(clearingPrice):
			tied = append(tied, it)
		}
	}

	residual := supply.Sub(filled)
	tiedDemand := decimal.Zero
	for _, it := range tied {
		tiedDemand = tiedDemand.Add(it.qty)
	}

	allocatedFromResidual := decimal.Zero
	for i, it := range tied {
		var share decimal.Decimal
		if i == len(tied)-1 {
			// Last tied bid (by admission order) absorbs the rounding
			// residue so the total sums exactly to residual.
			share = residual.Sub(allocatedFromResidual)
		} else {
			share = residual.Mul(it.qty).Div(tiedDemand).RoundBank(proRataPrecision)
			allocatedFromResidual = allocatedFromResidual.Add(share)
		}
		allocations = append(allocations, Allocation{
			AgentID:       it.bid.AgentID,
			Tokens:        share,
			PricePerToken: clearingPrice,
			TotalPaid:     share.Mul(clearingPrice),
		})
	}

	return Result{
		ClearingPrice:   clearingPrice,
		Allocations:     allocations,
		TokensAllocated: filled.Add(residual),
	}, nil
}
