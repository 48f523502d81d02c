package mechanism

import (
	"sort"

	"github.com/shopspring/decimal"
)

// secondPrice is a single-winner Vickrey auction: the period's entire
// supply goes to the highest bidder, who pays the second-highest admitted
// price per token. With one admitted bid the winner pays floor; with
// none, no allocation occurs and the reported clearing price is floor.
// Tied highest bids are broken by earliest submission (FIFO). Under this
// rule truthful bidding is the dominant strategy, so agent authors can
// reason locally.
type secondPrice struct{}

// NewSecondPrice returns the default single-winner second-price mechanism.
func NewSecondPrice() Mechanism { return secondPrice{} }

func (secondPrice) Tag() Tag { return SecondPrice }

func (secondPrice) Clear(bids []Bid, supply, floor decimal.Decimal) (Result, error) {
	if supply.IsNegative() {
		return Result{}, ErrNegativeSupply
	}
	if floor.IsNegative() {
		return Result{}, ErrNegativeFloor
	}
	if len(bids) == 0 {
		return Result{ClearingPrice: floor}, nil
	}

	ranked := make([]Bid, len(bids))
	copy(ranked, bids)
	sort.SliceStable(ranked, func(i, j int) bool {
		if !ranked[i].PricePerToken.Equal(ranked[j].PricePerToken) {
			return ranked[i].PricePerToken.GreaterThan(ranked[j].PricePerToken)
		}
		return ranked[i].Sequence < ranked[j].Sequence
	})

	winner := ranked[0]
	price := floor
	if len(ranked) > 1 {
		price = ranked[1].PricePerToken
	}

	alloc := Allocation{
		AgentID:       winner.AgentID,
		Tokens:        supply,
		PricePerToken: price,
		TotalPaid:     price.Mul(supply),
	}
	return Result{
		ClearingPrice:   price,
		Allocations:     []Allocation{alloc},
		TokensAllocated: supply,
		Winner:          winner.AgentID,
	}, nil
}
