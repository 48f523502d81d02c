// Package mechanism implements the pluggable clearing mechanisms used by
// the tournament engine's period runner. A mechanism is a pure function of
// a period's admitted bids, supply, and floor price: it does not know
// about agents, budgets, or holdings, and it enforces none of those
// things itself (that is the period runner's job, pkg/tournament).
package mechanism

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Clearing errors.
var (
	// ErrUnimplemented is returned by the three reserved mechanism tags
	//: they are enumerated by the registry but clear no bids.
	ErrUnimplemented = errors.New("mechanism: unimplemented")
	// ErrUnknownTag is returned when resolving a tag the registry has
	// never heard of.
	ErrUnknownTag = errors.New("mechanism: unknown tag")
	// ErrNegativeSupply guards a caller contract violation; mechanisms
	// assume supply and floor are always non-negative.
	ErrNegativeSupply = errors.New("mechanism: supply must be non-negative")
	// ErrNegativeFloor guards the same contract for floor.
	ErrNegativeFloor = errors.New("mechanism: floor must be non-negative")
)

// Tag names a clearing mechanism in the registry.
type Tag string

// Implemented mechanism tags.
const (
	SecondPrice  Tag = "second_price"
	UniformPrice Tag = "uniform_price"
)

// Reserved mechanism tags. These are enumerated by the registry
// and rejected at clear time with ErrUnimplemented; their availability
// probe always returns false.
const (
	DiscriminatoryPayAsBid Tag = "discriminatory_pay_as_bid"
	DescendingPrice        Tag = "descending_price"
	SealedFirstPrice       Tag = "sealed_first_price"
)

// Bid is a single admitted bid offer. Sequence is the bid's admission
// order — assigned by the period runner in registration order across
// agents and offer order within an agent — and stands in
// for "submission timestamp" so that FIFO tiebreaks stay reproducible
// without depending on wall-clock time.
type Bid struct {
	AgentID       string
	PricePerToken decimal.Decimal
	// TotalCost is "price x supply for the full batch": the
	// agent's declared total spend for this bid, from which the implied
	// quantity demanded (TotalCost / PricePerToken) is derived by
	// multi-winner mechanisms. Single-winner mechanisms ignore it, since
	// the winner always receives the full period supply.
	TotalCost decimal.Decimal
	Sequence  int
}

// Allocation is one agent's award from a cleared period.
type Allocation struct {
	AgentID       string
	Tokens        decimal.Decimal
	PricePerToken decimal.Decimal
	TotalPaid     decimal.Decimal
}

// Result is a mechanism's clearing outcome.
type Result struct {
	ClearingPrice   decimal.Decimal
	Allocations     []Allocation
	TokensAllocated decimal.Decimal
	// Winner is the single-winner mechanism's sole allocated agent, or
	// empty for multi-winner mechanisms and zero-allocation periods.
	Winner string
}

// Mechanism clears one period's admitted bids against supply and floor.
// Implementations must be deterministic, including tiebreak order, given
// identical inputs.
type Mechanism interface {
	Tag() Tag
	Clear(bids []Bid, supply, floor decimal.Decimal) (Result, error)
}
