package tournament

import (
	"github.com/shopspring/decimal"

	"github.com/auctiontourney/engine/pkg/mechanism"
)

// AgentID uniquely identifies a participant within one tournament.
type AgentID string

// Holding is one retained allocation: tokens the agent has and has not
// rescinded.
type Holding struct {
	Stage          int
	Period         int
	Quantity       decimal.Decimal
	PricePaidPer   decimal.Decimal
	PointsPerToken decimal.Decimal
}

// WeightedPoints returns quantity x points-per-token for this holding.
func (h Holding) WeightedPoints() decimal.Decimal {
	return h.Quantity.Mul(h.PointsPerToken)
}

// PrivateInfoEntry is visible only to the rescinding agent until its
// reveal period arrives.
type PrivateInfoEntry struct {
	TargetStage        int
	TargetPeriod       int
	Tokens             decimal.Decimal
	RevealAbsolutePeriod int
}

// AgentState is one participant's mutable runtime state.
type AgentState struct {
	ID               AgentID
	RemainingBudget  decimal.Decimal
	Holdings         []Holding
	StageTokens      map[int]decimal.Decimal
	WeightedPoints   decimal.Decimal
	SP               int
	PrivateInfo      []PrivateInfoEntry
}

func newAgentState(id AgentID, budget decimal.Decimal) *AgentState {
	return &AgentState{
		ID:              id,
		RemainingBudget: budget,
		StageTokens:     make(map[int]decimal.Decimal),
	}
}

// PeriodRecord is one completed period, append-only in the log.
type PeriodRecord struct {
	Stage          int
	PeriodInStage  int
	AbsolutePeriod int

	TokensAvailable decimal.Decimal
	Floor           decimal.Decimal
	PointsPerToken  decimal.Decimal

	ClearingPrice decimal.Decimal
	Allocations   []mechanism.Allocation
	// Winner is non-empty only for single-winner mechanism outcomes.
	Winner AgentID

	// Rescinded is nil until revelation: nil means
	// "unset" (not applicable, or not yet public); it is set to a
	// pointer-to-true exactly once, at reveal time. No code path ever
	// assigns a transient false.
	Rescinded *bool

	AdmittedBids []mechanism.Bid
	Mechanism    mechanism.Tag
}

// IsRescindedPublicly reports whether the record's rescinded flag has
// matured to true. A nil flag (unset) reports false.
func (r PeriodRecord) IsRescindedPublicly() bool {
	return r.Rescinded != nil && *r.Rescinded
}

// clone returns a copy of the record sharing no memory with the receiver.
func (r PeriodRecord) clone() PeriodRecord {
	cp := r
	cp.Allocations = append([]mechanism.Allocation(nil), r.Allocations...)
	cp.AdmittedBids = append([]mechanism.Bid(nil), r.AdmittedBids...)
	if r.Rescinded != nil {
		flag := *r.Rescinded
		cp.Rescinded = &flag
	}
	return cp
}

// PendingRescind is the internal ledger entry created at rescind time.
type PendingRescind struct {
	Agent               AgentID
	SourceStage         int
	SourcePeriod        int
	SourceAbsolutePeriod int
	Tokens              decimal.Decimal
	RefundedPricePerTok decimal.Decimal
	TotalRefunded       decimal.Decimal
	RescindedAt         int
	RevealAt            int
}

// SupplyInjection is the internal ledger entry scheduling extra supply
// for a future period.
type SupplyInjection struct {
	TargetAbsolutePeriod int
	Tokens               decimal.Decimal
	Provenance           string
}

// LeaderboardEntry is one agent's public standing.
type LeaderboardEntry struct {
	AgentID        AgentID
	StageTokens    map[int]decimal.Decimal
	WeightedPoints decimal.Decimal
	SP             int
}

// Observation is the value every agent receives at the start of a
// period. It carries only copies: no field here aliases engine-owned
// mutable state, so an agent cannot reach back into the store.
type Observation struct {
	Stage                  int
	PeriodInStage          int
	AbsolutePeriod         int
	PeriodsRemainingInStage int
	StagesRemaining        int

	RemainingBudget decimal.Decimal
	Holdings        []Holding
	WeightedPoints  decimal.Decimal
	StageTokens     map[int]decimal.Decimal
	SP              int
	PrivateInfo     []PrivateInfoEntry

	TokensAvailable decimal.Decimal
	Floor           decimal.Decimal
	PointsPerToken  decimal.Decimal

	History     []PeriodRecord
	Leaderboard []LeaderboardEntry
}

// BidOffer is a single bid an agent wishes to submit. It is
// interpreted as "price x supply for the full batch".
type BidOffer struct {
	PricePerToken decimal.Decimal
}

// BidDecision is the return value of Agent.DecideBids.
type BidDecision struct {
	Bids []BidOffer
}

// RescindDecision is the return value of Agent.DecideRescind.
type RescindDecision struct {
	Rescind bool
}

// Agent is the external bidding interface. Implementations are
// supplied by the caller; the engine never assumes anything about their
// internals beyond this contract, and any panic escaping these methods
// is recovered at the call site.
type Agent interface {
	ID() AgentID
	DecideBids(obs Observation) (BidDecision, error)
	DecideRescind(obs Observation, preliminary PeriodRecord) (RescindDecision, error)
}
