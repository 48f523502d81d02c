// store.go is the tournament's single source of truth: per-agent budget,
// holdings, stage-tokens, weighted points, stage points, private-info
// queue, the period-result log, and the rescind ledger's two queues.
//
// The store is owned exclusively by the tournament driver and carries no
// mutex: the engine is single-threaded and cooperative, and each parallel
// tournament in a batch run holds its own private store. Queries return
// copies, never references into store-owned state.
package tournament

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Store errors.
var (
	ErrUnknownAgent        = errors.New("store: unknown agent")
	ErrInsufficientBudget  = errors.New("store: insufficient budget")
	ErrDuplicateAgent      = errors.New("store: duplicate agent identifier")
)

// Store holds one tournament's complete mutable state.
type Store struct {
	cfg    Config
	agents map[AgentID]*AgentState
	order  []AgentID

	log []PeriodRecord

	pendingRescinds  []PendingRescind
	supplyInjections []SupplyInjection
}

// NewStore creates a store for cfg with agents in registered order, each
// starting at cfg.StartingBudget. A duplicate identifier is a fatal
// construction error.
func NewStore(cfg Config, agentIDs []AgentID) (*Store, error) {
	s := &Store{
		cfg:    cfg,
		agents: make(map[AgentID]*AgentState, len(agentIDs)),
		order:  make([]AgentID, 0, len(agentIDs)),
	}
	for _, id := range agentIDs {
		if _, exists := s.agents[id]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAgent, id)
		}
		s.agents[id] = newAgentState(id, cfg.StartingBudget)
		s.order = append(s.order, id)
	}
	return s, nil
}

// AgentIDs returns agents in registration order.
func (s *Store) AgentIDs() []AgentID {
	out := make([]AgentID, len(s.order))
	copy(out, s.order)
	return out
}

// AgentState returns a copy of the agent's current state.
func (s *Store) AgentState(id AgentID) (AgentState, error) {
	a, ok := s.agents[id]
	if !ok {
		return AgentState{}, fmt.Errorf("%w: %s", ErrUnknownAgent, id)
	}
	return copyAgentState(a), nil
}

func copyAgentState(a *AgentState) AgentState {
	cp := *a
	cp.Holdings = append([]Holding(nil), a.Holdings...)
	cp.PrivateInfo = append([]PrivateInfoEntry(nil), a.PrivateInfo...)
	cp.StageTokens = make(map[int]decimal.Decimal, len(a.StageTokens))
	for k, v := range a.StageTokens {
		cp.StageTokens[k] = v
	}
	return cp
}

// DeductBudget subtracts amount from agent's remaining budget. amount
// greater than the current balance is ErrInsufficientBudget.
func (s *Store) DeductBudget(id AgentID, amount decimal.Decimal) (decimal.Decimal, error) {
	a, ok := s.agents[id]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownAgent, id)
	}
	if amount.GreaterThan(a.RemainingBudget) {
		return decimal.Zero, fmt.Errorf("%w: agent %s has %s, needs %s", ErrInsufficientBudget, id, a.RemainingBudget, amount)
	}
	a.RemainingBudget = a.RemainingBudget.Sub(amount)
	return a.RemainingBudget, nil
}

// RefundBudget adds amount to agent's remaining budget. The refund path
// always succeeds regardless of the resulting balance.
func (s *Store) RefundBudget(id AgentID, amount decimal.Decimal) (decimal.Decimal, error) {
	a, ok := s.agents[id]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownAgent, id)
	}
	a.RemainingBudget = a.RemainingBudget.Add(amount)
	return a.RemainingBudget, nil
}

// AddHolding appends a holding to agent's holdings list and updates its
// per-stage token count and weighted points consistently.
func (s *Store) AddHolding(id AgentID, h Holding) error {
	a, ok := s.agents[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAgent, id)
	}
	a.Holdings = append(a.Holdings, h)
	a.StageTokens[h.Stage] = a.StageTokens[h.Stage].Add(h.Quantity)
	a.WeightedPoints = a.WeightedPoints.Add(h.WeightedPoints())
	return nil
}

// RemoveHolding removes the holding matching (stage, period) from agent's
// holdings, decrementing its counters, and returns the removed holding.
// If no matching holding exists this is a no-op and ok is false.
func (s *Store) RemoveHolding(id AgentID, stage, period int) (removed Holding, ok bool, err error) {
	a, exists := s.agents[id]
	if !exists {
		return Holding{}, false, fmt.Errorf("%w: %s", ErrUnknownAgent, id)
	}
	for i, h := range a.Holdings {
		if h.Stage == stage && h.Period == period {
			a.Holdings = append(a.Holdings[:i], a.Holdings[i+1:]...)
			a.StageTokens[h.Stage] = a.StageTokens[h.Stage].Sub(h.Quantity)
			a.WeightedPoints = a.WeightedPoints.Sub(h.WeightedPoints())
			return h, true, nil
		}
	}
	return Holding{}, false, nil
}

// AppendPeriodRecord appends record to the log. Prior records are never
// mutated by this call.
func (s *Store) AppendPeriodRecord(record PeriodRecord) {
	s.log = append(s.log, record)
}

// FlipRescindedFlag sets the flag on the record identified by
// (stage, period) to true. A record not found is a no-op.
func (s *Store) FlipRescindedFlag(stage, period int) {
	for i := range s.log {
		if s.log[i].Stage == stage && s.log[i].PeriodInStage == period {
			flipped := true
			s.log[i].Rescinded = &flipped
			return
		}
	}
}

// Log returns a deep copy of the period record log. Records are handed to
// agents inside observations, so nothing returned here may alias
// store-owned memory.
func (s *Store) Log() []PeriodRecord {
	out := make([]PeriodRecord, len(s.log))
	for i := range s.log {
		out[i] = s.log[i].clone()
	}
	return out
}

// AwardSP adds points to agent's stage-point total.
func (s *Store) AwardSP(id AgentID, points int) error {
	a, ok := s.agents[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAgent, id)
	}
	a.SP += points
	return nil
}

// EnqueueRescind performs the atomic rescind transition: the
// matching holding is removed, refunded in full, a pending-rescind entry
// and a supply injection are enqueued for absolutePeriod+2, and a
// private-info entry is appended to the rescinding agent's list.
func (s *Store) EnqueueRescind(id AgentID, stage, period, absolutePeriod int) (PendingRescind, error) {
	removed, ok, err := s.RemoveHolding(id, stage, period)
	if err != nil {
		return PendingRescind{}, err
	}
	if !ok {
		return PendingRescind{}, fmt.Errorf("store: no holding for agent %s at stage %d period %d", id, stage, period)
	}
	totalRefunded := removed.Quantity.Mul(removed.PricePaidPer)
	if _, err := s.RefundBudget(id, totalRefunded); err != nil {
		return PendingRescind{}, err
	}

	revealAt := absolutePeriod + 2
	pr := PendingRescind{
		Agent:                id,
		SourceStage:          stage,
		SourcePeriod:         period,
		SourceAbsolutePeriod: absolutePeriod,
		Tokens:               removed.Quantity,
		RefundedPricePerTok:  removed.PricePaidPer,
		TotalRefunded:        totalRefunded,
		RescindedAt:          absolutePeriod,
		RevealAt:             revealAt,
	}
	s.pendingRescinds = append(s.pendingRescinds, pr)
	s.supplyInjections = append(s.supplyInjections, SupplyInjection{
		TargetAbsolutePeriod: revealAt,
		Tokens:               removed.Quantity,
		Provenance:           fmt.Sprintf("rescind:%s:%d:%d", id, stage, period),
	})

	targetStage, targetPeriod, _ := s.cfg.Locate(revealAt)
	a := s.agents[id]
	a.PrivateInfo = append(a.PrivateInfo, PrivateInfoEntry{
		TargetStage:          targetStage,
		TargetPeriod:         targetPeriod,
		Tokens:               removed.Quantity,
		RevealAbsolutePeriod: revealAt,
	})

	return pr, nil
}

// RevealDueRescinds returns and removes all pending rescinds whose
// reveal-at is <= absolutePeriod, flips the corresponding source period
// records' rescinded flags, and purges the matching private-info entries
// from the rescinding agents.
func (s *Store) RevealDueRescinds(absolutePeriod int) []PendingRescind {
	var due []PendingRescind
	var remaining []PendingRescind
	for _, pr := range s.pendingRescinds {
		if pr.RevealAt <= absolutePeriod {
			due = append(due, pr)
		} else {
			remaining = append(remaining, pr)
		}
	}
	s.pendingRescinds = remaining

	for _, pr := range due {
		s.FlipRescindedFlag(pr.SourceStage, pr.SourcePeriod)
		if a, ok := s.agents[pr.Agent]; ok {
			for i, pie := range a.PrivateInfo {
				if pie.RevealAbsolutePeriod == pr.RevealAt && pie.Tokens.Equal(pr.Tokens) {
					a.PrivateInfo = append(a.PrivateInfo[:i], a.PrivateInfo[i+1:]...)
					break
				}
			}
		}
	}
	return due
}

// SupplyDueThisPeriod sums the tokens of every injection targeting
// absolutePeriod.
func (s *Store) SupplyDueThisPeriod(absolutePeriod int) decimal.Decimal {
	total := decimal.Zero
	for _, inj := range s.supplyInjections {
		if inj.TargetAbsolutePeriod == absolutePeriod {
			total = total.Add(inj.Tokens)
		}
	}
	return total
}

// StageRanking returns agents with > 0 tokens in stage, ordered by token
// count descending then agent id ascending.
func (s *Store) StageRanking(stage int) []AgentID {
	type entry struct {
		id     AgentID
		tokens decimal.Decimal
	}
	var entries []entry
	for _, id := range s.order {
		a := s.agents[id]
		tok := a.StageTokens[stage]
		if tok.IsPositive() {
			entries = append(entries, entry{id: id, tokens: tok})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].tokens.Equal(entries[j].tokens) {
			return entries[i].tokens.GreaterThan(entries[j].tokens)
		}
		return entries[i].id < entries[j].id
	})
	out := make([]AgentID, len(entries))
	for i, e := range entries {
		out[i] = e.id
	}
	return out
}

// OverallRanking returns every agent ordered by weighted points descending
// then agent id ascending.
func (s *Store) OverallRanking() []AgentID {
	ids := append([]AgentID(nil), s.order...)
	sort.SliceStable(ids, func(i, j int) bool {
		ai, aj := s.agents[ids[i]], s.agents[ids[j]]
		if !ai.WeightedPoints.Equal(aj.WeightedPoints) {
			return ai.WeightedPoints.GreaterThan(aj.WeightedPoints)
		}
		return ids[i] < ids[j]
	})
	return ids
}

// Leaderboard returns a public-view snapshot of every agent.
func (s *Store) Leaderboard() []LeaderboardEntry {
	out := make([]LeaderboardEntry, 0, len(s.order))
	for _, id := range s.order {
		a := s.agents[id]
		stageTokens := make(map[int]decimal.Decimal, len(a.StageTokens))
		for k, v := range a.StageTokens {
			stageTokens[k] = v
		}
		out = append(out, LeaderboardEntry{
			AgentID:        id,
			StageTokens:    stageTokens,
			WeightedPoints: a.WeightedPoints,
			SP:             a.SP,
		})
	}
	return out
}
