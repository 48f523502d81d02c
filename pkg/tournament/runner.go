// runner.go drives a single period: build observation, collect bids,
// validate, invoke the mechanism, apply allocations, offer rescind to
// the single winner, enqueue rescind effects.
package tournament

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/auctiontourney/engine/pkg/log"
	"github.com/auctiontourney/engine/pkg/mechanism"
	"github.com/auctiontourney/engine/pkg/metrics"
)

// periodInput bundles everything the driver computes before handing a
// period to the runner.
type periodInput struct {
	Stage           int
	PeriodInStage   int
	AbsolutePeriod  int
	TokensAvailable decimal.Decimal
	Floor           decimal.Decimal
	PointsPerToken  decimal.Decimal
	MechanismTag    mechanism.Tag
	MaxBidsPerAgent int
	RescindAllowed  bool
}

// runPeriod executes one period end to end and returns its final record.
func runPeriod(store *Store, cfg Config, registry *mechanism.Registry, agents []Agent, in periodInput, logger *log.Logger) (PeriodRecord, error) {
	// Step 1: observation & bid collection, in registered order.
	type offerSet struct {
		agent   Agent
		offers  []BidOffer
	}
	var collected []offerSet
	for _, ag := range agents {
		obs, err := buildObservation(cfg, store, ag.ID(), in.Stage, in.PeriodInStage, in.AbsolutePeriod, in.TokensAvailable, in.Floor, in.PointsPerToken)
		if err != nil {
			return PeriodRecord{}, fmt.Errorf("tournament: build observation for %s: %w", ag.ID(), err)
		}
		decision, err := safeDecideBids(ag, obs)
		if err != nil {
			// Step 3: agent failure handling — drop this agent's offers,
			// leave its state untouched, continue.
			logger.Module("runner").Agent(string(ag.ID())).Warn("agent decide-bids failed", "error", err.Error())
			metrics.AgentDecisionFailures.Inc()
			continue
		}
		collected = append(collected, offerSet{agent: ag, offers: decision.Bids})
	}

	// Step 2: admission. Trim to the max-bids cap, then filter by floor,
	// positivity, and affordability. Sequence records admission order:
	// registration order across agents, offer order within an agent.
	var admitted []mechanism.Bid
	seq := 0
	for _, cs := range collected {
		offers := cs.offers
		if len(offers) > in.MaxBidsPerAgent {
			offers = offers[:in.MaxBidsPerAgent]
		}
		agentState, err := store.AgentState(cs.agent.ID())
		if err != nil {
			return PeriodRecord{}, err
		}
		metrics.BidsSubmitted.Add(int64(len(offers)))
		for _, off := range offers {
			cost := off.PricePerToken.Mul(in.TokensAvailable)
			if off.PricePerToken.LessThan(in.Floor) || !off.PricePerToken.IsPositive() || cost.GreaterThan(agentState.RemainingBudget) {
				logger.Module("runner").Agent(string(cs.agent.ID())).Debug("bid dropped", "price", off.PricePerToken.String())
				metrics.BidsDropped.Inc()
				continue
			}
			admitted = append(admitted, mechanism.Bid{
				AgentID:       string(cs.agent.ID()),
				PricePerToken: off.PricePerToken,
				TotalCost:     cost,
				Sequence:      seq,
			})
			logger.Module("runner").Agent(string(cs.agent.ID())).Debug("bid admitted", "price", off.PricePerToken.String(), "sequence", seq)
			seq++
			metrics.BidsAdmitted.Inc()
		}
	}

	// Step 4: clearing.
	m, err := registry.Resolve(in.MechanismTag)
	if err != nil {
		return PeriodRecord{}, fmt.Errorf("tournament: resolve mechanism %s: %w", in.MechanismTag, err)
	}
	clearTimer := metrics.NewTimer(metrics.PeriodClearTime)
	result, err := m.Clear(admitted, in.TokensAvailable, in.Floor)
	clearTimer.Stop()
	if err != nil {
		return PeriodRecord{}, fmt.Errorf("tournament: clear period: %w", err)
	}
	if len(result.Allocations) == 0 {
		metrics.ZeroAllocationPeriods.Inc()
	}
	metrics.PeriodsRun.Inc()

	// Step 5: settlement.
	agentByID := make(map[AgentID]Agent, len(agents))
	for _, ag := range agents {
		agentByID[ag.ID()] = ag
	}
	for _, alloc := range result.Allocations {
		aid := AgentID(alloc.AgentID)
		if _, err := store.DeductBudget(aid, alloc.TotalPaid); err != nil {
			return PeriodRecord{}, fmt.Errorf("tournament: settle allocation: %w", err)
		}
		if err := store.AddHolding(aid, Holding{
			Stage:          in.Stage,
			Period:         in.PeriodInStage,
			Quantity:       alloc.Tokens,
			PricePaidPer:   alloc.PricePerToken,
			PointsPerToken: in.PointsPerToken,
		}); err != nil {
			return PeriodRecord{}, fmt.Errorf("tournament: add holding: %w", err)
		}
	}

	record := PeriodRecord{
		Stage:           in.Stage,
		PeriodInStage:   in.PeriodInStage,
		AbsolutePeriod:  in.AbsolutePeriod,
		TokensAvailable: in.TokensAvailable,
		Floor:           in.Floor,
		PointsPerToken:  in.PointsPerToken,
		ClearingPrice:   result.ClearingPrice,
		Allocations:     result.Allocations,
		Winner:          AgentID(result.Winner),
		Rescinded:       nil,
		AdmittedBids:    admitted,
		Mechanism:       in.MechanismTag,
	}

	// Step 6: rescind offer, only for a genuine single-winner outcome.
	if len(result.Allocations) == 1 && result.Winner != "" && in.RescindAllowed {
		winner := AgentID(result.Winner)
		if ag, ok := agentByID[winner]; ok {
			obs, err := buildObservation(cfg, store, winner, in.Stage, in.PeriodInStage, in.AbsolutePeriod, in.TokensAvailable, in.Floor, in.PointsPerToken)
			if err == nil {
				metrics.RescindsOffered.Inc()
				// The agent keeps whatever it is handed; clone so the
				// preliminary record shares no memory with the log.
				decision, decErr := safeDecideRescind(ag, obs, record.clone())
				if decErr != nil {
					logger.Module("runner").Agent(string(winner)).Warn("agent decide-rescind failed", "error", decErr.Error())
					metrics.AgentDecisionFailures.Inc()
				} else if decision.Rescind {
					if _, err := store.EnqueueRescind(winner, in.Stage, in.PeriodInStage, in.AbsolutePeriod); err != nil {
						return PeriodRecord{}, fmt.Errorf("tournament: enqueue rescind: %w", err)
					}
					metrics.RescindsTaken.Inc()
					metrics.PendingRescinds.Inc()
				}
			}
		}
	}

	// Step 7: emit record.
	store.AppendPeriodRecord(record)
	return record, nil
}

// safeDecideBids calls the agent's bidding decision, converting any panic
// into an error so a misbehaving agent never escapes the engine boundary.
func safeDecideBids(ag Agent, obs Observation) (decision BidDecision, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("agent %s panicked in decide-bids: %v", ag.ID(), r)
		}
	}()
	return ag.DecideBids(obs)
}

// safeDecideRescind calls the agent's rescind decision with the same
// panic-to-error guard.
func safeDecideRescind(ag Agent, obs Observation, preliminary PeriodRecord) (decision RescindDecision, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("agent %s panicked in decide-rescind: %v", ag.ID(), r)
		}
	}()
	return ag.DecideRescind(obs, preliminary)
}
