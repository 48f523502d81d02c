// driver.go iterates stages and periods, reveals due rescinds at period
// start, invokes the period runner, awards stage SP at stage end, awards
// overall-bonus SP after the final stage, and assembles the final result.
package tournament

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/auctiontourney/engine/pkg/log"
	"github.com/auctiontourney/engine/pkg/mechanism"
	"github.com/auctiontourney/engine/pkg/metrics"
)

// Phase is the tournament's coarse lifecycle state.
type Phase string

const (
	PhasePending     Phase = "pending"
	PhaseStageActive Phase = "stage-active"
	PhaseCompleted   Phase = "completed"
)

// Construction errors.
var ErrNoAgents = errors.New("tournament: at least one agent is required")

// Tournament drives a complete run from construction to final result. It
// owns the store exclusively; no agent is
// ever given a reference to it.
type Tournament struct {
	cfg      Config
	store    *Store
	agents   []Agent
	registry *mechanism.Registry
	logger   *log.Logger
	phase    Phase
}

// New constructs a tournament. Duplicate agent identifiers and malformed
// configuration are fatal construction errors.
func New(cfg Config, agents []Agent, registry *mechanism.Registry, logger *log.Logger) (*Tournament, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(agents) == 0 {
		return nil, ErrNoAgents
	}
	if registry == nil {
		registry = mechanism.NewRegistry()
	}
	if logger == nil {
		logger = log.Default()
	}

	ids := make([]AgentID, len(agents))
	for i, ag := range agents {
		ids[i] = ag.ID()
	}
	store, err := NewStore(cfg, ids)
	if err != nil {
		return nil, err
	}

	return &Tournament{
		cfg:      cfg,
		store:    store,
		agents:   agents,
		registry: registry,
		logger:   logger,
		phase:    PhasePending,
	}, nil
}

// Run executes the full tournament sequence and returns the final
// result. The tournament must not be reused after Run returns.
func (t *Tournament) Run() (Result, error) {
	t.phase = PhaseStageActive
	metrics.TournamentsStarted.Inc()
	runnerLog := t.logger.Module("driver")

	absolutePeriod := 0
	totalPeriods := t.cfg.TotalPeriods()

	for stageIdx, sc := range t.cfg.Stages {
		runnerLog.Info("stage started", "stage", stageIdx, "periods", sc.Periods, "mechanism", string(sc.Mechanism))
		for p := 0; p < sc.Periods; p++ {
			runnerLog.Info("period started", "stage", stageIdx, "period", p, "absolute_period", absolutePeriod)

			// (a) reveal due rescinds before building observations.
			revealed := t.store.RevealDueRescinds(absolutePeriod)
			for _, pr := range revealed {
				runnerLog.Debug("rescind revealed", "agent", string(pr.Agent), "source_absolute_period", pr.SourceAbsolutePeriod)
				metrics.RescindsRevealed.Inc()
				metrics.PendingRescinds.Dec()
			}

			// (b) compute this period's supply.
			supply := sc.PeriodSupply().Add(t.store.SupplyDueThisPeriod(absolutePeriod))

			// (c) rescind-allowed per the terminal-stage restriction: the
			// reveal target (absolutePeriod+2) must lie within the
			// tournament horizon.
			rescindAllowed := absolutePeriod+2 < totalPeriods

			in := periodInput{
				Stage:           stageIdx,
				PeriodInStage:   p,
				AbsolutePeriod:  absolutePeriod,
				TokensAvailable: supply,
				Floor:           sc.Floor,
				PointsPerToken:  sc.PointsPerToken,
				MechanismTag:    sc.Mechanism,
				MaxBidsPerAgent: sc.MaxBidsPerAgent,
				RescindAllowed:  rescindAllowed,
			}

			// (d) run the period.
			if _, err := runPeriod(t.store, t.cfg, t.registry, t.agents, in, runnerLog); err != nil {
				return Result{}, fmt.Errorf("tournament: stage %d period %d: %w", stageIdx, p, err)
			}

			// (e) advance.
			absolutePeriod++
		}

		// Stage-end SP award.
		t.awardStageSP(stageIdx)
		metrics.StagesAwarded.Inc()
		runnerLog.Info("stage awarded", "stage", stageIdx)
	}

	// Overall-bonus SP.
	t.awardOverallBonus()

	t.phase = PhaseCompleted
	metrics.TournamentsCompleted.Inc()
	runnerLog.Info("tournament completed", "total_periods", totalPeriods)

	return t.buildResult(), nil
}

// awardStageSP awards SP per the configured vector, truncated to its
// length; agents with zero tokens in the stage are excluded from ranking.
func (t *Tournament) awardStageSP(stage int) {
	ranking := t.store.StageRanking(stage)
	for i, id := range ranking {
		if i >= len(t.cfg.SPVector) {
			break
		}
		_ = t.store.AwardSP(id, t.cfg.SPVector[i])
	}
}

// awardOverallBonus awards the bonus SP to the single agent with the
// highest weighted points, only if strictly positive.
func (t *Tournament) awardOverallBonus() {
	ranking := t.store.OverallRanking()
	if len(ranking) == 0 {
		return
	}
	top := ranking[0]
	state, err := t.store.AgentState(top)
	if err != nil || !state.WeightedPoints.IsPositive() {
		return
	}
	_ = t.store.AwardSP(top, t.cfg.OverallBonusSP)
}

// buildResult assembles the final tournament result.
func (t *Tournament) buildResult() Result {
	ranking := t.finalLeaderboardOrder()

	leaderboard := make([]LeaderboardEntry, 0, len(ranking))
	summaries := make(map[AgentID]AgentSummary, len(ranking))
	for _, id := range ranking {
		state, _ := t.store.AgentState(id)
		stageTokens := make(map[int]decimal.Decimal, len(state.StageTokens))
		for k, v := range state.StageTokens {
			stageTokens[k] = v
		}
		leaderboard = append(leaderboard, LeaderboardEntry{
			AgentID:        id,
			StageTokens:    stageTokens,
			WeightedPoints: state.WeightedPoints,
			SP:             state.SP,
		})
		summaries[id] = t.summarize(id, state)
	}

	var winner AgentID
	if len(leaderboard) > 0 {
		winner = leaderboard[0].AgentID
	}

	return Result{
		Config:      t.cfg,
		Leaderboard: leaderboard,
		Winner:      winner,
		Log:         t.store.Log(),
		Summaries:   summaries,
	}
}

// finalLeaderboardOrder sorts agents by SP descending, with weighted-
// points tiebreak.
func (t *Tournament) finalLeaderboardOrder() []AgentID {
	ids := t.store.AgentIDs()
	states := make(map[AgentID]AgentState, len(ids))
	for _, id := range ids {
		states[id], _ = t.store.AgentState(id)
	}
	sortAgentsBySPThenPoints(ids, states)
	return ids
}

func (t *Tournament) summarize(id AgentID, state AgentState) AgentSummary {
	spent := t.cfg.StartingBudget.Sub(state.RemainingBudget)

	// Every rescind enqueued during the run reveals by reveal_at =
	// absolute_period+2, and the terminal-stage restriction (absolutePeriod+2
	// < totalPeriods) forbids new rescinds once fewer than two periods
	// remain, so no pending rescind can survive past the tournament's last
	// period: by the time summarize runs, every PeriodRecord.Rescinded is
	// already settled and periodsWon/rescindsMade partition cleanly off the
	// log alone.
	periodsWon := 0
	rescindsMade := 0
	for _, rec := range t.store.log {
		if rec.Winner != id {
			continue
		}
		if rec.IsRescindedPublicly() {
			rescindsMade++
		} else {
			periodsWon++
		}
	}

	meanRealisedPrice := decimal.Zero
	if len(state.Holdings) > 0 {
		sumPrice := decimal.Zero
		for _, h := range state.Holdings {
			sumPrice = sumPrice.Add(h.PricePaidPer)
		}
		meanRealisedPrice = sumPrice.Div(decimal.NewFromInt(int64(len(state.Holdings))))
	}

	pointsPerSpend := decimal.Zero
	if spent.IsPositive() {
		pointsPerSpend = state.WeightedPoints.Div(spent)
	}

	return AgentSummary{
		AgentID:           id,
		SP:                state.SP,
		WeightedPoints:    state.WeightedPoints,
		StageTokens:       state.StageTokens,
		SpentBudget:       spent,
		RemainingBudget:   state.RemainingBudget,
		PeriodsWon:        periodsWon,
		RescindsMade:      rescindsMade,
		MeanRealisedPrice: meanRealisedPrice,
		PointsPerSpend:    pointsPerSpend,
	}
}
