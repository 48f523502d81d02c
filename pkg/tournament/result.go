package tournament

import (
	"sort"

	"github.com/shopspring/decimal"
)

// AgentSummary is one agent's final accounting, emitted as part of the
// tournament result.
type AgentSummary struct {
	AgentID           AgentID
	SP                int
	WeightedPoints    decimal.Decimal
	StageTokens       map[int]decimal.Decimal
	SpentBudget       decimal.Decimal
	RemainingBudget   decimal.Decimal
	// PeriodsWon excludes periods whose allocation was later rescinded.
	PeriodsWon int
	RescindsMade int
	MeanRealisedPrice decimal.Decimal
	// PointsPerSpend is weighted points divided by spent budget; zero if
	// nothing was spent.
	PointsPerSpend decimal.Decimal
}

// Result is the complete output of a finished tournament.
type Result struct {
	Config      Config
	Leaderboard []LeaderboardEntry
	// Winner is the top-ranked agent's id, empty if there were no agents.
	Winner    AgentID
	Log       []PeriodRecord
	Summaries map[AgentID]AgentSummary
}

// sortAgentsBySPThenPoints orders ids by SP descending, weighted points
// descending as tiebreak, in place.
func sortAgentsBySPThenPoints(ids []AgentID, states map[AgentID]AgentState) {
	sort.SliceStable(ids, func(i, j int) bool {
		si, sj := states[ids[i]], states[ids[j]]
		if si.SP != sj.SP {
			return si.SP > sj.SP
		}
		return si.WeightedPoints.GreaterThan(sj.WeightedPoints)
	})
}
