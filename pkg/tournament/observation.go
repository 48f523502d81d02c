package tournament

import "github.com/shopspring/decimal"

// buildObservation constructs agent id's view at the start of absolute
// period p. It is invoked once per agent, in registered order, before
// any bid is collected for the period, so every agent sees the identical
// snapshot regardless of bidding order within the same period. Every
// field is a value copy; nothing here aliases store-owned state, so an
// agent cannot reach back into it.
func buildObservation(
	cfg Config,
	store *Store,
	id AgentID,
	stage, periodInStage, absolutePeriod int,
	tokensAvailable, floor, pointsPerToken decimal.Decimal,
) (Observation, error) {
	a, err := store.AgentState(id)
	if err != nil {
		return Observation{}, err
	}

	sc := cfg.Stages[stage]
	obs := Observation{
		Stage:                   stage,
		PeriodInStage:           periodInStage,
		AbsolutePeriod:          absolutePeriod,
		PeriodsRemainingInStage: sc.Periods - periodInStage - 1,
		StagesRemaining:         len(cfg.Stages) - stage - 1,

		RemainingBudget: a.RemainingBudget,
		Holdings:        a.Holdings,
		WeightedPoints:  a.WeightedPoints,
		StageTokens:     a.StageTokens,
		SP:              a.SP,
		PrivateInfo:     a.PrivateInfo,

		TokensAvailable: tokensAvailable,
		Floor:           floor,
		PointsPerToken:  pointsPerToken,

		History:     store.Log(),
		Leaderboard: store.Leaderboard(),
	}
	return obs, nil
}
