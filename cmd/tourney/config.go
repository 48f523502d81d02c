package main

import (
	"github.com/shopspring/decimal"

	"github.com/auctiontourney/engine/pkg/mechanism"
	"github.com/auctiontourney/engine/pkg/tournament"
)

// runConfig bundles the flag-derived settings this demo entrypoint needs
// beyond a bare tournament.Config: starting budget, periods per stage,
// overall bonus, which mechanism stage 3 clears under, log verbosity, and
// the optional metrics address.
type runConfig struct {
	StartingBudget  decimal.Decimal
	PeriodsPerStage int
	BonusSP         int
	Stage3Mechanism mechanism.Tag
	Verbosity       int
	MetricsAddr     string
}

// defaultRunConfig is the stock three-stage tournament: base supplies
// 900/600/300, floors 10.00/10.50/11.03, point multipliers 1.0/1.5/2.5,
// SP vector [3,2,1], overall bonus 1.
func defaultRunConfig() runConfig {
	return runConfig{
		StartingBudget:  decimal.NewFromInt(10000),
		PeriodsPerStage: 9,
		BonusSP:         1,
		Stage3Mechanism: mechanism.SecondPrice,
		Verbosity:       3,
		MetricsAddr:     "",
	}
}

// buildTournamentConfig assembles a tournament.Config from the resolved
// runConfig. The engine takes a plain struct; there is no config-file
// format to parse.
func (rc runConfig) buildTournamentConfig() tournament.Config {
	periods := rc.PeriodsPerStage
	return tournament.Config{
		StartingBudget: rc.StartingBudget,
		SPVector:       []int{3, 2, 1},
		OverallBonusSP: rc.BonusSP,
		Stages: []tournament.StageConfig{
			{
				BaseSupply:      decimal.NewFromInt(900),
				PointsPerToken:  decimal.NewFromFloat(1.0),
				Floor:           decimal.NewFromFloat(10.00),
				Periods:         periods,
				MaxBidsPerAgent: 3,
				Mechanism:       mechanism.SecondPrice,
			},
			{
				BaseSupply:      decimal.NewFromInt(600),
				PointsPerToken:  decimal.NewFromFloat(1.5),
				Floor:           decimal.NewFromFloat(10.50),
				Periods:         periods,
				MaxBidsPerAgent: 3,
				Mechanism:       mechanism.SecondPrice,
			},
			{
				BaseSupply:      decimal.NewFromInt(300),
				PointsPerToken:  decimal.NewFromFloat(2.5),
				Floor:           decimal.NewFromFloat(11.03),
				Periods:         periods,
				MaxBidsPerAgent: 3,
				Mechanism:       rc.Stage3Mechanism,
			},
		},
	}
}
