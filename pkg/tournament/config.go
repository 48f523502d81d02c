package tournament

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/auctiontourney/engine/pkg/mechanism"
)

// Construction errors: malformed configuration is fatal at build
// time, never a runtime surprise.
var (
	ErrNonPositiveStageLength = errors.New("tournament: stage length must be positive")
	ErrNegativeFloor          = errors.New("tournament: floor must be non-negative")
	ErrNegativeBudget         = errors.New("tournament: starting budget must be non-negative")
	ErrNegativeSupply         = errors.New("tournament: base supply must be non-negative")
	ErrNoStages               = errors.New("tournament: configuration must have at least one stage")
	ErrNonPositiveMaxBids     = errors.New("tournament: max bids per agent must be positive")
)

// StageConfig describes one contiguous block of periods sharing a supply,
// floor, points multiplier, and mechanism.
type StageConfig struct {
	// BaseSupply is the stage's total token supply, shared evenly across
	// its periods: each period auctions BaseSupply / Periods plus any
	// matured rescind injections.
	BaseSupply decimal.Decimal
	// PointsPerToken is the multiplier applied to quantity held from this
	// stage when computing weighted points.
	PointsPerToken decimal.Decimal
	// Floor is the minimum admissible price per token for this stage.
	Floor decimal.Decimal
	// Periods is the number of periods in this stage.
	Periods int
	// MaxBidsPerAgent caps how many bid offers per agent are admitted
	// each period.
	MaxBidsPerAgent int
	// Mechanism names the clearing mechanism tag used for this stage.
	Mechanism mechanism.Tag
}

// Config is a tournament's immutable configuration.
type Config struct {
	// StartingBudget is shared across all stages and never resets.
	StartingBudget decimal.Decimal
	Stages         []StageConfig
	// SPVector awards SP by stage rank: SPVector[0] to 1st place, etc.
	// Ranks beyond len(SPVector) receive nothing.
	SPVector []int
	// OverallBonusSP is awarded once, after the terminal stage, to the
	// single agent with the strictly-positive maximum weighted points.
	OverallBonusSP int
}

// Validate rejects malformed configuration: non-positive stage
// length, negative floor, negative budget, or a non-positive bid cap.
func (c Config) Validate() error {
	if c.StartingBudget.IsNegative() {
		return ErrNegativeBudget
	}
	if len(c.Stages) == 0 {
		return ErrNoStages
	}
	for i, sc := range c.Stages {
		if sc.Periods <= 0 {
			return fmt.Errorf("stage %d: %w", i, ErrNonPositiveStageLength)
		}
		if sc.Floor.IsNegative() {
			return fmt.Errorf("stage %d: %w", i, ErrNegativeFloor)
		}
		if sc.BaseSupply.IsNegative() {
			return fmt.Errorf("stage %d: %w", i, ErrNegativeSupply)
		}
		if sc.MaxBidsPerAgent <= 0 {
			return fmt.Errorf("stage %d: %w", i, ErrNonPositiveMaxBids)
		}
	}
	return nil
}

// TotalPeriods returns the tournament's horizon: the sum of every
// stage's period count.
func (c Config) TotalPeriods() int {
	total := 0
	for _, sc := range c.Stages {
		total += sc.Periods
	}
	return total
}

// StageStart returns the absolute period at which stage begins.
func (c Config) StageStart(stage int) int {
	start := 0
	for i := 0; i < stage && i < len(c.Stages); i++ {
		start += c.Stages[i].Periods
	}
	return start
}

// Locate decomposes an absolute period into (stage, period-within-stage)
// by walking the stage lengths. The rescind ledger uses it to derive a
// reveal target that may cross a stage boundary. ok is false when
// absolute lies outside the tournament horizon.
func (c Config) Locate(absolute int) (stage, periodWithin int, ok bool) {
	if absolute < 0 {
		return 0, 0, false
	}
	cursor := 0
	for i, sc := range c.Stages {
		if absolute < cursor+sc.Periods {
			return i, absolute - cursor, true
		}
		cursor += sc.Periods
	}
	return 0, 0, false
}

// PeriodSupply returns the per-period base share for a stage: base supply
// divided evenly across its periods.
func (sc StageConfig) PeriodSupply() decimal.Decimal {
	return sc.BaseSupply.Div(decimal.NewFromInt(int64(sc.Periods)))
}
