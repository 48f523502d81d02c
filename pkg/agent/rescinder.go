package agent

import (
	"github.com/shopspring/decimal"

	"github.com/auctiontourney/engine/pkg/tournament"
)

// Rescinder bids floor+delta every period and takes the rescind option
// whenever it is offered the choice. It exists to exercise the rescind
// protocol's delayed revelation and supply-injection behaviour end to
// end.
type Rescinder struct {
	id    tournament.AgentID
	delta decimal.Decimal
}

// NewRescinder returns an agent that bids floor+delta and always rescinds
// when it wins and is offered the choice.
func NewRescinder(id tournament.AgentID, delta decimal.Decimal) *Rescinder {
	return &Rescinder{id: id, delta: delta}
}

func (r *Rescinder) ID() tournament.AgentID { return r.id }

func (r *Rescinder) DecideBids(obs tournament.Observation) (tournament.BidDecision, error) {
	price := obs.Floor.Add(r.delta)
	if price.IsZero() || price.IsNegative() {
		return tournament.BidDecision{}, nil
	}
	return tournament.BidDecision{Bids: []tournament.BidOffer{{PricePerToken: price}}}, nil
}

// DecideRescind unconditionally takes the rescind option when offered.
func (r *Rescinder) DecideRescind(tournament.Observation, tournament.PeriodRecord) (tournament.RescindDecision, error) {
	return tournament.RescindDecision{Rescind: true}, nil
}
