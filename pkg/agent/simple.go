package agent

import (
	"github.com/shopspring/decimal"

	"github.com/auctiontourney/engine/pkg/tournament"
)

// SimpleBidder bids floor+delta every period, for the full period supply,
// and never rescinds. It is a minimal worked example of tournament.Agent,
// not a competitive strategy.
type SimpleBidder struct {
	id    tournament.AgentID
	delta decimal.Decimal
}

// NewSimpleBidder returns a bidder that always offers floor+delta.
func NewSimpleBidder(id tournament.AgentID, delta decimal.Decimal) *SimpleBidder {
	return &SimpleBidder{id: id, delta: delta}
}

func (b *SimpleBidder) ID() tournament.AgentID { return b.id }

// DecideBids always offers a single bid at floor+delta; the engine
// interprets the offer as price x supply for the full batch.
func (b *SimpleBidder) DecideBids(obs tournament.Observation) (tournament.BidDecision, error) {
	price := obs.Floor.Add(b.delta)
	if price.IsZero() || price.IsNegative() {
		return tournament.BidDecision{}, nil
	}
	return tournament.BidDecision{Bids: []tournament.BidOffer{{PricePerToken: price}}}, nil
}

// DecideRescind never rescinds.
func (b *SimpleBidder) DecideRescind(tournament.Observation, tournament.PeriodRecord) (tournament.RescindDecision, error) {
	return tournament.RescindDecision{Rescind: false}, nil
}
