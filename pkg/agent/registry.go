// Package agent provides an ordered, duplicate-checked agent list and two
// minimal reference implementations of tournament.Agent, so the engine is
// exercisable end to end without a caller writing an agent first.
package agent

import (
	"errors"
	"fmt"

	"github.com/auctiontourney/engine/pkg/tournament"
)

// ErrDuplicateID mirrors tournament.ErrDuplicateAgent at the point a
// caller assembles its agent list, before a Store is ever built.
var ErrDuplicateID = errors.New("agent: duplicate identifier")

// Registry holds an ordered, duplicate-checked list of agents ready to be
// handed to tournament.New.
type Registry struct {
	order []tournament.Agent
	seen  map[tournament.AgentID]struct{}
}

// NewRegistry builds a Registry from agents in the given order. A
// duplicate identifier is a fatal construction error, returned
// immediately rather than discovered later inside tournament.New.
func NewRegistry(agents ...tournament.Agent) (*Registry, error) {
	r := &Registry{seen: make(map[tournament.AgentID]struct{}, len(agents))}
	for _, a := range agents {
		if err := r.add(a); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) add(a tournament.Agent) error {
	id := a.ID()
	if _, exists := r.seen[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	r.seen[id] = struct{}{}
	r.order = append(r.order, a)
	return nil
}

// Agents returns the registered agents in registration order.
func (r *Registry) Agents() []tournament.Agent {
	out := make([]tournament.Agent, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered agents.
func (r *Registry) Len() int { return len(r.order) }
