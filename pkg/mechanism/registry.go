package mechanism

import "github.com/shopspring/decimal"

// Registry maps a mechanism tag to its clearing implementation. It
// enumerates the two implemented mechanisms plus the three reserved tags,
// so ListTags and Resolve agree on the full universe of tags the engine
// knows about, even though the reserved ones cannot clear.
type Registry struct {
	mechanisms map[Tag]Mechanism
	order      []Tag
}

// NewRegistry returns a registry pre-populated with the default
// mechanisms and the three reserved tags.
func NewRegistry() *Registry {
	r := &Registry{mechanisms: make(map[Tag]Mechanism)}
	r.register(NewSecondPrice())
	r.register(NewUniformPrice())
	r.register(reserved{tag: DiscriminatoryPayAsBid})
	r.register(reserved{tag: DescendingPrice})
	r.register(reserved{tag: SealedFirstPrice})
	return r
}

func (r *Registry) register(m Mechanism) {
	r.mechanisms[m.Tag()] = m
	r.order = append(r.order, m.Tag())
}

// Resolve returns the mechanism registered under tag.
func (r *Registry) Resolve(tag Tag) (Mechanism, error) {
	m, ok := r.mechanisms[tag]
	if !ok {
		return nil, ErrUnknownTag
	}
	return m, nil
}

// ListTags returns every tag the registry knows about, implemented or
// reserved, in registration order.
func (r *Registry) ListTags() []Tag {
	out := make([]Tag, len(r.order))
	copy(out, r.order)
	return out
}

// Available reports whether tag's mechanism can actually clear: it
// invokes Clear with an empty bid set at zero supply and zero floor
// and reports success. Reserved tags always fail this probe.
func (r *Registry) Available(tag Tag) bool {
	m, ok := r.mechanisms[tag]
	if !ok {
		return false
	}
	_, err := m.Clear(nil, decimal.Zero, decimal.Zero)
	return err == nil
}
