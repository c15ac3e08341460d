package logic

import (
	model "cadence-social/pkg/datamodel"
)

// ForwardingPolicy decides whether a held message goes to a peer.
type ForwardingPolicy struct {
	contacts *ContactHistoryTracker
	engine   *PeopleRankEngine
}

func NewForwardingPolicy(contacts *ContactHistoryTracker, engine *PeopleRankEngine) *ForwardingPolicy {
	return &ForwardingPolicy{contacts: contacts, engine: engine}
}

// ShouldForward: only to known neighbors; always to the final destination;
// otherwise only to a peer whose last reported rank is at least ours (ties
// forward).
func (p *ForwardingPolicy) ShouldForward(m *Message, peer model.NodeId) bool {
	if !p.contacts.HasMet(peer) {
		return false
	}
	if m.To == peer {
		return true
	}
	sample, ok := p.engine.Sample(peer)
	if !ok {
		return false
	}
	return sample.Rank >= p.engine.Rank()
}
