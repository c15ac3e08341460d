package logic

import (
	model "cadence-social/pkg/datamodel"
	"fmt"
)

// PeopleRankRouter forwards a message to peers that are socially at least
// as important as this node.  Ranks travel between nodes when a contact
// ends.
type PeopleRankRouter struct {
	activeRouter

	config   PeopleRankConfig
	contacts *ContactHistoryTracker
	engine   *PeopleRankEngine
	policy   *ForwardingPolicy
	exchange *PeerExchangeProtocol
}

func NewPeopleRankRouter(config PeopleRankConfig) (*PeopleRankRouter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	contacts := NewContactHistoryTracker()
	engine := NewPeopleRankEngine(config.DampingFactor)
	return &PeopleRankRouter{
		config:   config,
		contacts: contacts,
		engine:   engine,
		policy:   NewForwardingPolicy(contacts, engine),
	}, nil
}

func (r *PeopleRankRouter) Init(host model.NodeId, n *Network) error {
	if err := r.activeRouter.init(host, n); err != nil {
		return err
	}
	r.contacts.SetRetention(n.config.HistoryRetention)
	r.exchange = NewPeerExchangeProtocol(host, n, r.log)
	return nil
}

func (r *PeopleRankRouter) GetLogicName() string {
	return "peoplerank"
}

func (r *PeopleRankRouter) Rank() float64 {
	return r.engine.Rank()
}

func (r *PeopleRankRouter) NeighborCount() int {
	return r.contacts.NeighborCount()
}

func (r *PeopleRankRouter) Contacts() *ContactHistoryTracker {
	return r.contacts
}

// OnContactChanged opens the contact on up.  On down it closes the
// interval, exchanges samples with the peer and recomputes the rank.
func (r *PeopleRankRouter) OnContactChanged(peer model.NodeId, isUp bool, now float64) {
	if isUp {
		r.contacts.OnContactUp(peer, now)
		return
	}
	if _, ok := r.contacts.OnContactDown(peer, now); !ok {
		r.log.Debugf("contact with %v went down without going up", peer)
	}

	mine := PeerRankSample{Rank: r.engine.Rank(), NeighborCount: r.contacts.NeighborCount()}
	if out := r.exchange.Exchange(peer, mine); out.Pulled {
		r.engine.SetSample(peer, out.Sample)
	}

	rank := r.engine.Recompute(r.contacts.Neighbors())
	r.log.Debugf("rank %.4f after contact with %v (%v neighbors)", rank, peer, r.contacts.NeighborCount())
}

// OnTick sends at most one message: deliverable ones first, then relays to
// peers the forwarding policy approves.
func (r *PeopleRankRouter) OnTick(now float64) {
	r.purgeExpired(now)
	if r.IsTransferring() || r.buffer.Len() == 0 {
		return
	}
	cons := r.net.ConnectionsOf(r.host)
	for _, con := range cons {
		if r.RequestDeliverableMessages(con) {
			return
		}
	}
	for _, con := range cons {
		peer := con.Other(r.host)
		relay := func(m *Message) bool {
			return m.To != peer && r.policy.ShouldForward(m, peer)
		}
		if r.tryMessages(con, r.buffer.HeldMessages(), relay) {
			return
		}
	}
}

// RequestDeliverableMessages starts a transfer of a message whose final
// destination is the other end of con.
func (r *PeopleRankRouter) RequestDeliverableMessages(con *Connection) bool {
	if r.IsTransferring() {
		return false
	}
	peer := con.Other(r.host)
	deliverable := func(m *Message) bool {
		return m.To == peer && r.policy.ShouldForward(m, peer)
	}
	return r.tryMessages(con, r.buffer.HeldMessages(), deliverable)
}

func (r *PeopleRankRouter) HandleRankPush(push RankPush) error {
	if push.To != r.host {
		return fmt.Errorf("rank push for %v reached %v", push.To, r.host)
	}
	r.ReceivePeerSample(push.From, push.Sample)
	return nil
}

// answers with this node's own current sample
func (r *PeopleRankRouter) HandleRankPull(pull RankPull) (RankReply, error) {
	if pull.To != r.host {
		return RankReply{}, fmt.Errorf("rank pull for %v reached %v", pull.To, r.host)
	}
	return RankReply{
		From:   r.host,
		Sample: PeerRankSample{Rank: r.engine.Rank(), NeighborCount: r.contacts.NeighborCount()},
	}, nil
}

func (r *PeopleRankRouter) ReceivePeerSample(from model.NodeId, sample PeerRankSample) {
	r.engine.SetSample(from, sample)
}

func (r *PeopleRankRouter) GetPeerSample(peer model.NodeId) (PeerRankSample, bool) {
	return r.engine.Sample(peer)
}
