package logic

import (
	model "cadence-social/pkg/datamodel"
	"errors"
	"fmt"

	logger "github.com/sirupsen/logrus"
)

var (
	// the peer does not run a social router; not a failure
	ErrNoSocialCapability = errors.New("peer does not support rank exchange")
	// the peer is not part of the network
	ErrUnknownNode = errors.New("unknown node")
)

// RankPush carries the sender's own sample to the peer.
type RankPush struct {
	From   model.NodeId
	To     model.NodeId
	Sample PeerRankSample
}

// RankPull asks the peer for its current sample.
type RankPull struct {
	From model.NodeId
	To   model.NodeId
}

// RankReply answers a RankPull.
type RankReply struct {
	From   model.NodeId
	Sample PeerRankSample
}

// SocialExchanger is the capability of a router that takes part in the rank
// exchange.  Routers that do not implement it are skipped.
type SocialExchanger interface {
	HandleRankPush(push RankPush) error
	HandleRankPull(pull RankPull) (RankReply, error)
	ReceivePeerSample(from model.NodeId, sample PeerRankSample)
	GetPeerSample(peer model.NodeId) (PeerRankSample, bool)
}

// ExchangeTransport delivers exchange messages to other nodes.  Each call has
// its own outcome.
type ExchangeTransport interface {
	Push(push RankPush) error
	Pull(pull RankPull) (RankReply, error)
}

// what happened during one exchange
type ExchangeOutcome struct {
	Pushed  bool
	Pulled  bool
	Sample  PeerRankSample // valid if Pulled
	PushErr error
	PullErr error
}

// Skipped is true when the peer has no social capability at all.
func (o ExchangeOutcome) Skipped() bool {
	return errors.Is(o.PushErr, ErrNoSocialCapability) && errors.Is(o.PullErr, ErrNoSocialCapability)
}

// PeerExchangeProtocol runs once per finished contact: push our sample, then
// pull the peer's.  The two halves fail independently.
type PeerExchangeProtocol struct {
	host      model.NodeId
	transport ExchangeTransport
	log       *logger.Entry
}

func NewPeerExchangeProtocol(host model.NodeId, transport ExchangeTransport, log *logger.Entry) *PeerExchangeProtocol {
	return &PeerExchangeProtocol{host: host, transport: transport, log: log}
}

func (p *PeerExchangeProtocol) Exchange(peer model.NodeId, mine PeerRankSample) ExchangeOutcome {
	var out ExchangeOutcome

	out.PushErr = p.transport.Push(RankPush{From: p.host, To: peer, Sample: mine})
	out.Pushed = out.PushErr == nil

	reply, err := p.transport.Pull(RankPull{From: p.host, To: peer})
	if err == nil && reply.From != peer {
		err = fmt.Errorf("rank reply from %v, expected %v", reply.From, peer)
	}
	out.PullErr = err
	if err == nil {
		out.Pulled = true
		out.Sample = reply.Sample
	}

	switch {
	case out.Skipped():
		p.log.Debugf("peer %v does not exchange ranks; skipped", peer)
	default:
		if out.PushErr != nil {
			p.log.Warnf("rank push to %v failed: %v", peer, out.PushErr)
		}
		if out.PullErr != nil {
			p.log.Warnf("rank pull from %v failed: %v", peer, out.PullErr)
		}
	}
	return out
}
