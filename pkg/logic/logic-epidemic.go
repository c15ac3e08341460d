package logic

import (
	model "cadence-social/pkg/datamodel"
)

// EpidemicRouter hands every message to every peer that does not have it.
// It takes no part in the rank exchange.
type EpidemicRouter struct {
	activeRouter
}

func NewEpidemicRouter() *EpidemicRouter {
	return &EpidemicRouter{}
}

func (r *EpidemicRouter) Init(host model.NodeId, n *Network) error {
	return r.activeRouter.init(host, n)
}

func (r *EpidemicRouter) GetLogicName() string {
	return "epidemic"
}

func (r *EpidemicRouter) OnContactChanged(peer model.NodeId, isUp bool, now float64) {}

func (r *EpidemicRouter) OnTick(now float64) {
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
		if r.tryMessages(con, r.buffer.HeldMessages(), func(m *Message) bool { return m.To != peer }) {
			return
		}
	}
}

func (r *EpidemicRouter) RequestDeliverableMessages(con *Connection) bool {
	if r.IsTransferring() {
		return false
	}
	peer := con.Other(r.host)
	return r.tryMessages(con, r.buffer.HeldMessages(), func(m *Message) bool { return m.To == peer })
}
