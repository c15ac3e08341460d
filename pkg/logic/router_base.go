package logic

import (
	model "cadence-social/pkg/datamodel"

	logger "github.com/sirupsen/logrus"
)

// activeRouter holds what every router needs: a buffer, the ids delivered
// to this node and the link to the network.
type activeRouter struct {
	host            model.NodeId
	net             *Network
	buffer          *SimpleBuffer
	delivered       *model.FastSet
	messageTTL      float64
	deleteDelivered bool
	log             *logger.Entry
}

func (r *activeRouter) init(host model.NodeId, n *Network) error {
	organizer, err := NewOrganizer(n.config.Organizer)
	if err != nil {
		return err
	}
	r.host = host
	r.net = n
	r.log = n.log.WithField("node", host)
	r.delivered = model.NewFastSet()
	r.messageTTL = n.config.MessageTTL
	r.deleteDelivered = n.config.DeleteDelivered
	r.buffer = NewSimpleBuffer(n.config.BufferSize, organizer, r.log)
	r.buffer.protected = r.isSending
	r.buffer.onDrop = func(m *Message) {
		r.log.Debugf("dropped %v to make room", m.MessageId)
		n.stats.Dropped++
	}
	return nil
}

func (r *activeRouter) Host() model.NodeId {
	return r.host
}

func (r *activeRouter) Now() float64 {
	return r.net.Now()
}

func (r *activeRouter) Buffer() *SimpleBuffer {
	return r.buffer
}

func (r *activeRouter) IsTransferring() bool {
	return r.net.IsTransferring(r.host)
}

func (r *activeRouter) HasMessage(id string) bool {
	return r.buffer.HasMessage(id)
}

func (r *activeRouter) IsDelivered(id string) bool {
	return r.delivered.Contains(id)
}

func (r *activeRouter) ReserveSpace(size int) bool {
	return r.buffer.ReserveSpace(size)
}

func (r *activeRouter) CheckReceiving(m *Message) AdmissionResult {
	return CheckReceiving(r, m)
}

func (r *activeRouter) CreateMessage(m *Message) bool {
	if m.Size < 0 {
		r.log.Warnf("message %v has negative size %v", m.MessageId, m.Size)
		return false
	}
	if m.TTL == 0 {
		m.TTL = r.messageTTL
	}
	if r.buffer.HasMessage(m.MessageId) {
		r.log.Debugf("message %v already exists", m.MessageId)
		return false
	}
	if !r.buffer.ReserveSpace(m.Size) {
		r.log.Debugf("no room for new message %v (%v bytes)", m.MessageId, m.Size)
		r.net.stats.Dropped++
		return false
	}
	m.ReceiveTime = r.Now()
	r.buffer.Add(m)
	r.net.stats.Created++
	return true
}

// the final destination records the id and keeps no copy; relays store it
func (r *activeRouter) MessageTransferred(m *Message, from model.NodeId, now float64) {
	if m.To == r.host {
		r.delivered.Add(m.MessageId)
		return
	}
	if !r.buffer.ReserveSpace(m.Size) {
		r.log.Debugf("no room for %v from %v", m.MessageId, from)
		r.net.stats.Dropped++
		return
	}
	r.buffer.Add(m)
}

func (r *activeRouter) TransferDone(m *Message, to model.NodeId) {
	r.log.Debugf("sent %v to %v", m.MessageId, to)
}

func (r *activeRouter) DeleteMessage(id string, drop bool) bool {
	if r.buffer.Remove(id) == nil {
		return false
	}
	r.net.abortTransfer(r.host, id)
	if drop {
		r.net.stats.Dropped++
	} else {
		r.net.stats.Removed++
	}
	return true
}

func (r *activeRouter) DeleteAllMessages(drop bool) int {
	count := 0
	for _, m := range r.buffer.HeldMessages() {
		if r.DeleteMessage(m.MessageId, drop) {
			count++
		}
	}
	return count
}

// true if this node is sending message id right now
func (r *activeRouter) isSending(id string) bool {
	for _, con := range r.net.ConnectionsOf(r.host) {
		if t := con.transfer; t != nil && t.From == r.host && t.Message.MessageId == id {
			return true
		}
	}
	return false
}

// removes expired messages that are not on their way out
func (r *activeRouter) purgeExpired(now float64) {
	for _, m := range r.buffer.HeldMessages() {
		if m.Expired(now) && !r.isSending(m.MessageId) {
			r.buffer.Remove(m.MessageId)
			r.net.stats.Expired++
			r.log.Debugf("%v expired", m.MessageId)
		}
	}
}

// startTransfer offers m over con.  With delete-delivered on, a copy the
// destination already has is dropped here.
func (r *activeRouter) startTransfer(m *Message, con *Connection) AdmissionResult {
	res := r.net.StartTransfer(r.host, m, con)
	if res == DuplicateOrDelivered && r.deleteDelivered && m.To == con.Other(r.host) {
		if r.buffer.Remove(m.MessageId) != nil {
			r.net.stats.Removed++
			r.log.Debugf("%v already delivered; copy removed", m.MessageId)
		}
	}
	return res
}

// tryMessages offers the accepted candidates over con, in order, until one
// transfer starts.  candidates is a snapshot; entries removed from the
// buffer meanwhile are skipped.
func (r *activeRouter) tryMessages(con *Connection, candidates []*Message, accept func(m *Message) bool) bool {
	for _, m := range candidates {
		if !r.buffer.HasMessage(m.MessageId) || !accept(m) {
			continue
		}
		if r.startTransfer(m, con) == Accept {
			return true
		}
	}
	return false
}
