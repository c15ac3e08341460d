package logic

import (
	model "cadence-social/pkg/datamodel"
)

// outcome of asking a node to receive a message
type AdmissionResult int

const (
	Accept AdmissionResult = iota
	// the node is already sending or receiving on some connection
	Busy
	// the node holds the message, or was its final destination already
	DuplicateOrDelivered
	// the message is out of TTL and this node is not its destination
	TTLExpired
	// the buffer could not make room
	NoSpace
)

func (a AdmissionResult) String() string {
	switch a {
	case Accept:
		return "accept"
	case Busy:
		return "busy"
	case DuplicateOrDelivered:
		return "duplicate-or-delivered"
	case TTLExpired:
		return "ttl-expired"
	case NoSpace:
		return "no-space"
	}
	return "unknown"
}

// what admission control needs to know about the receiving node
type AdmissionState interface {
	Host() model.NodeId
	IsTransferring() bool
	HasMessage(id string) bool
	IsDelivered(id string) bool
	ReserveSpace(size int) bool
	Now() float64
}

// CheckReceiving decides whether s accepts m.  The checks run in a fixed
// order and the first failing one wins; space is only reserved once every
// other check passed.
func CheckReceiving(s AdmissionState, m *Message) AdmissionResult {
	if s.IsTransferring() {
		return Busy // only one transfer at a time
	}
	if s.HasMessage(m.MessageId) || s.IsDelivered(m.MessageId) {
		return DuplicateOrDelivered
	}
	// an expired message may still complete its final hop
	if m.Expired(s.Now()) && m.To != s.Host() {
		return TTLExpired
	}
	if !s.ReserveSpace(m.Size) {
		return NoSpace
	}
	return Accept
}
