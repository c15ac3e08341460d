package logic

import (
	model "cadence-social/pkg/datamodel"
	"math"
)

// a message on its way over a connection
type Transfer struct {
	Message *Message
	From    model.NodeId
	To      model.NodeId
	Started float64
	DoneAt  float64
}

// a connection between two nodes while their contact is up.  It carries at
// most one transfer at a time.
type Connection struct {
	A, B      model.NodeId
	Interface string
	UpSince   float64
	speed     float64
	up        bool
	transfer  *Transfer
}

func newConnection(a, b model.NodeId, iface string, now, speed float64) *Connection {
	return &Connection{A: a, B: b, Interface: iface, UpSince: now, speed: speed, up: true}
}

func (c *Connection) Key() model.PairKey {
	return model.MakePairKey(c.A, c.B)
}

// the node at the other end from n
func (c *Connection) Other(n model.NodeId) model.NodeId {
	if n == c.A {
		return c.B
	}
	return c.A
}

func (c *Connection) IsUp() bool {
	return c.up
}

func (c *Connection) IsTransferring() bool {
	return c.transfer != nil
}

func (c *Connection) CurrentTransfer() *Transfer {
	return c.transfer
}

// time needed to move size bytes; zero speed means instantaneous
func (c *Connection) transferTime(size int) float64 {
	if c.speed <= 0 {
		return 0
	}
	return math.Max(float64(size)/c.speed, 0)
}
