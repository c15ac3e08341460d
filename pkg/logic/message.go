package logic

import (
	model "cadence-social/pkg/datamodel"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// message structs
type messageHop struct {
	node model.NodeId
	time float64
}

func (mh messageHop) String() string {
	return fmt.Sprintf("n%v@%v", mh.node, mh.time)
}

// a message
type Message struct {

	// a unique, unchanging message ID
	MessageId string

	// original sender and final destination
	From model.NodeId
	To   model.NodeId

	// size of the message and of the requested response (0 = none), in bytes
	Size         int
	ResponseSize int

	// the time the message was originated
	CreationTime float64
	// the time this copy arrived at its current holder
	ReceiveTime float64

	// initial time to live, in time units; 0 means unlimited
	TTL float64

	// the path the message has taken so far.  This is used for simulation
	// purposes and not intended to actually be included in a message in a
	// real-world implementation.
	path []messageHop
}

func NewMessage(id string, from, to model.NodeId, size, responseSize int, created float64) *Message {
	m := &Message{
		MessageId:    id,
		From:         from,
		To:           to,
		Size:         size,
		ResponseSize: responseSize,
		CreationTime: created,
		ReceiveTime:  created,
	}
	m.RecordHop(from, created)
	return m
}

func (m Message) String() string {
	return fmt.Sprintf("[message] id=%v from=%v to=%v size=%v created=%v ttl=%v path=%v",
		m.MessageId,
		m.From,
		m.To,
		m.Size,
		m.CreationTime,
		m.TTL,
		m.GetPathString())
}

// time to live left at `now`; +Inf for messages without a TTL
func (m *Message) TTLLeft(now float64) float64 {
	if m.TTL <= 0 {
		return math.Inf(1)
	}
	return m.TTL - (now - m.CreationTime)
}

func (m *Message) Expired(now float64) bool {
	return m.TTLLeft(now) <= 0
}

// number of relays so far
func (m *Message) Hops() int {
	return len(m.path) - 1
}

// get a string that describes path of the message
func (m *Message) GetPathString() string {
	hops := make([]string, 0, len(m.path))
	for _, hop := range m.path {
		hops = append(hops, strconv.Itoa(int(hop.node)))
	}
	return strings.Join(hops, "->")
}

func (m *Message) Copy() *Message {
	newMessage := &Message{
		MessageId:    m.MessageId,
		From:         m.From,
		To:           m.To,
		Size:         m.Size,
		ResponseSize: m.ResponseSize,
		CreationTime: m.CreationTime,
		ReceiveTime:  m.ReceiveTime,
		TTL:          m.TTL,
	}
	newMessage.path = append(newMessage.path, m.path...)
	return newMessage
}

func (m *Message) RecordHop(node model.NodeId, t float64) {
	m.path = append(m.path, messageHop{
		node: node,
		time: t,
	})
}
