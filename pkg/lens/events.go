package lens

import (
	model "cadence-social/pkg/datamodel"
	"fmt"
	"sort"
)

// an event of a standard events trace
type Event interface {
	EventTime() float64
}

// a contact between two hosts went up or down
type ContactEvent struct {
	Time      float64
	Host1     model.NodeId
	Host2     model.NodeId
	Up        bool
	Interface string // may be empty
}

// a message is created at From, destined to To
type MessageCreateEvent struct {
	Time         float64
	ID           string
	From         model.NodeId
	To           model.NodeId
	Size         int
	ResponseSize int
}

type RelayStage int

const (
	RelaySending RelayStage = iota
	RelayTransferred
	RelayAborted
)

func (s RelayStage) String() string {
	switch s {
	case RelaySending:
		return "sending"
	case RelayTransferred:
		return "transferred"
	case RelayAborted:
		return "aborted"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// a scripted relay of a message from one host to another
type MessageRelayEvent struct {
	Time  float64
	ID    string
	From  model.NodeId
	To    model.NodeId
	Stage RelayStage
}

// a message is dropped (buffer drop) or removed at Host
type MessageDeleteEvent struct {
	Time float64
	ID   string // AllMessagesID deletes every message of the host
	Host model.NodeId
	Drop bool
}

func (e *ContactEvent) EventTime() float64       { return e.Time }
func (e *MessageCreateEvent) EventTime() float64 { return e.Time }
func (e *MessageRelayEvent) EventTime() float64  { return e.Time }
func (e *MessageDeleteEvent) EventTime() float64 { return e.Time }

func (e *MessageDeleteEvent) AllMessages() bool {
	return e.ID == AllMessagesID
}

// SortEvents orders events by time; events with the same time keep their
// trace order.
func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].EventTime() < events[j].EventTime()
	})
}

// Hosts returns every host address named by the events, in increasing order.
func Hosts(events []Event) []model.NodeId {
	seen := make(map[model.NodeId]struct{})
	for _, ev := range events {
		switch e := ev.(type) {
		case *ContactEvent:
			seen[e.Host1] = struct{}{}
			seen[e.Host2] = struct{}{}
		case *MessageCreateEvent:
			seen[e.From] = struct{}{}
			seen[e.To] = struct{}{}
		case *MessageRelayEvent:
			seen[e.From] = struct{}{}
			seen[e.To] = struct{}{}
		case *MessageDeleteEvent:
			seen[e.Host] = struct{}{}
		}
	}
	hosts := make([]model.NodeId, 0, len(seen))
	for h := range seen {
		hosts = append(hosts, h)
	}
	sort.Slice(hosts, func(i, j int) bool { return hosts[i] < hosts[j] })
	return hosts
}
