package logic

import (
	model "cadence-social/pkg/datamodel"
)

// ContactHistoryTracker records, for one node, when each contact with each
// peer opened and closed.
type ContactHistoryTracker struct {
	// pending start times, present only while the contact is up
	open map[model.NodeId]float64
	// closed intervals per peer, in chronological order
	history map[model.NodeId][]model.ContactInterval
	// peers in the order they were first met
	neighbors []model.NodeId
	// number of intervals kept per peer; 0 keeps all of them
	retention int
}

func NewContactHistoryTracker() *ContactHistoryTracker {
	return &ContactHistoryTracker{
		open:    make(map[model.NodeId]float64),
		history: make(map[model.NodeId][]model.ContactInterval),
	}
}

// SetRetention bounds the number of intervals kept for each peer.  Peers are
// never forgotten, only their oldest intervals.
func (c *ContactHistoryTracker) SetRetention(maxIntervalsPerPeer int) {
	if maxIntervalsPerPeer < 0 {
		maxIntervalsPerPeer = 0
	}
	c.retention = maxIntervalsPerPeer
}

// a stale start time for the same peer is overwritten
func (c *ContactHistoryTracker) OnContactUp(peer model.NodeId, now float64) {
	c.open[peer] = now
}

// OnContactDown closes the open contact with peer.  A teardown without a
// matching contact-up (e.g. the run started mid-contact, or a duplicate
// event) is ignored and reported as false.
func (c *ContactHistoryTracker) OnContactDown(peer model.NodeId, now float64) (model.ContactInterval, bool) {
	start, ok := c.open[peer]
	if !ok {
		return model.ContactInterval{}, false
	}
	delete(c.open, peer)

	interval := model.ContactInterval{Start: start, End: now}
	intervals, seen := c.history[peer]
	if !seen {
		c.neighbors = append(c.neighbors, peer)
	}
	intervals = append(intervals, interval)
	if c.retention > 0 && len(intervals) > c.retention {
		intervals = append([]model.ContactInterval(nil), intervals[len(intervals)-c.retention:]...)
	}
	c.history[peer] = intervals
	return interval, true
}

// number of distinct peers ever met (with a closed contact)
func (c *ContactHistoryTracker) NeighborCount() int {
	return len(c.neighbors)
}

// distinct peers in the order they were first met
func (c *ContactHistoryTracker) Neighbors() []model.NodeId {
	return append([]model.NodeId(nil), c.neighbors...)
}

func (c *ContactHistoryTracker) HasMet(peer model.NodeId) bool {
	_, ok := c.history[peer]
	return ok
}

func (c *ContactHistoryTracker) IsOpen(peer model.NodeId) bool {
	_, ok := c.open[peer]
	return ok
}

func (c *ContactHistoryTracker) Intervals(peer model.NodeId) []model.ContactInterval {
	return append([]model.ContactInterval(nil), c.history[peer]...)
}

func (c *ContactHistoryTracker) ContactCount(peer model.NodeId) int {
	return len(c.history[peer])
}

func (c *ContactHistoryTracker) TotalDuration(peer model.NodeId) float64 {
	total := 0.0
	for _, interval := range c.history[peer] {
		total += interval.Duration()
	}
	return total
}
