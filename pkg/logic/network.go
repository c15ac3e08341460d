package logic

import (
	model "cadence-social/pkg/datamodel"
	"fmt"
	"sort"

	logger "github.com/sirupsen/logrus"
)

// settings shared by every node of a network
type NetworkConfig struct {
	BufferSize       int
	Organizer        string
	TransferSpeed    float64
	MessageTTL       float64
	DeleteDelivered  bool
	HistoryRetention int
}

func NetworkConfigFrom(config *model.Config) NetworkConfig {
	return NetworkConfig{
		BufferSize:       config.Simulation.BufferSize,
		Organizer:        config.Simulation.Organizer,
		TransferSpeed:    config.Simulation.TransferSpeed,
		MessageTTL:       config.Simulation.MessageTTL,
		DeleteDelivered:  config.Simulation.DeleteDelivered,
		HistoryRetention: config.PeopleRank.HistoryRetention,
	}
}

// Network holds the routers of all nodes and the connections between them.
// It executes transfers and carries the rank exchange messages.  It is driven
// by a single event loop and takes no locks.
type Network struct {
	log         *logger.Logger
	clock       *SimClock
	config      NetworkConfig
	routers     map[model.NodeId]Router
	nodes       []model.NodeId
	connections map[model.PairKey]*Connection
	pairHistory *PairHistory
	stats       *MessageStats
}

func NewNetwork(log *logger.Logger, clock *SimClock, config NetworkConfig) *Network {
	return &Network{
		log:         log,
		clock:       clock,
		config:      config,
		routers:     make(map[model.NodeId]Router),
		connections: make(map[model.PairKey]*Connection),
		pairHistory: NewPairHistory(),
		stats:       NewMessageStats(),
	}
}

// installs router r on node id
func (n *Network) AddNode(id model.NodeId, r Router) error {
	if _, ok := n.routers[id]; ok {
		return fmt.Errorf("node %v already exists", id)
	}
	if err := r.Init(id, n); err != nil {
		return fmt.Errorf("initializing %v router of node %v: %w", r.GetLogicName(), id, err)
	}
	n.routers[id] = r
	n.nodes = append(n.nodes, id)
	sort.Slice(n.nodes, func(i, j int) bool { return n.nodes[i] < n.nodes[j] })
	return nil
}

func (n *Network) Router(id model.NodeId) (Router, bool) {
	r, ok := n.routers[id]
	return r, ok
}

// node ids in increasing order
func (n *Network) Nodes() []model.NodeId {
	return append([]model.NodeId(nil), n.nodes...)
}

func (n *Network) Now() float64 {
	return n.clock.Now()
}

func (n *Network) Clock() *SimClock {
	return n.clock
}

func (n *Network) Stats() *MessageStats {
	return n.stats
}

func (n *Network) PairHistory() *PairHistory {
	return n.pairHistory
}

func (n *Network) Connection(a, b model.NodeId) (*Connection, bool) {
	c, ok := n.connections[model.MakePairKey(a, b)]
	return c, ok
}

// the up connections of a node, ordered by the address of the other end
func (n *Network) ConnectionsOf(id model.NodeId) []*Connection {
	cons := make([]*Connection, 0)
	for _, c := range n.connections {
		if c.A == id || c.B == id {
			cons = append(cons, c)
		}
	}
	sort.Slice(cons, func(i, j int) bool { return cons[i].Other(id) < cons[j].Other(id) })
	return cons
}

// true if the node sends or receives on any connection
func (n *Network) IsTransferring(id model.NodeId) bool {
	for _, c := range n.connections {
		if c.transfer != nil && (c.transfer.From == id || c.transfer.To == id) {
			return true
		}
	}
	return false
}

// ContactUp opens a connection and tells both routers.
func (n *Network) ContactUp(a, b model.NodeId, iface string) error {
	ra, okA := n.routers[a]
	rb, okB := n.routers[b]
	if !okA || !okB || a == b {
		return fmt.Errorf("contact %v-%v: %w", a, b, ErrUnknownNode)
	}
	key := model.MakePairKey(a, b)
	if _, ok := n.connections[key]; ok {
		n.log.Debugf("contact %v already up; ignored", key)
		return nil
	}
	now := n.Now()
	n.connections[key] = newConnection(a, b, iface, now, n.config.TransferSpeed)
	n.log.Debugf("contact %v up at %v", key, now)
	ra.OnContactChanged(b, true, now)
	rb.OnContactChanged(a, true, now)
	return nil
}

// ContactDown closes a connection, aborting its transfer, records the
// interval in the pair history and tells both routers.  A teardown of a
// connection that is not up is ignored.
func (n *Network) ContactDown(a, b model.NodeId) error {
	ra, okA := n.routers[a]
	rb, okB := n.routers[b]
	if !okA || !okB || a == b {
		return fmt.Errorf("contact %v-%v: %w", a, b, ErrUnknownNode)
	}
	key := model.MakePairKey(a, b)
	con, ok := n.connections[key]
	if !ok {
		n.log.Debugf("contact %v down but was never up; ignored", key)
		return nil
	}
	now := n.Now()
	if t := con.transfer; t != nil {
		n.log.Debugf("transfer of %v from %v to %v aborted", t.Message.MessageId, t.From, t.To)
		n.stats.Aborted++
		con.transfer = nil
	}
	con.up = false
	delete(n.connections, key)
	n.pairHistory.Record(a, b, model.ContactInterval{Start: con.UpSince, End: now})
	n.log.Debugf("contact %v down at %v", key, now)
	ra.OnContactChanged(b, false, now)
	rb.OnContactChanged(a, false, now)
	return nil
}

// StartTransfer asks the other end of con to receive m from `from`.  The
// transfer starts only if the receiver accepts.
func (n *Network) StartTransfer(from model.NodeId, m *Message, con *Connection) AdmissionResult {
	if !con.up || con.transfer != nil {
		return Busy
	}
	to := con.Other(from)
	receiver, ok := n.routers[to]
	if !ok {
		return Busy
	}
	res := receiver.CheckReceiving(m)
	if res != Accept {
		n.stats.Refused[res]++
		return res
	}
	now := n.Now()
	con.transfer = &Transfer{
		Message: m,
		From:    from,
		To:      to,
		Started: now,
		DoneAt:  now + con.transferTime(m.Size),
	}
	n.stats.Started++
	n.log.Debugf("%v -> %v: started %v", from, to, m.MessageId)
	return Accept
}

// aborts the transfer of message id sent by `from`, if any
func (n *Network) abortTransfer(from model.NodeId, id string) {
	for _, c := range n.ConnectionsOf(from) {
		if t := c.transfer; t != nil && t.From == from && t.Message.MessageId == id {
			c.transfer = nil
			n.stats.Aborted++
		}
	}
}

// Update completes every transfer that is due.
func (n *Network) Update() {
	now := n.Now()
	keys := make([]model.PairKey, 0, len(n.connections))
	for k, c := range n.connections {
		if c.transfer != nil && c.transfer.DoneAt <= now {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Low != keys[j].Low {
			return keys[i].Low < keys[j].Low
		}
		return keys[i].High < keys[j].High
	})
	for _, k := range keys {
		con := n.connections[k]
		t := con.transfer
		con.transfer = nil

		received := t.Message.Copy()
		received.ReceiveTime = now
		received.RecordHop(t.To, now)
		if n.stats.transferred(received, t.To, now) {
			n.log.Infof("%v delivered to %v after %v hops (latency %v)", received.MessageId, t.To, received.Hops(), now-received.CreationTime)
		}
		n.routers[t.To].MessageTransferred(received, t.From, now)
		n.routers[t.From].TransferDone(t.Message, t.To)
	}
}

// Tick completes due transfers and then lets every router try to send, in
// the given order (all nodes by address when order is nil).
func (n *Network) Tick(order []model.NodeId) {
	n.Update()
	if order == nil {
		order = n.nodes
	}
	now := n.Now()
	for _, id := range order {
		if r, ok := n.routers[id]; ok {
			r.OnTick(now)
		}
	}
}

// rank of every node whose router has one
func (n *Network) Ranks() map[model.NodeId]float64 {
	ranks := make(map[model.NodeId]float64)
	for id, r := range n.routers {
		if ranked, ok := r.(Ranked); ok {
			ranks[id] = ranked.Rank()
		}
	}
	return ranks
}

// pairs of nodes that the metric considers friends
func (n *Network) SocialTies(metric SocialMetric) []model.PairKey {
	ties := make([]model.PairKey, 0)
	for _, key := range n.pairHistory.Pairs() {
		if metric.IsFriend(key.Low, key.High) {
			ties = append(ties, key)
		}
	}
	return ties
}

// the social capability of a node, if it has one
func (n *Network) exchanger(id model.NodeId) (SocialExchanger, error) {
	r, ok := n.routers[id]
	if !ok {
		return nil, fmt.Errorf("node %v: %w", id, ErrUnknownNode)
	}
	ex, ok := r.(SocialExchanger)
	if !ok {
		return nil, ErrNoSocialCapability
	}
	return ex, nil
}

// Push delivers a RankPush; part of ExchangeTransport.
func (n *Network) Push(push RankPush) error {
	ex, err := n.exchanger(push.To)
	if err != nil {
		return err
	}
	return ex.HandleRankPush(push)
}

// Pull delivers a RankPull and returns the reply; part of ExchangeTransport.
func (n *Network) Pull(pull RankPull) (RankReply, error) {
	ex, err := n.exchanger(pull.To)
	if err != nil {
		return RankReply{}, err
	}
	return ex.HandleRankPull(pull)
}

// Load counts the message copies held in all buffers; avg is the number of
// copies per distinct message held anywhere.
func (n *Network) Load() (total int, avg float64) {
	copies := make(map[string]int)
	for _, r := range n.routers {
		for _, m := range r.Buffer().HeldMessages() {
			copies[m.MessageId]++
			total++
		}
	}
	if len(copies) > 0 {
		avg = float64(total) / float64(len(copies))
	}
	return total, avg
}

// the highest buffer usage any node reached, and that node
func (n *Network) MaxBufferUsage() (int, model.NodeId) {
	maxUsage, maxNode := 0, model.NodeId(0)
	for _, id := range n.nodes {
		if usage := n.routers[id].Buffer().MaxBuffer; usage > maxUsage {
			maxUsage, maxNode = usage, id
		}
	}
	return maxUsage, maxNode
}
