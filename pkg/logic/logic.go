package logic

import (
	model "cadence-social/pkg/datamodel"
	"errors"
	"fmt"
	"sort"

	logger "github.com/sirupsen/logrus"
)

// our logger
var logg *logger.Logger = logger.StandardLogger()

var ErrUnknownRouter = errors.New("router not found")

// defines the interface for node routers
type Router interface {
	// attaches the router to node `host` of network n
	Init(host model.NodeId, n *Network) error
	// called when the contact with peer goes up or down
	OnContactChanged(peer model.NodeId, isUp bool, now float64)
	// called once per time step; the router may start a transfer
	OnTick(now float64)
	// admission control for a message offered by some peer
	CheckReceiving(m *Message) AdmissionResult
	// tries to send a message whose destination is the other end of con
	RequestDeliverableMessages(con *Connection) bool

	// creates a message at this node, as the source
	CreateMessage(m *Message) bool
	// a transfer to this node finished; m is this node's copy
	MessageTransferred(m *Message, from model.NodeId, now float64)
	// a transfer from this node to `to` finished
	TransferDone(m *Message, to model.NodeId)
	// removes one message; drop tells a buffer drop from a removal
	DeleteMessage(id string, drop bool) bool
	DeleteAllMessages(drop bool) int

	Buffer() *SimpleBuffer
	IsDelivered(id string) bool
	//get the router name
	GetLogicName() string
}

// a router that keeps a social rank
type Ranked interface {
	Rank() float64
}

type RouterFactory func(config *model.Config) (Router, error)

// a map of all of the supported routers
//
// Important: new routers need to be added here!
var RouterStore = map[string]RouterFactory{
	"peoplerank": func(config *model.Config) (Router, error) {
		r, err := NewPeopleRankRouter(PeopleRankConfigFrom(config))
		if err != nil {
			return nil, err
		}
		return r, nil
	},
	"epidemic": func(config *model.Config) (Router, error) {
		return NewEpidemicRouter(), nil
	},
}

// initialize the logic package
func Init(log *logger.Logger) {
	logg = log
	log.Debugf("installed routers: %v", GetInstalledRouters())
}

func GetInstalledRouters() []string {
	routers := make([]string, 0, len(RouterStore))
	for k := range RouterStore {
		routers = append(routers, k)
	}
	sort.Strings(routers)
	return routers
}

// builds a fresh router instance
func NewRouter(name string, config *model.Config) (Router, error) {
	factory, ok := RouterStore[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownRouter)
	}
	return factory(config)
}

// the router name used for node id, honoring per-node overrides
func RouterNameFor(config *model.Config, id model.NodeId) string {
	if name, ok := config.Simulation.RouterOverrides[id]; ok {
		return name
	}
	return config.Simulation.Router
}

// NewNetworkFromConfig builds a network with one router per node id.
func NewNetworkFromConfig(config *model.Config, clock *SimClock, nodes []model.NodeId) (*Network, error) {
	network := NewNetwork(logg, clock, NetworkConfigFrom(config))
	for _, id := range nodes {
		r, err := NewRouter(RouterNameFor(config, id), config)
		if err != nil {
			return nil, fmt.Errorf("node %v: %w", id, err)
		}
		if err := network.AddNode(id, r); err != nil {
			return nil, err
		}
	}
	return network, nil
}
