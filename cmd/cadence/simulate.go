package main

import (
	model "cadence-social/pkg/datamodel"
	"cadence-social/pkg/lens"
	logics "cadence-social/pkg/logic"
	"errors"
	"fmt"
	"time"
)

// what a finished run leaves behind
type simResult struct {
	Summary     logics.Summary
	Network     *logics.Network
	SocialTies  []model.PairKey
	RelayEvents int
	EndTime     float64
	// copies still held at the end
	Load      int
	AvgCopies float64
	MaxBuffer int
	MaxNode   model.NodeId
}

// loadEvents reads the scenario from the trace file or the imported dataset
func loadEvents(config *model.Config) ([]lens.Event, error) {
	switch {
	case config.Simulation.DatasetName != "":
		return lens.LoadDataset(config.Simulation.DatasetName)
	case config.Simulation.TraceFile != "":
		return lens.ReadFile(config.Simulation.TraceFile)
	}
	return nil, errors.New("neither simulation.trace_file nor simulation.dataset_name is set")
}

// every host of the trace, plus nodes 0..n-1
func simNodes(config *model.Config, events []lens.Event) []model.NodeId {
	nodes := lens.Hosts(events)
	seen := make(map[model.NodeId]bool, len(nodes))
	for _, n := range nodes {
		seen[n] = true
	}
	for i := 0; i < config.Simulation.Nodes; i++ {
		if id := model.NodeId(i); !seen[id] {
			nodes = append(nodes, id)
		}
	}
	return nodes
}

type simulation struct {
	config   *model.Config
	clock    *logics.SimClock
	network  *logics.Network
	nodes    []model.NodeId
	nextTick float64
	relays   int
}

// run ticks at every time step before `until` (or up to it, if inclusive)
func (s *simulation) tickUntil(until float64, inclusive bool) {
	for s.nextTick < until || (inclusive && s.nextTick == until) {
		s.clock.Advance(s.nextTick)
		var order []model.NodeId
		if s.config.Simulation.ShuffleTicks {
			order = make([]model.NodeId, len(s.nodes))
			for i, j := range model.Perm(len(s.nodes)) {
				order[i] = s.nodes[j]
			}
		}
		s.network.Tick(order)
		s.nextTick += s.config.Simulation.TimeStep
	}
}

func (s *simulation) apply(ev lens.Event) {
	switch e := ev.(type) {
	case *lens.ContactEvent:
		var err error
		if e.Up {
			err = s.network.ContactUp(e.Host1, e.Host2, e.Interface)
		} else {
			err = s.network.ContactDown(e.Host1, e.Host2)
		}
		if err != nil {
			log.Debugf("ignoring contact event at %v: %v", e.Time, err)
		}

	case *lens.MessageCreateEvent:
		r, ok := s.network.Router(e.From)
		if !ok {
			log.Debugf("message %v created at unknown host %v", e.ID, e.From)
			return
		}
		m := logics.NewMessage(e.ID, e.From, e.To, e.Size, e.ResponseSize, e.Time)
		if !r.CreateMessage(m) {
			log.Debugf("host %v could not create %v", e.From, e.ID)
		}

	case *lens.MessageDeleteEvent:
		r, ok := s.network.Router(e.Host)
		if !ok {
			log.Debugf("delete of %v at unknown host %v", e.ID, e.Host)
			return
		}
		if e.AllMessages() {
			n := r.DeleteAllMessages(e.Drop)
			log.Debugf("host %v deleted all %v messages", e.Host, n)
		} else if !r.DeleteMessage(e.ID, e.Drop) {
			log.Debugf("host %v has no message %v to delete", e.Host, e.ID)
		}

	case *lens.MessageRelayEvent:
		// routing decides relays itself; scripted ones are only counted
		s.relays++
		log.Debugf("scripted relay of %v from %v to %v (%v) ignored", e.ID, e.From, e.To, e.Stage)
	}
}

// simulate replays events through a network of routers built from config
func simulate(config *model.Config, events []lens.Event) (*simResult, error) {
	lens.SortEvents(events)
	nodes := simNodes(config, events)
	if len(nodes) == 0 {
		return nil, errors.New("scenario has no nodes")
	}
	clock := logics.NewSimClock(0)
	network, err := logics.NewNetworkFromConfig(config, clock, nodes)
	if err != nil {
		return nil, err
	}
	metric, err := logics.NewSocialMetric(config.PeopleRank.SocialMetric, network.PairHistory(), clock, config)
	if err != nil {
		return nil, err
	}

	end := config.Simulation.EndTime
	if end <= 0 && len(events) > 0 {
		end = events[len(events)-1].EventTime()
	}
	log.Infof("experiment %v: %v nodes, %v events, router %v, until t=%v",
		config.Simulation.ExperimentName, len(nodes), len(events), config.Simulation.Router, end)

	s := &simulation{config: config, clock: clock, network: network, nodes: nodes}
	const reportEvery = time.Second * 5
	lastReport := time.Now()
	for i, ev := range events {
		t := ev.EventTime()
		if t > end {
			break
		}
		s.tickUntil(t, false)
		clock.Advance(t)
		network.Update()
		s.apply(ev)

		if time.Since(lastReport) > reportEvery {
			log.Infof("simulated time is %v [%.1f%% of events]", t, 100.0*float64(i+1)/float64(len(events)))
			lastReport = time.Now()
		}
	}
	s.tickUntil(end, true)
	clock.Advance(end)
	network.Update()

	result := &simResult{
		Summary:     network.Stats().Summarize(network.Ranks()),
		Network:     network,
		SocialTies:  network.SocialTies(metric),
		RelayEvents: s.relays,
		EndTime:     clock.Now(),
	}
	result.Load, result.AvgCopies = network.Load()
	result.MaxBuffer, result.MaxNode = network.MaxBufferUsage()
	logSummary(config, result, metric.Name())
	return result, nil
}

func logSummary(config *model.Config, r *simResult, metricName string) {
	sum := r.Summary
	log.Infof("experiment %v finished at t=%v", config.Simulation.ExperimentName, r.EndTime)
	log.Infof("messages: created=%v started=%v relayed=%v aborted=%v dropped=%v removed=%v expired=%v delivered=%v",
		sum.Created, sum.Started, sum.Relayed, sum.Aborted, sum.Dropped, sum.Removed, sum.Expired, sum.Delivered)
	log.Infof("delivery probability %.4f, overhead ratio %.4f", sum.DeliveryProbability, sum.OverheadRatio)
	log.Infof("latency %.2f (stddev %.2f), mean hops %.2f", sum.LatencyMean, sum.LatencyStdDev, sum.HopMean)
	if len(sum.Refused) > 0 {
		log.Infof("refused transfers: %v", sum.Refused)
	}
	if sum.RankMax > 0 {
		log.Infof("rank mean %.4f (stddev %.4f), max %.4f at node %v", sum.RankMean, sum.RankStdDev, sum.RankMax, sum.RankMaxNode)
	}
	log.Infof("%v copies left in buffers (%.2f per message); max buffer usage %v bytes at node %v",
		r.Load, r.AvgCopies, r.MaxBuffer, r.MaxNode)
	log.Infof("%v social ties by %v metric", len(r.SocialTies), metricName)
	if r.RelayEvents > 0 {
		log.Infof("%v scripted relay events ignored", r.RelayEvents)
	}
}

// a short text form of the result, printed at the end of `sim`
func (r *simResult) String() string {
	return fmt.Sprintf("delivered %v/%v messages (%.2f%%)", r.Summary.Delivered, r.Summary.Created, 100*r.Summary.DeliveryProbability)
}
