package logic

import (
	model "cadence-social/pkg/datamodel"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// run-wide message counters
type MessageStats struct {
	Created   int
	Started   int
	Relayed   int
	Aborted   int
	Dropped   int
	Removed   int
	Expired   int
	Delivered int
	// admission refusals by reason
	Refused map[AdmissionResult]int

	latencies []float64
	hops      []float64
	delivered *model.FastSet
}

func NewMessageStats() *MessageStats {
	return &MessageStats{
		Refused:   make(map[AdmissionResult]int),
		delivered: model.NewFastSet(),
	}
}

// records a completed transfer; counts the first arrival at the destination
// as a delivery
func (s *MessageStats) transferred(m *Message, to model.NodeId, now float64) bool {
	s.Relayed++
	if m.To != to || !s.delivered.Add(m.MessageId) {
		return false
	}
	s.Delivered++
	s.latencies = append(s.latencies, now-m.CreationTime)
	s.hops = append(s.hops, float64(m.Hops()))
	return true
}

// summary of a run
type Summary struct {
	Created             int
	Started             int
	Relayed             int
	Aborted             int
	Dropped             int
	Removed             int
	Expired             int
	Delivered           int
	DeliveryProbability float64
	OverheadRatio       float64
	LatencyMean         float64
	LatencyStdDev       float64
	HopMean             float64
	RankMean            float64
	RankStdDev          float64
	RankMax             float64
	RankMaxNode         model.NodeId
	Refused             map[string]int
}

// Summarize computes the summary; ranks may be empty (e.g. epidemic runs).
func (s *MessageStats) Summarize(ranks map[model.NodeId]float64) Summary {
	sum := Summary{
		Created:   s.Created,
		Started:   s.Started,
		Relayed:   s.Relayed,
		Aborted:   s.Aborted,
		Dropped:   s.Dropped,
		Removed:   s.Removed,
		Expired:   s.Expired,
		Delivered: s.Delivered,
		Refused:   make(map[string]int),
	}
	for reason, n := range s.Refused {
		sum.Refused[reason.String()] = n
	}
	if s.Created > 0 {
		sum.DeliveryProbability = float64(s.Delivered) / float64(s.Created)
	}
	if s.Delivered > 0 {
		sum.OverheadRatio = float64(s.Relayed-s.Delivered) / float64(s.Delivered)
		sum.LatencyMean, sum.LatencyStdDev = meanStdDev(s.latencies)
		sum.HopMean = stat.Mean(s.hops, nil)
	} else {
		sum.OverheadRatio = math.NaN()
	}

	if len(ranks) > 0 {
		nodes := make([]model.NodeId, 0, len(ranks))
		for n := range ranks {
			nodes = append(nodes, n)
		}
		sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })
		values := make([]float64, len(nodes))
		for i, n := range nodes {
			values[i] = ranks[n]
		}
		sum.RankMean, sum.RankStdDev = meanStdDev(values)
		idx := floats.MaxIdx(values)
		sum.RankMax = values[idx]
		sum.RankMaxNode = nodes[idx]
	}
	return sum
}

// stddev of a single value is 0, not NaN
func meanStdDev(values []float64) (float64, float64) {
	if len(values) == 1 {
		return values[0], 0
	}
	return stat.MeanStdDev(values, nil)
}
