package logic

import (
	model "cadence-social/pkg/datamodel"
	"fmt"
)

// the last {rank, neighbor count} a peer reported
type PeerRankSample struct {
	Rank          float64
	NeighborCount int
}

// settings of the PeopleRank router
type PeopleRankConfig struct {
	DampingFactor     float64 // in (0,1)
	DurationThreshold float64 // >= 0, used by the duration social metric
}

func DefaultPeopleRankConfig() PeopleRankConfig {
	return PeopleRankConfig{
		DampingFactor:     0.85,
		DurationThreshold: 60,
	}
}

func PeopleRankConfigFrom(config *model.Config) PeopleRankConfig {
	return PeopleRankConfig{
		DampingFactor:     config.PeopleRank.DampingFactor,
		DurationThreshold: config.PeopleRank.DurationThreshold,
	}
}

func (c PeopleRankConfig) Validate() error {
	if !(c.DampingFactor > 0 && c.DampingFactor < 1) {
		return fmt.Errorf("damping factor must be in (0,1), got %v", c.DampingFactor)
	}
	if c.DurationThreshold < 0 {
		return fmt.Errorf("duration threshold must be >= 0, got %v", c.DurationThreshold)
	}
	return nil
}

// PeopleRankEngine keeps a node's own rank and the latest sample of each
// peer, and recomputes the rank PageRank style.
type PeopleRankEngine struct {
	dampingFactor float64
	rank          float64
	samples       map[model.NodeId]PeerRankSample
}

func NewPeopleRankEngine(dampingFactor float64) *PeopleRankEngine {
	return &PeopleRankEngine{
		dampingFactor: dampingFactor,
		samples:       make(map[model.NodeId]PeerRankSample),
	}
}

func (e *PeopleRankEngine) Rank() float64 {
	return e.rank
}

func (e *PeopleRankEngine) DampingFactor() float64 {
	return e.dampingFactor
}

// overwrites whatever was known about peer
func (e *PeopleRankEngine) SetSample(peer model.NodeId, sample PeerRankSample) {
	e.samples[peer] = sample
}

func (e *PeopleRankEngine) Sample(peer model.NodeId) (PeerRankSample, bool) {
	s, ok := e.samples[peer]
	return s, ok
}

// Recompute updates the rank from the samples of the given neighbors:
//
//	rank = (1-d) + d * Σ sample(p).rank / len(neighbors)
//
// Every contribution is divided by this node's own neighbor count, not by the
// contributing peer's; peers without a sample contribute nothing.
func (e *PeopleRankEngine) Recompute(neighbors []model.NodeId) float64 {
	neighborCount := len(neighbors)
	sum := 0.0
	for _, peer := range neighbors {
		if sample, ok := e.samples[peer]; ok {
			sum += sample.Rank / float64(neighborCount)
		}
	}
	e.rank = (1 - e.dampingFactor) + e.dampingFactor*sum
	return e.rank
}
