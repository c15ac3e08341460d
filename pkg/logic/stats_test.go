package logic

import (
	model "cadence-social/pkg/datamodel"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	s := NewMessageStats()
	s.Created = 4

	m := NewMessage("m1", 0, 2, 10, 0, 0)
	m.RecordHop(1, 5)
	assert.False(t, s.transferred(m, 1, 5))
	m.RecordHop(2, 10)
	assert.True(t, s.transferred(m, 2, 10))
	assert.False(t, s.transferred(m, 2, 12), "second arrival is not a delivery")

	m2 := NewMessage("m2", 0, 1, 10, 0, 4)
	m2.RecordHop(1, 6)
	assert.True(t, s.transferred(m2, 1, 6))
	s.Refused[NoSpace] = 3

	sum := s.Summarize(map[model.NodeId]float64{0: 0.2, 1: 0.6, 2: 0.4})
	assert.Equal(t, 2, sum.Delivered)
	assert.Equal(t, 4, sum.Relayed)
	assert.InDelta(t, 0.5, sum.DeliveryProbability, 1e-12)
	assert.InDelta(t, 1.0, sum.OverheadRatio, 1e-12)
	assert.InDelta(t, 6.0, sum.LatencyMean, 1e-12)
	assert.InDelta(t, 1.5, sum.HopMean, 1e-12)
	assert.InDelta(t, 0.4, sum.RankMean, 1e-12)
	assert.Equal(t, 0.6, sum.RankMax)
	assert.Equal(t, model.NodeId(1), sum.RankMaxNode)
	assert.Equal(t, 3, sum.Refused["no-space"])
}

func TestSummarizeNothingDelivered(t *testing.T) {
	sum := NewMessageStats().Summarize(nil)
	assert.True(t, math.IsNaN(sum.OverheadRatio))
	assert.Equal(t, 0.0, sum.DeliveryProbability)
	assert.Equal(t, 0.0, sum.RankMean)
}
