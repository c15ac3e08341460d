package logic

import (
	model "cadence-social/pkg/datamodel"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationMetricInclusiveThreshold(t *testing.T) {
	store := NewPairHistory()
	metric := NewDurationSocialMetric(store, 60)
	assert.False(t, metric.IsFriend(1, 2), "no history")

	store.Record(1, 2, model.ContactInterval{Start: 0, End: 20})
	store.Record(2, 1, model.ContactInterval{Start: 100, End: 139.5})
	assert.False(t, metric.IsFriend(1, 2))

	store.Record(1, 2, model.ContactInterval{Start: 200, End: 200.5})
	assert.True(t, metric.IsFriend(1, 2), "exactly at threshold")
	assert.True(t, metric.IsFriend(2, 1))
	assert.Equal(t, "duration", metric.Name())
}

func TestDurationMetricZeroThreshold(t *testing.T) {
	store := NewPairHistory()
	metric := NewDurationSocialMetric(store, 0)
	assert.False(t, metric.IsFriend(1, 2))
	store.Record(1, 2, model.ContactInterval{Start: 5, End: 5})
	assert.True(t, metric.IsFriend(1, 2))
}

func TestFrequencyMetric(t *testing.T) {
	store := NewPairHistory()
	metric := NewFrequencySocialMetric(store, 2)
	store.Record(3, 4, model.ContactInterval{Start: 0, End: 1})
	assert.False(t, metric.IsFriend(3, 4))
	store.Record(4, 3, model.ContactInterval{Start: 2, End: 3})
	assert.True(t, metric.IsFriend(3, 4))
	assert.Equal(t, []model.PairKey{{Low: 3, High: 4}}, store.Pairs())
}

func TestPairHistoryIntervalsAreCopies(t *testing.T) {
	store := NewPairHistory()
	store.Record(1, 2, model.ContactInterval{Start: 0, End: 10})
	intervals := store.Intervals(1, 2)
	intervals[0].End = 1000
	assert.Equal(t, []model.ContactInterval{{Start: 0, End: 10}}, store.Intervals(2, 1))
}

func TestRecencyMetricDecays(t *testing.T) {
	store := NewPairHistory()
	clock := NewSimClock(0)
	metric := NewRecencySocialMetric(store, clock, 30, 10)
	assert.False(t, metric.IsFriend(1, 2), "no history")

	store.Record(1, 2, model.ContactInterval{Start: 0, End: 40})
	clock.Advance(40)
	assert.True(t, metric.IsFriend(1, 2))
	// one half-life later the contact counts 20
	clock.Advance(50)
	assert.False(t, metric.IsFriend(1, 2))

	// three half-lives on, the old contact counts 5 and a fresh one of 25
	// brings the pair back to the threshold
	clock.Advance(70)
	store.Record(2, 1, model.ContactInterval{Start: 45, End: 70})
	assert.True(t, metric.IsFriend(1, 2))
	assert.Equal(t, "recency", metric.Name())
}

func TestRecencyMetricInclusiveThreshold(t *testing.T) {
	store := NewPairHistory()
	clock := NewSimClock(30)
	metric := NewRecencySocialMetric(store, clock, 30, 10)
	store.Record(1, 2, model.ContactInterval{Start: 0, End: 30})
	assert.True(t, metric.IsFriend(1, 2))
}

func TestNewSocialMetric(t *testing.T) {
	config := model.MakeDefaultConfig()
	store := NewPairHistory()
	clock := NewSimClock(0)
	for _, name := range []string{"duration", "frequency", "recency"} {
		m, err := NewSocialMetric(name, store, clock, config)
		require.NoError(t, err)
		assert.Equal(t, name, m.Name())
	}
	_, err := NewSocialMetric("popularity", store, clock, config)
	assert.Error(t, err)

	config.PeopleRank.RecencyHalfLife = 0
	_, err = NewSocialMetric("recency", store, clock, config)
	assert.Error(t, err)
}
