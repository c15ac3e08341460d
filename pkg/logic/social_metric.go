package logic

import (
	model "cadence-social/pkg/datamodel"
	"fmt"
	"math"
	"sort"
)

// PairHistory keeps the closed contact intervals of every pair of nodes.
type PairHistory struct {
	intervals map[model.PairKey][]model.ContactInterval
}

func NewPairHistory() *PairHistory {
	return &PairHistory{intervals: make(map[model.PairKey][]model.ContactInterval)}
}

func (h *PairHistory) Record(a, b model.NodeId, interval model.ContactInterval) {
	key := model.MakePairKey(a, b)
	h.intervals[key] = append(h.intervals[key], interval)
}

// the intervals of the pair {a,b}, oldest first; order of a and b is irrelevant
func (h *PairHistory) Intervals(a, b model.NodeId) []model.ContactInterval {
	return append([]model.ContactInterval(nil), h.intervals[model.MakePairKey(a, b)]...)
}

// every pair that met at least once, in address order
func (h *PairHistory) Pairs() []model.PairKey {
	keys := make([]model.PairKey, 0, len(h.intervals))
	for k := range h.intervals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Low != keys[j].Low {
			return keys[i].Low < keys[j].Low
		}
		return keys[i].High < keys[j].High
	})
	return keys
}

// SocialMetric tells whether two nodes are friends.
type SocialMetric interface {
	IsFriend(a, b model.NodeId) bool
	Name() string
}

// friends once the pair spent at least `threshold` time in contact
type DurationSocialMetric struct {
	store     *PairHistory
	threshold float64
}

func NewDurationSocialMetric(store *PairHistory, threshold float64) *DurationSocialMetric {
	return &DurationSocialMetric{store: store, threshold: threshold}
}

func (d *DurationSocialMetric) IsFriend(a, b model.NodeId) bool {
	intervals := d.store.Intervals(a, b)
	if len(intervals) == 0 {
		return false
	}
	total := 0.0
	for _, i := range intervals {
		total += i.Duration()
	}
	return total >= d.threshold
}

func (d *DurationSocialMetric) Name() string {
	return "duration"
}

// friends once the pair met at least `threshold` times
type FrequencySocialMetric struct {
	store     *PairHistory
	threshold int
}

func NewFrequencySocialMetric(store *PairHistory, threshold int) *FrequencySocialMetric {
	return &FrequencySocialMetric{store: store, threshold: threshold}
}

func (f *FrequencySocialMetric) IsFriend(a, b model.NodeId) bool {
	count := len(f.store.Intervals(a, b))
	return count > 0 && count >= f.threshold
}

func (f *FrequencySocialMetric) Name() string {
	return "frequency"
}

// RecencySocialMetric weighs every contact by its age: a contact that ended
// one half-life ago counts for half its duration. Friends once the weighted
// sum reaches the duration threshold.
type RecencySocialMetric struct {
	store     *PairHistory
	clock     Clock
	threshold float64
	halfLife  float64
}

func NewRecencySocialMetric(store *PairHistory, clock Clock, threshold, halfLife float64) *RecencySocialMetric {
	return &RecencySocialMetric{store: store, clock: clock, threshold: threshold, halfLife: halfLife}
}

func (r *RecencySocialMetric) IsFriend(a, b model.NodeId) bool {
	intervals := r.store.Intervals(a, b)
	if len(intervals) == 0 {
		return false
	}
	now := r.clock.Now()
	total := 0.0
	for _, i := range intervals {
		age := math.Max(0, now-i.End)
		total += i.Duration() * math.Pow(0.5, age/r.halfLife)
	}
	return total >= r.threshold
}

func (r *RecencySocialMetric) Name() string {
	return "recency"
}

// NewSocialMetric builds the metric named in the peoplerank config section.
// The clock is only read by the recency metric.
func NewSocialMetric(name string, store *PairHistory, clock Clock, config *model.Config) (SocialMetric, error) {
	pr := config.PeopleRank
	switch name {
	case "duration":
		return NewDurationSocialMetric(store, pr.DurationThreshold), nil
	case "frequency":
		return NewFrequencySocialMetric(store, pr.FrequencyThreshold), nil
	case "recency":
		if pr.RecencyHalfLife <= 0 {
			return nil, fmt.Errorf("recency half-life must be > 0, got %v", pr.RecencyHalfLife)
		}
		return NewRecencySocialMetric(store, clock, pr.DurationThreshold, pr.RecencyHalfLife), nil
	}
	return nil, fmt.Errorf("unknown social metric %q", name)
}
