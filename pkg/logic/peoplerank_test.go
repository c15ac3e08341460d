package logic

import (
	model "cadence-social/pkg/datamodel"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankFloorWithoutNeighbors(t *testing.T) {
	for _, d := range []float64{0.1, 0.5, 0.85, 0.99} {
		e := NewPeopleRankEngine(d)
		assert.InDelta(t, 1-d, e.Recompute(nil), 1e-12)
	}
}

func TestRankNormalizedByOwnNeighborCount(t *testing.T) {
	e := NewPeopleRankEngine(0.85)
	// the peers' own neighbor counts must not matter
	e.SetSample(1, PeerRankSample{Rank: 0.4, NeighborCount: 10})
	e.SetSample(2, PeerRankSample{Rank: 0.8, NeighborCount: 1})
	rank := e.Recompute([]model.NodeId{1, 2, 3})
	assert.InDelta(t, 0.15+0.85*(0.4/3+0.8/3), rank, 1e-12)
	assert.Equal(t, rank, e.Rank())
}

func TestRankIgnoresSamplesOfNonNeighbors(t *testing.T) {
	e := NewPeopleRankEngine(0.5)
	e.SetSample(9, PeerRankSample{Rank: 100})
	assert.InDelta(t, 0.5, e.Recompute([]model.NodeId{1}), 1e-12)
}

func TestPeopleRankConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultPeopleRankConfig().Validate())
	assert.Error(t, PeopleRankConfig{DampingFactor: 0, DurationThreshold: 1}.Validate())
	assert.Error(t, PeopleRankConfig{DampingFactor: 1, DurationThreshold: 1}.Validate())
	assert.Error(t, PeopleRankConfig{DampingFactor: 0.5, DurationThreshold: -1}.Validate())

	_, err := NewPeopleRankRouter(PeopleRankConfig{DampingFactor: 2})
	assert.Error(t, err)
}

// A knows B and C, B and C report their ranks; when A's contact with B ends
// A's rank reflects B's fresh sample and C's last known one.
func TestPeopleRankEndToEnd(t *testing.T) {
	const a, b, c = model.NodeId(0), model.NodeId(1), model.NodeId(2)
	network, clock := newTestNetwork(t, testNetworkConfig(), map[model.NodeId]string{a: "peoplerank", b: "peoplerank", c: "peoplerank"})
	ra := peopleRankRouter(t, network, a)
	rb := peopleRankRouter(t, network, b)

	ra.contacts.OnContactUp(c, 0)
	ra.contacts.OnContactDown(c, 1)
	ra.engine.SetSample(c, PeerRankSample{Rank: 0.50, NeighborCount: 3})
	ra.engine.rank = 0.15

	rb.contacts.OnContactUp(c, 0)
	rb.contacts.OnContactDown(c, 1)
	rb.engine.rank = 0.30

	clock.Advance(10)
	require.NoError(t, network.ContactUp(a, b, "wifi"))
	clock.Advance(20)
	require.NoError(t, network.ContactDown(a, b))

	sample, ok := ra.GetPeerSample(b)
	require.True(t, ok)
	// B's own teardown pushed its sample again, now counting A
	assert.Equal(t, PeerRankSample{Rank: 0.30, NeighborCount: 2}, sample)
	assert.Equal(t, 2, ra.NeighborCount())
	assert.InDelta(t, 0.15+0.85*(0.30/2+0.50/2), ra.Rank(), 1e-12)

	// B ran its own teardown after A and pulled A's new rank
	sampleOfA, ok := rb.GetPeerSample(a)
	require.True(t, ok)
	assert.InDelta(t, ra.Rank(), sampleOfA.Rank, 1e-12)
	assert.Equal(t, 2, sampleOfA.NeighborCount)
	assert.InDelta(t, 0.15+0.85*(ra.Rank()/2), rb.Rank(), 1e-12)
}

func TestPeopleRankSkipsNonSocialPeer(t *testing.T) {
	network, clock := newTestNetwork(t, testNetworkConfig(), map[model.NodeId]string{0: "peoplerank", 1: "epidemic"})
	r := peopleRankRouter(t, network, 0)

	require.NoError(t, network.ContactUp(0, 1, ""))
	clock.Advance(100)
	require.NoError(t, network.ContactDown(0, 1))

	_, ok := r.GetPeerSample(1)
	assert.False(t, ok)
	assert.True(t, r.contacts.HasMet(1))
	assert.InDelta(t, 0.15, r.Rank(), 1e-12)
}

func TestRankPushPullAddressing(t *testing.T) {
	network, _ := newTestNetwork(t, testNetworkConfig(), map[model.NodeId]string{0: "peoplerank", 1: "peoplerank"})
	r := peopleRankRouter(t, network, 1)

	require.NoError(t, network.Push(RankPush{From: 0, To: 1, Sample: PeerRankSample{Rank: 0.7, NeighborCount: 4}}))
	sample, ok := r.GetPeerSample(0)
	require.True(t, ok)
	assert.Equal(t, 0.7, sample.Rank)

	assert.Error(t, r.HandleRankPush(RankPush{From: 0, To: 5}))
	_, err := r.HandleRankPull(RankPull{From: 0, To: 5})
	assert.Error(t, err)

	_, err = network.Pull(RankPull{From: 1, To: 42})
	assert.ErrorIs(t, err, ErrUnknownNode)
}

type failingTransport struct {
	pushErr error
	reply   RankReply
	pullErr error
}

func (f *failingTransport) Push(push RankPush) error { return f.pushErr }
func (f *failingTransport) Pull(pull RankPull) (RankReply, error) {
	return f.reply, f.pullErr
}

func TestExchangeHalvesFailIndependently(t *testing.T) {
	log := testLogger().WithField("node", 0)

	transport := &failingTransport{pushErr: assert.AnError, reply: RankReply{From: 1, Sample: PeerRankSample{Rank: 0.4}}}
	out := NewPeerExchangeProtocol(0, transport, log).Exchange(1, PeerRankSample{})
	assert.False(t, out.Pushed)
	assert.True(t, out.Pulled)
	assert.Equal(t, 0.4, out.Sample.Rank)
	assert.False(t, out.Skipped())

	transport = &failingTransport{reply: RankReply{From: 2}}
	out = NewPeerExchangeProtocol(0, transport, log).Exchange(1, PeerRankSample{})
	assert.True(t, out.Pushed)
	assert.False(t, out.Pulled)
	assert.Error(t, out.PullErr)

	transport = &failingTransport{pushErr: ErrNoSocialCapability, pullErr: ErrNoSocialCapability}
	out = NewPeerExchangeProtocol(0, transport, log).Exchange(1, PeerRankSample{})
	assert.True(t, out.Skipped())
}
