package main

import (
	"bytes"
	model "cadence-social/pkg/datamodel"
	"cadence-social/pkg/lens"
	"testing"

	logger "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWorld() *world_info {
	return &world_info{
		num_hosts:    4,
		sim_max_time: 5000,
		contact_gap:  300,
		contact_len:  50,
		num_messages: 20,
		message_size: 500,
		host_prefix:  "n",
	}
}

func generateTrace(t *testing.T, seed int64) string {
	t.Helper()
	log = logger.New()
	log.SetLevel(logger.WarnLevel)
	model.Seed(seed)
	var out bytes.Buffer
	require.NoError(t, writeTrace(testWorld(), &out))
	return out.String()
}

func TestTraceIsReadable(t *testing.T) {
	trace := generateTrace(t, 7)
	events, err := lens.ReadAll(bytes.NewBufferString(trace))
	require.NoError(t, err)

	creates, ups, downs := 0, 0, 0
	last := 0.0
	for _, ev := range events {
		assert.GreaterOrEqual(t, ev.EventTime(), last)
		last = ev.EventTime()
		switch e := ev.(type) {
		case *lens.MessageCreateEvent:
			creates++
			assert.NotEqual(t, e.From, e.To)
			assert.Equal(t, 500, e.Size)
		case *lens.ContactEvent:
			if e.Up {
				ups++
			} else {
				downs++
			}
		}
	}
	assert.Equal(t, 20, creates)
	assert.Equal(t, ups, downs)
	assert.Greater(t, ups, 0)
	assert.LessOrEqual(t, last, 5000.0)
	assert.Equal(t, []model.NodeId{0, 1, 2, 3}, lens.Hosts(events))
}

func TestTraceIsDeterministic(t *testing.T) {
	assert.Equal(t, generateTrace(t, 99), generateTrace(t, 99))
	assert.NotEqual(t, generateTrace(t, 99), generateTrace(t, 100))
}
