package lens

import (
	model "cadence-social/pkg/datamodel"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCreateActionFirst(t *testing.T) {
	ev, err := ParseLine("C 1.0 m1 0 1 500")
	require.NoError(t, err)
	assert.Equal(t, &MessageCreateEvent{Time: 1.0, ID: "m1", From: 0, To: 1, Size: 500, ResponseSize: 0}, ev)
}

func TestParseCreateTimeFirst(t *testing.T) {
	ev, err := ParseLine("12.5 C M7 p3 p14 1000 200")
	require.NoError(t, err)
	assert.Equal(t, &MessageCreateEvent{Time: 12.5, ID: "M7", From: 3, To: 14, Size: 1000, ResponseSize: 200}, ev)
}

func TestParseLines(t *testing.T) {
	tests := []struct {
		line string
		want Event
	}{
		{"5 CONN n1 n2 up", &ContactEvent{Time: 5, Host1: 1, Host2: 2, Up: true}},
		{"6 CONN 1 2 DOWN bt0", &ContactEvent{Time: 6, Host1: 1, Host2: 2, Up: false, Interface: "bt0"}},
		{"7 S m1 1 2", &MessageRelayEvent{Time: 7, ID: "m1", From: 1, To: 2, Stage: RelaySending}},
		{"8 DE m1 1 2", &MessageRelayEvent{Time: 8, ID: "m1", From: 1, To: 2, Stage: RelayTransferred}},
		{"9 A m1 1 2", &MessageRelayEvent{Time: 9, ID: "m1", From: 1, To: 2, Stage: RelayAborted}},
		{"10 DR m1 h4", &MessageDeleteEvent{Time: 10, ID: "m1", Host: 4, Drop: true}},
		{"11 R * 4", &MessageDeleteEvent{Time: 11, ID: "*", Host: 4, Drop: false}},
		{"12 C m2 0 1 10 x", &MessageCreateEvent{Time: 12, ID: "m2", From: 0, To: 1, Size: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			ev, err := ParseLine(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ev)
		})
	}
}

func TestParseSkipsCommentsAndBlanks(t *testing.T) {
	for _, line := range []string{"", "   ", "# a comment", "  # indented"} {
		ev, err := ParseLine(line)
		assert.NoError(t, err)
		assert.Nil(t, ev)
	}
}

func TestParseErrors(t *testing.T) {
	for _, line := range []string{
		"1 X m1 0 1",
		"1 CONN 1 2 sideways",
		"1 C m1 0 1",
		"1 C m1 0 1 big",
		"1 CONN 1 2",
		"1 DR m1",
		"1 C m1 a1b 1 10",
		"1 C m1 abc 1 10",
		"now C m1 0 1 10",
		"C",
		"1 C m1 0 1 -500",
		"1 C m1 0 1 500 -20",
		"NaN C m1 0 1 10",
		"C +Inf m1 0 1 10",
		"Inf CONN 0 1 up",
	} {
		_, err := ParseLine(line)
		assert.Error(t, err, line)
	}
	_, err := ParseLine("1 X m1 0 1")
	assert.ErrorIs(t, err, ErrUnknownAction)
	_, err = ParseLine("1 CONN 1 2 sideways")
	assert.ErrorIs(t, err, ErrUpDown)
}

func TestReaderReportsLine(t *testing.T) {
	trace := "# header\n0 CONN 0 1 up\n\n3 CONN 0 1 flip\n"
	_, err := ReadAll(strings.NewReader(trace))
	require.Error(t, err)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 4, pe.Line)
	assert.Equal(t, "3 CONN 0 1 flip", pe.Raw)
	assert.ErrorIs(t, err, ErrUpDown)
}

func TestReadAllAndHosts(t *testing.T) {
	trace := strings.Join([]string{
		"2 CONN 3 1 up",
		"1 C m1 0 1 500",
		"2 CONN 1 3 down",
		"4 R * 7",
	}, "\n")
	events, err := ReadAll(strings.NewReader(trace))
	require.NoError(t, err)
	require.Len(t, events, 4)

	SortEvents(events)
	assert.Equal(t, 1.0, events[0].EventTime())
	// equal times keep trace order
	assert.True(t, events[1].(*ContactEvent).Up)
	assert.False(t, events[2].(*ContactEvent).Up)
	assert.True(t, events[3].(*MessageDeleteEvent).AllMessages())

	assert.Equal(t, []model.NodeId{0, 1, 3, 7}, Hosts(events))
}

func TestRelayStageString(t *testing.T) {
	assert.Equal(t, "sending", RelaySending.String())
	assert.Equal(t, "transferred", RelayTransferred.String())
	assert.Equal(t, "aborted", RelayAborted.String())
}
