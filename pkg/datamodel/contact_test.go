package datamodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPairKeyIsCanonical(t *testing.T) {
	assert.Equal(t, MakePairKey(3, 9), MakePairKey(9, 3))
	assert.Equal(t, PairKey{Low: 3, High: 9}, MakePairKey(9, 3))
	assert.Equal(t, PairKey{Low: 4, High: 4}, MakePairKey(4, 4))
}

func TestPairKeyOther(t *testing.T) {
	k := MakePairKey(2, 5)
	other, ok := k.Other(2)
	assert.True(t, ok)
	assert.Equal(t, NodeId(5), other)
	other, ok = k.Other(5)
	assert.True(t, ok)
	assert.Equal(t, NodeId(2), other)
	_, ok = k.Other(7)
	assert.False(t, ok)
}

func TestContactIntervalDuration(t *testing.T) {
	c := ContactInterval{Start: 10, End: 70.5}
	assert.Equal(t, 60.5, c.Duration())
	assert.Equal(t, "[10,70.5]", c.String())
}
