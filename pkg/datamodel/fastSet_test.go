package datamodel_test

import (
	model "cadence-social/pkg/datamodel"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFastSetAdd(t *testing.T) {
	set := model.NewFastSet()

	assert.True(t, set.Add("item1"))
	assert.True(t, set.Add("item2"))
	assert.False(t, set.Add("item1"))

	assert.True(t, set.Contains("item1"))
	assert.True(t, set.Contains("item2"))
	assert.False(t, set.Contains("item3"))
	assert.Equal(t, 2, set.Len())
}

func TestFastSetRemove(t *testing.T) {
	set := model.NewFastSet()

	set.Add("item1")
	set.Remove("item1")
	set.Remove("never-added")

	assert.False(t, set.Contains("item1"))
	assert.Equal(t, 0, set.Len())
}
