package datamodel

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	c := MakeDefaultConfig()
	require.NoError(t, c.Validate())
	assert.Equal(t, 0.85, c.PeopleRank.DampingFactor)
	assert.Equal(t, 60.0, c.PeopleRank.DurationThreshold)
	assert.True(t, strings.HasPrefix(c.Simulation.ExperimentName, "EXP-"))
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"damping zero", func(c *Config) { c.PeopleRank.DampingFactor = 0 }, "damping_factor"},
		{"damping one", func(c *Config) { c.PeopleRank.DampingFactor = 1 }, "damping_factor"},
		{"negative threshold", func(c *Config) { c.PeopleRank.DurationThreshold = -1 }, "duration_threshold"},
		{"unknown metric", func(c *Config) { c.PeopleRank.SocialMetric = "popularity" }, "social_metric"},
		{"recency without half-life", func(c *Config) {
			c.PeopleRank.SocialMetric = "recency"
			c.PeopleRank.RecencyHalfLife = 0
		}, "recency_half_life"},
		{"unknown router", func(c *Config) { c.Simulation.Router = "prophet" }, "simulation.router"},
		{"unknown override", func(c *Config) { c.Simulation.RouterOverrides = map[NodeId]string{3: "x"} }, "router_overrides"},
		{"zero step", func(c *Config) { c.Simulation.TimeStep = 0 }, "time_step"},
		{"bad organizer", func(c *Config) { c.Simulation.Organizer = "lifo" }, "organizer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := MakeDefaultConfig()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadConfigJSONAndYAML(t *testing.T) {
	dir := t.TempDir()

	jsonFile := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(jsonFile, []byte(`{"peoplerank": {"damping_factor": 0.5}, "simulation": {"router": "epidemic"}}`), 0o644))
	c, err := LoadConfig(jsonFile)
	require.NoError(t, err)
	assert.Equal(t, 0.5, c.PeopleRank.DampingFactor)
	assert.Equal(t, "epidemic", c.Simulation.Router)
	// untouched values keep their defaults
	assert.Equal(t, 60.0, c.PeopleRank.DurationThreshold)

	yamlFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(yamlFile, []byte("peoplerank:\n  duration_threshold: 30\nsimulation:\n  time_step: 5\n"), 0o644))
	c, err = LoadConfig(yamlFile)
	require.NoError(t, err)
	assert.Equal(t, 30.0, c.PeopleRank.DurationThreshold)
	assert.Equal(t, 5.0, c.Simulation.TimeStep)
	assert.Equal(t, 0.85, c.PeopleRank.DampingFactor)

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{"peoplerank": `), 0o644))
	_, err = LoadConfig(broken)
	assert.Error(t, err)
}
