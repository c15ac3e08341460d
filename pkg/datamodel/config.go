/**
 * configuration for a run, includes default values for all args
 *
 */

package datamodel

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type Config struct {
	TopLevel   TopLevelConfig   `json:"top_level" yaml:"top_level"`
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
	PeopleRank PeopleRankConfig `json:"peoplerank" yaml:"peoplerank"`
	CLI        CLIConfig        `json:"cli" yaml:"cli"`
}

type TopLevelConfig struct {
	Log        string `json:"log" yaml:"log"`
	DataBase   string `json:"db" yaml:"db"`
	DBFile     string `json:"dbfile" yaml:"dbfile"`
	TimeFormat string `json:"time_format" yaml:"time_format"`
	Seed       int    `json:"seed" yaml:"seed"`
}

type SimulationConfig struct {
	// experiment name, used only to tag the log output
	ExperimentName string `json:"experiment_name" yaml:"experiment_name"`

	// router installed on every node ("peoplerank" or "epidemic")
	Router string `json:"router" yaml:"router"`
	// routers by node, overriding Router, for mixed networks
	RouterOverrides map[NodeId]string `json:"router_overrides" yaml:"router_overrides"`

	// the scenario comes either from a trace file or from an imported dataset
	TraceFile   string `json:"trace_file" yaml:"trace_file"`
	DatasetName string `json:"dataset_name" yaml:"dataset_name"`

	// minimal number of nodes; more are created if the trace names them
	Nodes int `json:"nodes" yaml:"nodes"`
	// time between router ticks
	TimeStep float64 `json:"time_step" yaml:"time_step"`
	// 0 means "until the last event"
	EndTime float64 `json:"end_time" yaml:"end_time"`

	// per node buffer, in bytes
	BufferSize int `json:"buffer_size" yaml:"buffer_size"`
	// "bounded" or "unbounded"
	Organizer string `json:"organizer" yaml:"organizer"`
	// bytes per time unit; 0 completes a transfer on the next update
	TransferSpeed float64 `json:"transfer_speed" yaml:"transfer_speed"`
	// message time to live, in time units; 0 is unlimited
	MessageTTL float64 `json:"message_ttl" yaml:"message_ttl"`
	// drop the local copy once the destination reports it already has it
	DeleteDelivered bool `json:"delete_delivered" yaml:"delete_delivered"`
	// tick the nodes in a (seeded) random order instead of by address
	ShuffleTicks bool `json:"shuffle_ticks" yaml:"shuffle_ticks"`
}

type PeopleRankConfig struct {
	DampingFactor      float64 `json:"damping_factor" yaml:"damping_factor"`
	DurationThreshold  float64 `json:"duration_threshold" yaml:"duration_threshold"`
	FrequencyThreshold int     `json:"frequency_threshold" yaml:"frequency_threshold"`
	// "duration", "frequency" or "recency"
	SocialMetric string `json:"social_metric" yaml:"social_metric"`
	// age at which a contact counts half for the recency metric
	RecencyHalfLife float64 `json:"recency_half_life" yaml:"recency_half_life"`
	// intervals kept per peer; 0 keeps everything
	HistoryRetention int `json:"history_retention" yaml:"history_retention"`
}

type CLIConfig struct {
	// trace import
	Path string `json:"path" yaml:"path"`
	Name string `json:"name" yaml:"name"`
}

var (
	validRouters    = []string{"peoplerank", "epidemic"}
	validOrganizers = []string{"bounded", "unbounded"}
	validMetrics    = []string{"duration", "frequency", "recency"}
)

// MakeDefaultConfig initializes the configuration to default values
func MakeDefaultConfig() *Config {

	DefaultConfig := new(Config)

	DefaultConfig.TopLevel.Log = "INFO"
	DefaultConfig.TopLevel.DataBase = "sqlite"
	DefaultConfig.TopLevel.DBFile = "cadence-social.db"
	DefaultConfig.TopLevel.TimeFormat = "2006-01-02 15:04:05.000"
	DefaultConfig.TopLevel.Seed = 12345
	DefaultConfig.Simulation.ExperimentName = "EXP-" + uuid.NewString()[:8]
	DefaultConfig.Simulation.Router = "peoplerank"
	DefaultConfig.Simulation.Nodes = 0
	DefaultConfig.Simulation.TimeStep = 1.0
	DefaultConfig.Simulation.EndTime = 0
	DefaultConfig.Simulation.BufferSize = 5000000
	DefaultConfig.Simulation.Organizer = "bounded"
	DefaultConfig.Simulation.TransferSpeed = 250000
	DefaultConfig.Simulation.MessageTTL = 0
	DefaultConfig.Simulation.DeleteDelivered = false
	DefaultConfig.PeopleRank.DampingFactor = 0.85
	DefaultConfig.PeopleRank.DurationThreshold = 60.0
	DefaultConfig.PeopleRank.FrequencyThreshold = 3
	DefaultConfig.PeopleRank.SocialMetric = "duration"
	DefaultConfig.PeopleRank.RecencyHalfLife = 3600.0
	DefaultConfig.CLI.Name = "default"

	return DefaultConfig
}

// reads a JSON (or YAML, by extension) config file over the defaults
func LoadConfig(filename string) (*Config, error) {
	config := MakeDefaultConfig()
	filedata, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(filedata, config)
	default:
		err = json.Unmarshal(filedata, config)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config file %v: %w", filename, err)
	}
	return config, nil
}

func oneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	return false
}

// checks every value that would otherwise make the run meaningless
func (c *Config) Validate() error {
	var errs []error
	pr := c.PeopleRank
	if !(pr.DampingFactor > 0 && pr.DampingFactor < 1) {
		errs = append(errs, fmt.Errorf("peoplerank.damping_factor must be in (0,1), got %v", pr.DampingFactor))
	}
	if pr.DurationThreshold < 0 {
		errs = append(errs, fmt.Errorf("peoplerank.duration_threshold must be >= 0, got %v", pr.DurationThreshold))
	}
	if pr.FrequencyThreshold < 0 {
		errs = append(errs, fmt.Errorf("peoplerank.frequency_threshold must be >= 0, got %v", pr.FrequencyThreshold))
	}
	if pr.SocialMetric == "recency" && pr.RecencyHalfLife <= 0 {
		errs = append(errs, fmt.Errorf("peoplerank.recency_half_life must be > 0, got %v", pr.RecencyHalfLife))
	}
	if pr.HistoryRetention < 0 {
		errs = append(errs, fmt.Errorf("peoplerank.history_retention must be >= 0, got %v", pr.HistoryRetention))
	}
	if !oneOf(pr.SocialMetric, validMetrics) {
		errs = append(errs, fmt.Errorf("peoplerank.social_metric %q is not one of %v", pr.SocialMetric, validMetrics))
	}
	sim := c.Simulation
	if !oneOf(sim.Router, validRouters) {
		errs = append(errs, fmt.Errorf("simulation.router %q is not one of %v", sim.Router, validRouters))
	}
	for node, r := range sim.RouterOverrides {
		if !oneOf(r, validRouters) {
			errs = append(errs, fmt.Errorf("simulation.router_overrides[%v] %q is not one of %v", node, r, validRouters))
		}
	}
	if !oneOf(sim.Organizer, validOrganizers) {
		errs = append(errs, fmt.Errorf("simulation.organizer %q is not one of %v", sim.Organizer, validOrganizers))
	}
	if sim.TimeStep <= 0 {
		errs = append(errs, fmt.Errorf("simulation.time_step must be > 0, got %v", sim.TimeStep))
	}
	if sim.BufferSize <= 0 {
		errs = append(errs, fmt.Errorf("simulation.buffer_size must be > 0, got %v", sim.BufferSize))
	}
	if sim.TransferSpeed < 0 || sim.MessageTTL < 0 || sim.EndTime < 0 || sim.Nodes < 0 {
		errs = append(errs, errors.New("simulation.transfer_speed, message_ttl, end_time and nodes must not be negative"))
	}
	return errors.Join(errs...)
}
