package junction

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Default configuration values
const (
	DefaultJunctionID   = "0"
	DefaultRoadLength   = 510.0
	DefaultResolution   = 84
	DefaultSeed         = uint64(123)
	DefaultEpisodeTicks = 3600
	DefaultDiscount     = 0.99
)

// Config implements a specific configuration of the Junction
// environment. Configurations are JSON serializable.
type Config struct {
	// SumoConfig is the .sumocfg file the engine is started with. Its
	// route file must be RouteFile.
	SumoConfig string `json:"sumo_config"`

	// RouteFile is where the demand schedule of each episode is written
	RouteFile string `json:"route_file"`

	JunctionID   string  `json:"junction_id"`
	RoadLength   float64 `json:"road_length"`
	Resolution   int     `json:"resolution"`
	Seed         uint64  `json:"seed"`
	Visualize    bool    `json:"visualize"`
	EpisodeTicks int     `json:"episode_ticks"`
	Arrival      Arrival `json:"arrival"`
	InitialPhase int     `json:"initial_phase"`
	Discount     float64 `json:"discount"`
	Weights      Weights `json:"weights"`

	// ReseedEachEpisode makes episode k use seed Seed+k. Otherwise
	// every episode replays the same demand schedule.
	ReseedEachEpisode bool `json:"reseed_each_episode"`
}

// DefaultConfig returns the configuration of the 84x84 four-way
// junction with a 510m road length, running from DefaultDataDir
func DefaultConfig() Config {
	c := Config{
		JunctionID:   DefaultJunctionID,
		RoadLength:   DefaultRoadLength,
		Resolution:   DefaultResolution,
		Seed:         DefaultSeed,
		EpisodeTicks: DefaultEpisodeTicks,
		Arrival:      DefaultArrival,
		InitialPhase: 0,
		Discount:     DefaultDiscount,
		Weights:      DefaultWeights,
	}
	c.UseDataDir(DefaultDataDir())
	return c
}

// UseDataDir points the configuration at the SUMO configuration and
// route file of a directory prepared by PrepareData
func (c *Config) UseDataDir(dir string) {
	c.SumoConfig = filepath.Join(dir, "cross.sumocfg")
	c.RouteFile = filepath.Join(dir, "cross.rou.xml")
}

// LoadConfig reads a JSON configuration file. Fields missing from the
// file keep their default values. Relative file names in the file are
// taken relative to the directory of the file.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()

	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("loadConfig: %w", err)
	}
	if err := json.Unmarshal(content, &c); err != nil {
		return Config{}, fmt.Errorf("loadConfig: could not decode %v: %w",
			path, err)
	}

	var files struct {
		SumoConfig string `json:"sumo_config"`
		RouteFile  string `json:"route_file"`
	}
	json.Unmarshal(content, &files)
	base := filepath.Dir(path)
	if files.SumoConfig != "" {
		c.SumoConfig = resolve(base, files.SumoConfig)
	}
	if files.RouteFile != "" {
		c.RouteFile = resolve(base, files.RouteFile)
	}

	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("loadConfig: %w", err)
	}
	return c, nil
}

func resolve(base, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(base, name)
}

// Validate checks that a configuration describes a usable environment.
// Arrival probabilities are not checked.
func (c Config) Validate() error {
	switch {
	case c.SumoConfig == "":
		return fmt.Errorf("validate: no sumo configuration file")
	case c.RouteFile == "":
		return fmt.Errorf("validate: no route file")
	case c.JunctionID == "":
		return fmt.Errorf("validate: no junction id")
	case c.RoadLength <= 0:
		return fmt.Errorf("validate: road length %v should be positive",
			c.RoadLength)
	case c.Resolution < 2:
		return fmt.Errorf("validate: resolution %v should be at least 2",
			c.Resolution)
	case c.EpisodeTicks <= 0:
		return fmt.Errorf("validate: episode ticks %v should be positive",
			c.EpisodeTicks)
	case c.InitialPhase != 0 && c.InitialPhase != 1:
		return fmt.Errorf("validate: initial phase %v ∉ {0, 1}",
			c.InitialPhase)
	}

	if err := c.Weights.validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	return nil
}

// Save writes the configuration as indented JSON
func (c Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "\t")
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}
