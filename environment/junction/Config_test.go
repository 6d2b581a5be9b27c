package junction

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}

	if c.Resolution != 84 || c.RoadLength != 510 || c.Seed != 123 {
		t.Errorf("unexpected defaults %+v", c)
	}
	if c.Weights != DefaultWeights || c.Arrival != DefaultArrival {
		t.Errorf("unexpected default weights or arrivals %+v", c)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
		"resolution": 42,
		"seed": 7,
		"arrival": {"north_south": 0.5},
		"reseed_each_episode": true
	}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	if c.Resolution != 42 || c.Seed != 7 || !c.ReseedEachEpisode {
		t.Errorf("fields not loaded: %+v", c)
	}
	if c.RoadLength != DefaultRoadLength {
		t.Errorf("road length have(%v) want(%v)", c.RoadLength,
			DefaultRoadLength)
	}

	// Nested objects are merged into the defaults
	want := DefaultArrival
	want.NorthSouth = 0.5
	if c.Arrival != want {
		t.Errorf("arrival have(%+v) want(%+v)", c.Arrival, want)
	}
}

func TestLoadConfigRelativeFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	abs := filepath.Join(t.TempDir(), "routes.xml")
	data := `{"sumo_config": "net/cross.sumocfg", "route_file": "` +
		filepath.ToSlash(abs) + `"}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "net", "cross.sumocfg"); c.SumoConfig != want {
		t.Errorf("sumo config have(%v) want(%v)", c.SumoConfig, want)
	}
	if c.RouteFile != filepath.Clean(abs) {
		t.Errorf("route file have(%v) want(%v)", c.RouteFile, abs)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadConfig(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("missing file should fail to load")
	}

	for name, data := range map[string]string{
		"malformed.json":  `{"resolution": `,
		"resolution.json": `{"resolution": 1}`,
		"phase.json":      `{"initial_phase": 2}`,
		"weights.json":    `{"weights": {"switch": -1}}`,
	} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Errorf("%v should fail to load", name)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := map[string]func(*Config){
		"sumo config":   func(c *Config) { c.SumoConfig = "" },
		"route file":    func(c *Config) { c.RouteFile = "" },
		"junction":      func(c *Config) { c.JunctionID = "" },
		"road length":   func(c *Config) { c.RoadLength = 0 },
		"resolution":    func(c *Config) { c.Resolution = 1 },
		"ticks":         func(c *Config) { c.EpisodeTicks = -1 },
		"initial phase": func(c *Config) { c.InitialPhase = -1 },
		"weights":       func(c *Config) { c.Weights.Delay = -0.4 },
	}

	for name, modify := range tests {
		c := DefaultConfig()
		modify(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("%v: config should be invalid", name)
		}
	}
}

func TestConfigSave(t *testing.T) {
	t.Setenv("JUNCTION_DATA", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.json")

	c := DefaultConfig()
	c.Seed = 99
	c.Visualize = true
	if err := c.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded != c {
		t.Errorf("loaded config have(%+v) want(%+v)", loaded, c)
	}
}
