package galaxy

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed config.yaml
var defaultConfigYAML []byte

// Range is an inclusive integer band.
type Range struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Config drives galaxy generation. The embedded default profile
// matches the classic 50-location world; a user file overrides only
// the fields it names.
type Config struct {
	// GalaxyName and StartDate pin the world identity; left empty,
	// generation rolls them.
	GalaxyName string `yaml:"galaxy_name"`
	StartDate  string `yaml:"start_date"`

	LocationCount   int `yaml:"location_count"`
	DynamicNPCCount int `yaml:"dynamic_npc_count"`

	// Type shares of the location count, gates take the remainder.
	ColonyShare  float64 `yaml:"colony_share"`
	StationShare float64 `yaml:"station_share"`
	OutpostShare float64 `yaml:"outpost_share"`

	Wealth     map[string]Range `yaml:"wealth"`
	Population map[string]Range `yaml:"population"`

	NPCsPerLocation Range `yaml:"npcs_per_location"`
	HistoryEvents   Range `yaml:"history_events"`

	NamePrefixes []string `yaml:"name_prefixes"`
	NameSuffixes []string `yaml:"name_suffixes"`
	SystemNames  []string `yaml:"system_names"`
	GateNames    []string `yaml:"gate_names"`

	NPCFirstNames []string `yaml:"npc_first_names"`
	NPCLastNames  []string `yaml:"npc_last_names"`

	CallsignPrefixes []string `yaml:"callsign_prefixes"`
	ShipNames        []string `yaml:"ship_names"`
	ShipTypes        []string `yaml:"ship_types"`

	HistoryTitles  []string `yaml:"history_titles"`
	HistoryFigures []string `yaml:"history_figures"`
}

// DefaultConfig returns the embedded generation profile.
func DefaultConfig() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultConfigYAML, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse default config: %w", err)
	}
	return cfg, nil
}

// LoadConfig returns the default profile with the named YAML file
// layered over it. An empty path returns the default unchanged.
func LoadConfig(path string) (*Config, error) {
	cfg, err := DefaultConfig()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}

	f, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(f, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects profiles generation cannot work with.
func (c *Config) Validate() error {
	if c.LocationCount < 2 {
		return fmt.Errorf("location_count must be at least 2, got %d", c.LocationCount)
	}
	if c.DynamicNPCCount < 0 {
		return fmt.Errorf("dynamic_npc_count must not be negative, got %d", c.DynamicNPCCount)
	}
	if c.ColonyShare < 0 || c.StationShare < 0 || c.OutpostShare < 0 {
		return fmt.Errorf("type shares must not be negative")
	}
	if c.ColonyShare+c.StationShare+c.OutpostShare > 1 {
		return fmt.Errorf("type shares must leave room for gates, got %.2f total",
			c.ColonyShare+c.StationShare+c.OutpostShare)
	}
	for _, kind := range []string{"colony", "space_station", "outpost", "gate"} {
		if _, ok := c.Wealth[kind]; !ok {
			return fmt.Errorf("wealth table is missing %s", kind)
		}
		if _, ok := c.Population[kind]; !ok {
			return fmt.Errorf("population table is missing %s", kind)
		}
	}
	for kind, r := range c.Wealth {
		if r.Min < 1 || r.Max > 10 || r.Min > r.Max {
			return fmt.Errorf("wealth range for %s must sit inside 1..10, got %d..%d", kind, r.Min, r.Max)
		}
	}
	for kind, r := range c.Population {
		if r.Min < 0 || r.Min > r.Max {
			return fmt.Errorf("population range for %s is invalid: %d..%d", kind, r.Min, r.Max)
		}
	}
	if c.NPCsPerLocation.Min < 0 || c.NPCsPerLocation.Min > c.NPCsPerLocation.Max {
		return fmt.Errorf("npcs_per_location range is invalid: %d..%d",
			c.NPCsPerLocation.Min, c.NPCsPerLocation.Max)
	}
	if c.HistoryEvents.Min < 0 || c.HistoryEvents.Min > c.HistoryEvents.Max {
		return fmt.Errorf("history_events range is invalid: %d..%d",
			c.HistoryEvents.Min, c.HistoryEvents.Max)
	}
	for name, table := range map[string][]string{
		"name_prefixes":     c.NamePrefixes,
		"name_suffixes":     c.NameSuffixes,
		"system_names":      c.SystemNames,
		"gate_names":        c.GateNames,
		"npc_first_names":   c.NPCFirstNames,
		"npc_last_names":    c.NPCLastNames,
		"callsign_prefixes": c.CallsignPrefixes,
		"ship_names":        c.ShipNames,
		"ship_types":        c.ShipTypes,
		"history_titles":    c.HistoryTitles,
		"history_figures":   c.HistoryFigures,
	} {
		if len(table) == 0 {
			return fmt.Errorf("%s table must not be empty", name)
		}
	}
	return nil
}
