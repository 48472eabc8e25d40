package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default values, applied to anything a config file leaves out.
const (
	DefaultOutputDir   = "./output"
	DefaultCSVFilename = "stimuli.csv"
	DefaultWorkers     = 4
	DefaultJitter      = 5
	DefaultBackground  = "black"
	DefaultLogLevel    = "info"
)

var (
	DefaultWindowSize   = Pair{227, 227}
	DefaultGridSize     = Pair{5, 5}
	DefaultItemBBoxSize = Pair{30, 30}
	DefaultSetSizes     = []int{1, 2, 4, 8}
)

// Pair is a two-element (height, width) or (rows, cols) value, written as a
// YAML list.
type Pair [2]int

// Config is the whole batch description.
type Config struct {
	General General           `yaml:"general"`
	Stimuli []Stimulus        `yaml:"stimuli"`
	Palette map[string]string `yaml:"palette"`
	Log     Log               `yaml:"log"`
}

// General holds batch-wide settings and geometry defaults for every stimulus.
type General struct {
	OutputDir        string `yaml:"output_dir"`
	CSVFilename      string `yaml:"csv_filename"`
	NumTargetPresent Counts `yaml:"num_target_present"`
	NumTargetAbsent  Counts `yaml:"num_target_absent"`
	SetSizes         []int  `yaml:"set_sizes"`
	EnforceUnique    *bool  `yaml:"enforce_unique"`
	Seed             int64  `yaml:"seed"`
	Workers          int    `yaml:"workers"`
	SQLiteIndex      bool   `yaml:"sqlite_index"`

	Geometry `yaml:",inline"`
}

// Geometry is the placement and rendering settings shared by the general
// section and each stimulus. Nil means "not set here".
type Geometry struct {
	WindowSize    *Pair `yaml:"window_size"`
	GridSize      *Pair `yaml:"grid_size"`
	FreeField     *bool `yaml:"free_field"`
	BorderSize    *Pair `yaml:"border_size"`
	ItemBBoxSize  *Pair `yaml:"item_bbox_size"`
	Jitter        *int  `yaml:"jitter"`
	MinCenterDist *int  `yaml:"min_center_dist"`
}

// Stimulus describes one stimulus type.
type Stimulus struct {
	Name   string `yaml:"name"`
	Flavor string `yaml:"flavor"`

	Geometry `yaml:",inline"`

	TargetColor        string `yaml:"target_color"`
	DistractorColor    string `yaml:"distractor_color"`
	AltDistractorColor string `yaml:"alt_distractor_color"`
	BackgroundColor    string `yaml:"background_color"`
	TargetNumber       *int   `yaml:"target_number"`
	DistractorNumber   *int   `yaml:"distractor_number"`
	TargetRotation     *int   `yaml:"target_rotation"`

	// Per-stimulus overrides of the general counts and set sizes.
	NumTargetPresent *Counts `yaml:"num_target_present"`
	NumTargetAbsent  *Counts `yaml:"num_target_absent"`
	SetSizes         []int   `yaml:"set_sizes"`
}

// Log configures the logger.
type Log struct {
	Level       string `yaml:"level"`
	File        string `yaml:"file"`
	Development bool   `yaml:"development"`
}

// Load reads path, applies environment overrides and defaults, and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse is Load for a config already in memory.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills every unset batch-wide value. Per-stimulus values are
// resolved later against the general section, see Resolve.
func (c *Config) ApplyDefaults() {
	g := &c.General
	if g.OutputDir == "" {
		g.OutputDir = DefaultOutputDir
	}
	if g.CSVFilename == "" {
		g.CSVFilename = DefaultCSVFilename
	}
	if len(g.SetSizes) == 0 {
		g.SetSizes = append([]int(nil), DefaultSetSizes...)
	}
	if g.EnforceUnique == nil {
		t := true
		g.EnforceUnique = &t
	}
	if g.Workers == 0 {
		g.Workers = DefaultWorkers
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

// Unique reports whether enforce_unique is on. It defaults to true.
func (g General) Unique() bool {
	return g.EnforceUnique == nil || *g.EnforceUnique
}
