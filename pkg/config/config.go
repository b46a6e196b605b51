// Package config provides configuration loading and parameter resolution
// for bimgen. A Config is what users write; Resolve validates it and
// produces the immutable, metre-based Params the pipeline consumes.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/chazu/bimgen/pkg/units"
	"gopkg.in/yaml.v3"
)

// Config represents a complete bimgen configuration file.
type Config struct {
	Project  ProjectConfig  `yaml:"project"`
	Units    string         `yaml:"units"`
	Building BuildingConfig `yaml:"building"`
	Stairs   StairConfig    `yaml:"stairs"`
	// EdgeClearance is the minimum distance between an opening and the
	// ends and top of its host wall.
	EdgeClearance Length `yaml:"edge_clearance"`
	// Layout lists openings, partitions and fixtures. When nil the
	// default brownstone layout is derived from the building.
	Layout *Layout `yaml:"layout,omitempty"`
	// LayoutScript names a Lisp file evaluated to produce Layout. A
	// relative path is taken from the configuration file's directory.
	LayoutScript string `yaml:"layout_script,omitempty"`
}

// ProjectConfig carries descriptive metadata written to the file header.
type ProjectConfig struct {
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	Author       string `yaml:"author"`
	Organization string `yaml:"organization"`
	// Timestamp is written verbatim into the file header; it is never
	// taken from the clock so output stays reproducible.
	Timestamp string `yaml:"timestamp"`
}

// BuildingConfig describes the parametric massing.
type BuildingConfig struct {
	Width              Length   `yaml:"width"`
	Depth              Length   `yaml:"depth"`
	Stories            int      `yaml:"stories"`
	StoryHeights       []Length `yaml:"story_heights"`
	Basement           bool     `yaml:"basement"`
	WallThickness      Length   `yaml:"wall_thickness"`
	PartitionThickness Length   `yaml:"partition_thickness"`
	FloorThickness     Length   `yaml:"floor_thickness"`
	RoofThickness      Length   `yaml:"roof_thickness"`
	ParapetHeight      Length   `yaml:"parapet_height"`
	// ParapetThickness defaults to the wall thickness when unset.
	ParapetThickness Length `yaml:"parapet_thickness,omitempty"`
}

// StairConfig holds the stair code rules.
type StairConfig struct {
	// RiserCount is the preferred number of risers per flight; zero picks
	// the fewest risers that respect MaxRiser.
	RiserCount    int    `yaml:"riser_count"`
	MinRiser      Length `yaml:"min_riser"`
	MaxRiser      Length `yaml:"max_riser"`
	RiserTreadSum Length `yaml:"riser_tread_sum"`
	MinTread      Length `yaml:"min_tread"`
	RiseTolerance Length `yaml:"rise_tolerance"`
	Width         Length `yaml:"width"`
	Stoop         bool   `yaml:"stoop"`
	StoopRise     Length `yaml:"stoop_rise"`
	StoopWidth    Length `yaml:"stoop_width"`
}

// DefaultConfig returns the New York brownstone configuration.
func DefaultConfig() *Config {
	return &Config{
		Project: ProjectConfig{
			Name:         "New York Brownstone",
			Description:  "Brownstone on a 50'x100' lot",
			Author:       "bimgen",
			Organization: "Brownstone Architects",
			Timestamp:    "2000-01-01T00:00:00",
		},
		Units: string(units.Foot),
		Building: BuildingConfig{
			Width:              L(40),
			Depth:              L(80),
			Stories:            5,
			StoryHeights:       []Length{L(9), L(10), L(14), L(12), L(12)},
			Basement:           true,
			WallThickness:      L(1),
			PartitionThickness: In(4.5, units.Inch),
			FloorThickness:     L(1),
			RoofThickness:      L(1.5),
			ParapetHeight:      L(3),
		},
		Stairs: StairConfig{
			MinRiser:      In(7, units.Inch),
			MaxRiser:      In(7.75, units.Inch),
			RiserTreadSum: In(17.5, units.Inch),
			MinTread:      In(9, units.Inch),
			RiseTolerance: In(0.0625, units.Inch),
			Width:         In(36, units.Inch),
			Stoop:         true,
			StoopRise:     L(5),
			StoopWidth:    L(12),
		},
		EdgeClearance: In(4, units.Inch),
	}
}

// LoadFromFile loads configuration from a YAML file. Fields missing from
// the file keep their DefaultConfig values.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DefaultUnit returns the unit bare numbers are written in.
func (c *Config) DefaultUnit() (units.Unit, error) {
	if c.Units == "" {
		return units.Foot, nil
	}
	return units.ParseUnit(c.Units)
}
