package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/bimgen/pkg/model"
	"github.com/chazu/bimgen/pkg/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Resolves(t *testing.T) {
	p, err := Resolve(DefaultConfig())
	require.NoError(t, err)

	assert.InDelta(t, units.Feet(40), p.Width, 1e-9)
	assert.InDelta(t, units.Feet(80), p.Depth, 1e-9)
	assert.Len(t, p.StoryHeights, 5)
	assert.InDelta(t, units.Feet(57), p.TotalHeight(), 1e-9)
	assert.True(t, p.Basement)
	assert.Equal(t, 1, p.EntryLevel())
	assert.InDelta(t, units.Inches(7.75), p.Stairs.MaxRiser, 1e-12)
	assert.InDelta(t, units.Inches(4), p.EdgeClearance, 1e-12)
	// Parapet thickness falls back to the wall thickness.
	assert.InDelta(t, p.WallThickness, p.ParapetThickness, 1e-12)

	assert.NotEmpty(t, p.Openings)
	assert.NotEmpty(t, p.Partitions)
	assert.NotEmpty(t, p.Fixtures)
}

func TestResolve_InteriorWidth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Building.WallThickness = L(1)
	cfg.Building.Width = L(40)

	p, err := Resolve(cfg)
	require.NoError(t, err)
	assert.InDelta(t, units.Feet(38), p.InteriorWidth(), 1e-9)
}

func TestResolve_WallThicknessTooLarge(t *testing.T) {
	for _, thickness := range []float64{20, 25} {
		cfg := DefaultConfig()
		cfg.Building.Width = L(40)
		cfg.Building.WallThickness = L(thickness)

		_, err := Resolve(cfg)
		require.Error(t, err)

		var cerr *ConfigurationError
		require.True(t, errors.As(err, &cerr), "want ConfigurationError, got %T", err)
		assert.Equal(t, "building.wall_thickness", cerr.Field)
	}
}

func TestResolve_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"zero width", func(c *Config) { c.Building.Width = L(0) }, "building.width"},
		{"negative depth", func(c *Config) { c.Building.Depth = L(-1) }, "building.depth"},
		{"story count mismatch", func(c *Config) { c.Building.Stories = 3 }, "building.story_heights"},
		{"no stories", func(c *Config) { c.Building.Stories = 0; c.Building.StoryHeights = nil }, "building.stories"},
		{"zero story height", func(c *Config) { c.Building.StoryHeights[2] = L(0) }, "building.story_heights[2]"},
		{"unknown units", func(c *Config) { c.Units = "furlong" }, "units"},
		{"bad timestamp", func(c *Config) { c.Project.Timestamp = "yesterday" }, "project.timestamp"},
		{"risers out of order", func(c *Config) { c.Stairs.MinRiser = In(8, units.Inch) }, "stairs.max_riser"},
		{"tread too short", func(c *Config) { c.Stairs.RiserTreadSum = In(15, units.Inch) }, "stairs.riser_tread_sum"},
		{"bad opening kind", func(c *Config) {
			c.Layout = &Layout{Openings: []OpeningSpec{{Kind: "skylight", Wall: "front", Width: L(3), Height: L(3)}}}
		}, "layout.openings[0].kind"},
		{"opening level out of range", func(c *Config) {
			c.Layout = &Layout{Openings: []OpeningSpec{{Kind: "window", Level: 9, Wall: "front", Width: L(3), Height: L(3)}}}
		}, "layout.openings[0].level"},
		{"bad fixture type", func(c *Config) {
			c.Layout = &Layout{Fixtures: []FixtureSpec{{Kind: "jacuzzi", Size: [3]Length{L(1), L(1), L(1)}}}}
		}, "layout.fixtures[0].kind"},
		{"zero fixture size", func(c *Config) {
			c.Layout = &Layout{Fixtures: []FixtureSpec{{Kind: "sink", Size: [3]Length{L(1), L(0), L(1)}}}}
		}, "layout.fixtures[0].size"},
		{"degenerate partition", func(c *Config) {
			c.Layout = &Layout{Partitions: []PartitionSpec{{Name: "p", Levels: []int{1},
				From: [2]Length{L(5), L(5)}, To: [2]Length{L(5), L(5)}}}}
		}, "layout.partitions[0].to"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			_, err := Resolve(cfg)
			require.Error(t, err)

			var cerr *ConfigurationError
			require.True(t, errors.As(err, &cerr), "want ConfigurationError, got %T", err)
			assert.Equal(t, tt.field, cerr.Field)
		})
	}
}

func TestParse_MixedUnits(t *testing.T) {
	data := []byte(`
units: m
building:
  width: 12
  depth: "40ft"
  stories: 2
  story_heights: [3, "118in"]
  basement: false
  wall_thickness: "300mm"
stairs:
  stoop: false
layout:
  openings:
    - kind: window
      level: 1
      wall: front
      offset: 2
      width: 1.2
      height: 1.5
      sill: 0.9
      operable: false
`)
	cfg, err := Parse(data)
	require.NoError(t, err)

	p, err := Resolve(cfg)
	require.NoError(t, err)
	assert.Equal(t, units.Metre, p.SourceUnit)
	assert.InDelta(t, 12.0, p.Width, 1e-12)
	assert.InDelta(t, units.Feet(40), p.Depth, 1e-12)
	assert.InDelta(t, 0.3, p.WallThickness, 1e-12)
	assert.InDelta(t, units.Inches(118), p.StoryHeights[1], 1e-12)
	// Fields absent from the file keep their defaults, in their own units.
	assert.InDelta(t, units.Inches(4.5), p.PartitionThickness, 1e-12)

	require.Len(t, p.Openings, 1)
	o := p.Openings[0]
	assert.Equal(t, model.OpeningWindow, o.Kind)
	assert.Equal(t, "Window 1", o.Name)
	assert.False(t, o.Operable)
	assert.Equal(t, "Double Glazed", o.Glazing)
	assert.Empty(t, p.Partitions)
	assert.Empty(t, p.Fixtures)
}

func TestParse_RejectsBadLength(t *testing.T) {
	_, err := Parse([]byte("building:\n  width: \"40 parsecs\"\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("building:\n  width: [1, 2]\n"))
	assert.Error(t, err)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bimgen.yaml")
	cfg := DefaultConfig()
	cfg.Project.Name = "Round Trip"
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDefaultLayout_Brownstone(t *testing.T) {
	b := DefaultConfig().Building
	l := DefaultLayout(b, units.Foot)

	var doors, windows int
	for _, o := range l.Openings {
		switch o.Kind {
		case "door":
			doors++
		case "window":
			windows++
		}
	}
	// One front door plus one interior door per above-grade level.
	assert.Equal(t, 5, doors)
	// Basement: 2 front + 2 rear; entry: 2 front + 3 rear; others: 3 + 3.
	assert.Equal(t, 4+5+6+6+6, windows)

	require.Len(t, l.Partitions, 2)
	assert.Equal(t, []int{1, 2, 3, 4}, l.Partitions[0].Levels)

	kinds := map[string]int{}
	for _, f := range l.Fixtures {
		kinds[f.Kind]++
	}
	assert.Equal(t, 1, kinds["sink"])
	assert.Equal(t, 3, kinds["toilet"])
	assert.Equal(t, 3, kinds["washbasin"])
	assert.Equal(t, 1, kinds["airhandler"])
}
