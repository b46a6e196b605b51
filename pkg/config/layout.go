package config

import (
	"fmt"

	"github.com/chazu/bimgen/pkg/units"
)

// Layout lists the architectural elements placed on top of the massing.
// Levels are zero-based stacking positions (the basement, when present,
// is level 0).
type Layout struct {
	Openings   []OpeningSpec   `yaml:"openings"`
	Partitions []PartitionSpec `yaml:"partitions"`
	Fixtures   []FixtureSpec   `yaml:"fixtures"`
}

// OpeningSpec requests a window or door in a wall.
type OpeningSpec struct {
	Name  string `yaml:"name"`
	Kind  string `yaml:"kind"` // window or door
	Level int    `yaml:"level"`
	// Wall is a facade name (front, rear, left, right) or the name of a
	// partition on the same level.
	Wall     string `yaml:"wall"`
	Offset   Length `yaml:"offset"` // from the wall's start
	Width    Length `yaml:"width"`
	Height   Length `yaml:"height"`
	Sill     Length `yaml:"sill"`
	Operable *bool  `yaml:"operable,omitempty"`
	Glazing  string `yaml:"glazing,omitempty"`
}

// PartitionSpec requests an interior wall along a straight centerline.
type PartitionSpec struct {
	Name   string    `yaml:"name"`
	Levels []int     `yaml:"levels"`
	From   [2]Length `yaml:"from"`
	To     [2]Length `yaml:"to"`
}

// FixtureSpec requests a fixture or piece of equipment.
type FixtureSpec struct {
	Name      string    `yaml:"name"`
	Kind      string    `yaml:"kind"`
	Level     int       `yaml:"level"`
	At        [2]Length `yaml:"at"`   // minimum plan corner
	Size      [3]Length `yaml:"size"` // width, depth, height
	Elevation Length    `yaml:"elevation"`
	// Host is "floor" for the level's slab or a wall name.
	Host string `yaml:"host"`
}

// HostFloor names the level's floor slab as a fixture host.
const HostFloor = "floor"

// Facade wall names accepted by OpeningSpec.Wall, matched in any case.
const (
	WallFront = "front"
	WallRear  = "rear"
	WallLeft  = "left"
	WallRight = "right"
)

func ft(v float64) Length { return In(v, units.Foot) }

// scaled returns a fraction of l, keeping its unit.
func scaled(l Length, f float64) Length {
	return Length{Value: l.Value * f, Unit: l.Unit}
}

// sum adds lengths, returning the total in metres.
func sum(def units.Unit, ls ...Length) Length {
	var m float64
	for _, l := range ls {
		m += l.Metres(def)
	}
	return In(m, units.Metre)
}

// windowSizes are the window sizes (width, height in feet) of the
// brownstone from the basement up.
var windowSizes = [][2]float64{{3, 3}, {3.5, 6}, {4, 8}, {3.5, 6}, {3.5, 6}}

// DefaultLayout derives the brownstone layout for a building: facade
// windows on every level, a front door on the entry level, a corridor and
// a cross partition above grade with interior doors, kitchen and bathroom
// fixtures, and mechanical equipment at the lowest level.
func DefaultLayout(b BuildingConfig, def units.Unit) *Layout {
	l := &Layout{}
	levels := len(b.StoryHeights)
	entry := 0
	if b.Basement {
		entry = 1
	}

	w := b.Width
	d := b.Depth
	t := b.WallThickness
	sill := ft(3)

	for level := 0; level < levels; level++ {
		h := b.StoryHeights[level].Metres(def)
		row := level
		if !b.Basement {
			row++
		}
		size := [2]float64{3.5, 6}
		if row < len(windowSizes) {
			size = windowSizes[row]
		}
		winW := ft(size[0])
		// Leave a foot above the head of each window.
		winH := units.Foot.FromMetres(h) - 3 - 1
		if size[1] < winH {
			winH = size[1]
		}
		count := 3
		if b.Basement && level == 0 {
			count = 2
		}

		if winH > 0 {
			for _, facade := range []string{WallFront, WallRear} {
				slots := make([]int, 0, count)
				for j := 0; j < count; j++ {
					slots = append(slots, j)
				}
				// The entry level keeps the centre bay of the front for the door.
				if facade == WallFront && level == entry && count == 3 {
					slots = []int{0, 2}
				}
				for _, j := range slots {
					frac := float64(j+1) / float64(count+1)
					centre := scaled(w, frac).Metres(def)
					l.Openings = append(l.Openings, OpeningSpec{
						Name:   fmt.Sprintf("%s Window %d-%d", title(facade), level, j),
						Kind:   "window",
						Level:  level,
						Wall:   facade,
						Offset: In(centre-winW.Metres(def)/2, units.Metre),
						Width:  winW,
						Height: ft(winH),
						Sill:   sill,
					})
				}
			}
		}

		if level == entry {
			doorH := units.Foot.FromMetres(h) - 1
			if doorH > 8 {
				doorH = 8
			}
			l.Openings = append(l.Openings, OpeningSpec{
				Name:   "Front Door",
				Kind:   "door",
				Level:  level,
				Wall:   WallFront,
				Offset: In(w.Metres(def)/2-units.Feet(2), units.Metre),
				Width:  ft(4),
				Height: ft(doorH),
				Sill:   ft(0),
			})
		}
	}

	var above []int
	for level := entry; level < levels; level++ {
		above = append(above, level)
	}
	if len(above) > 0 {
		midY := scaled(d, 0.5)
		crossX := scaled(w, 2.0/3.0)
		l.Partitions = append(l.Partitions,
			PartitionSpec{
				Name:   "Corridor Wall",
				Levels: above,
				From:   [2]Length{t, midY},
				To:     [2]Length{sum(def, w, scaled(t, -1)), midY},
			},
			PartitionSpec{
				Name:   "Cross Wall",
				Levels: above,
				From:   [2]Length{crossX, t},
				To:     [2]Length{crossX, sum(def, midY, scaled(b.PartitionThickness, -0.5))},
			},
		)
		corridorLen := w.Metres(def) - 2*t.Metres(def)
		for _, level := range above {
			l.Openings = append(l.Openings, OpeningSpec{
				Name:   fmt.Sprintf("Interior Door %d", level),
				Kind:   "door",
				Level:  level,
				Wall:   "Corridor Wall",
				Offset: In(corridorLen/4-units.Feet(1.5), units.Metre),
				Width:  ft(3),
				Height: ft(7),
				Sill:   ft(0),
			})
		}
	}

	at := func(fx, fy float64) [2]Length { return [2]Length{scaled(w, fx), scaled(d, fy)} }
	box := func(x, y, z float64) [3]Length { return [3]Length{ft(x), ft(y), ft(z)} }

	if entry < levels {
		l.Fixtures = append(l.Fixtures, FixtureSpec{
			Name: "Kitchen Sink", Kind: "sink", Level: entry,
			At: at(0.25, 0.3), Size: box(3, 2, 0.5), Elevation: ft(3), Host: HostFloor,
		})
	}
	for level := entry + 1; level < levels; level++ {
		l.Fixtures = append(l.Fixtures,
			FixtureSpec{
				Name: fmt.Sprintf("Toilet Floor %d", level), Kind: "toilet", Level: level,
				At: at(0.75, 0.25), Size: box(1.5, 2, 1), Elevation: ft(0), Host: HostFloor,
			},
			FixtureSpec{
				Name: fmt.Sprintf("Bathroom Sink Floor %d", level), Kind: "washbasin", Level: level,
				At: at(0.75, 0.35), Size: box(2, 1.5, 0.5), Elevation: ft(3), Host: HostFloor,
			},
		)
	}
	if levels > 0 {
		l.Fixtures = append(l.Fixtures,
			FixtureSpec{
				Name: "HVAC System", Kind: "airhandler", Level: 0,
				At: at(0.2, 0.2), Size: box(6, 4, 2), Elevation: ft(1), Host: HostFloor,
			},
			FixtureSpec{
				Name: "Electrical Panel", Kind: "panel", Level: 0,
				At: at(0.8, 0.1), Size: box(2, 0.5, 3), Elevation: ft(1), Host: HostFloor,
			},
			FixtureSpec{
				Name: "Water Heater", Kind: "waterheater", Level: 0,
				At: at(0.5, 0.1), Size: box(2, 2, 2), Elevation: ft(1), Host: HostFloor,
			},
		)
	}
	return l
}

func title(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
