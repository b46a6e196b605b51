package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/bimgen/pkg/config"
	"github.com/chazu/bimgen/pkg/model"
	"github.com/chazu/bimgen/pkg/units"
)

func defaultStairs(t *testing.T) config.StairParams {
	t.Helper()
	return resolve(t, nil).Stairs
}

func TestProportionFlight_Compliant(t *testing.T) {
	s := defaultStairs(t)
	tests := []struct {
		riseFt float64
		risers int
	}{
		{9, 14},
		{10, 16},
		{12, 19},
		{14, 22},
	}
	for _, tt := range tests {
		rise := units.Feet(tt.riseFt)
		f, err := ProportionFlight(rise, s)
		if err != nil {
			t.Fatalf("%vft: %v", tt.riseFt, err)
		}
		if f.Risers != tt.risers {
			t.Errorf("%vft: risers = %d, want %d", tt.riseFt, f.Risers, tt.risers)
		}
		if f.Riser < s.MinRiser || f.Riser > s.MaxRiser {
			t.Errorf("%vft: riser %v outside [%v, %v]", tt.riseFt, f.Riser, s.MinRiser, s.MaxRiser)
		}
		if math.Abs(float64(f.Risers)*f.Riser-rise) > s.RiseTolerance {
			t.Errorf("%vft: %d x %v != %v", tt.riseFt, f.Risers, f.Riser, rise)
		}
		if math.Abs(f.Riser+f.Tread-s.RiserTreadSum) > 1e-12 {
			t.Errorf("%vft: riser + tread = %v, want %v", tt.riseFt, f.Riser+f.Tread, s.RiserTreadSum)
		}
	}
}

func TestProportionFlight_Violations(t *testing.T) {
	base := defaultStairs(t)
	rise := units.Feet(9)

	tests := []struct {
		name   string
		mutate func(s *config.StairParams)
		code   string
	}{
		{"preference too few", func(s *config.StairParams) { s.RiserCount = 10 }, CodeRiserOutOfRange},
		{"preference too many", func(s *config.StairParams) { s.RiserCount = 20 }, CodeRiserOutOfRange},
		{"short tread", func(s *config.StairParams) { s.RiserTreadSum = units.Inches(16) }, CodeTreadTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base
			tt.mutate(&s)
			_, err := ProportionFlight(rise, s)
			var se *StairError
			if !errors.As(err, &se) {
				t.Fatalf("err = %v, want StairError", err)
			}
			if se.Code != tt.code {
				t.Errorf("code = %s, want %s", se.Code, tt.code)
			}
		})
	}
}

func TestRun_StairsMatchStoryHeights(t *testing.T) {
	p := resolve(t, nil)
	m, _, _ := synthesize(t, p)

	var interior int
	for _, st := range m.ByKind(model.KindStair) {
		sd := st.Data.(model.StairData)
		if sd.Exterior {
			continue
		}
		interior++
		lower := m.Get(sd.Lower).Data.(model.StoryData)
		upper := m.Get(sd.Upper).Data.(model.StoryData)
		if upper.Level != lower.Level+1 {
			t.Errorf("%s connects levels %d and %d", st.Name, lower.Level, upper.Level)
		}
		if math.Abs(float64(sd.StepCount)*sd.RiserHeight-lower.Height) > p.Stairs.RiseTolerance {
			t.Errorf("%s: %d x %v != %v", st.Name, sd.StepCount, sd.RiserHeight, lower.Height)
		}
		if len(st.Body) != sd.StepCount {
			t.Errorf("%s: %d step solids, want %d", st.Name, len(st.Body), sd.StepCount)
		}
		// The flight reaches the upper floor.
		if math.Abs(st.Bounds.Max.Z-upper.Elevation) > 1e-6 {
			t.Errorf("%s tops out at %v, want %v", st.Name, st.Bounds.Max.Z, upper.Elevation)
		}
		if st.Bounds.Max.Y > p.Depth-p.WallThickness+1e-6 {
			t.Errorf("%s runs past the rear wall", st.Name)
		}
	}
	if interior != 4 {
		t.Errorf("interior stairs = %d, want 4", interior)
	}
}
