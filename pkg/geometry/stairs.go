package geometry

import (
	"fmt"
	"math"

	"github.com/chazu/bimgen/pkg/config"
	"github.com/chazu/bimgen/pkg/model"
)

// Flight is the proportioning of a straight stair run.
type Flight struct {
	Risers int
	Riser  float64
	Tread  float64
}

// Run returns the horizontal length of the flight.
func (f Flight) Run() float64 { return float64(f.Risers) * f.Tread }

// StairError is a stair rule violation found while proportioning a flight.
type StairError struct {
	Code    string
	Message string
}

func (e *StairError) Error() string { return e.Message }

// ProportionFlight picks the riser count and dimensions for a rise. The
// preferred riser count in s is used when set; otherwise the fewest
// risers that respect the maximum riser height.
func ProportionFlight(rise float64, s config.StairParams) (Flight, error) {
	n := s.RiserCount
	if n == 0 {
		n = int(math.Ceil(rise/s.MaxRiser - eps))
	}
	if n < 1 {
		n = 1
	}
	f := Flight{Risers: n, Riser: rise / float64(n)}
	f.Tread = s.RiserTreadSum - f.Riser

	if f.Riser < s.MinRiser-eps || f.Riser > s.MaxRiser+eps {
		return f, &StairError{Code: CodeRiserOutOfRange, Message: fmt.Sprintf(
			"%d risers of %.4f outside [%.4f, %.4f]", n, f.Riser, s.MinRiser, s.MaxRiser)}
	}
	if f.Tread < s.MinTread-eps {
		return f, &StairError{Code: CodeTreadTooShort, Message: fmt.Sprintf(
			"tread %.4f is shorter than %.4f", f.Tread, s.MinTread)}
	}
	if math.Abs(float64(n)*f.Riser-rise) > s.RiseTolerance {
		return f, &StairError{Code: CodeRiseMismatch, Message: fmt.Sprintf(
			"%d x %.4f does not match rise %.4f", n, f.Riser, rise)}
	}
	return f, nil
}

// stepBody stacks one block per riser along +Y, each block standing on
// the flight's base.
func stepBody(f Flight, width float64) []model.Extrusion {
	body := make([]model.Extrusion, 0, f.Risers)
	for i := 0; i < f.Risers; i++ {
		body = append(body, model.Extrusion{
			Profile:   model.Rect(model.Vec2{Y: float64(i) * f.Tread}, width, f.Tread),
			Direction: model.UnitZ,
			Depth:     float64(i+1) * f.Riser,
		})
	}
	return body
}

// buildStairs creates one interior flight per pair of consecutive stories,
// rising the height of the lower story along the left wall.
func (e *Engine) buildStairs() {
	t := e.p.WallThickness
	width := e.p.Stairs.Width
	for level := 0; level+1 < e.p.Levels(); level++ {
		lower := e.story(level)
		upper := e.story(level + 1)
		sd := lower.Data.(model.StoryData)
		name := fmt.Sprintf("Stair %s to %s", lower.Name, upper.Name)

		f, err := ProportionFlight(sd.Height, e.p.Stairs)
		if err != nil {
			se := err.(*StairError)
			e.fail(model.KindStair, level, name, se.Code, "%s", se.Message)
			continue
		}
		if t+f.Run() > e.p.Depth-t+eps {
			e.fail(model.KindStair, level, name, CodeRunTooLong,
				"run %.3f does not fit the interior depth %.3f", f.Run(), e.p.InteriorDepth())
			continue
		}
		if t+width > e.p.Width-t+eps {
			e.fail(model.KindStair, level, name, CodeOutsideInterior,
				"width %.3f does not fit the interior width %.3f", width, e.p.InteriorWidth())
			continue
		}

		pl := model.At(model.Vec3{X: t, Y: t, Z: sd.Elevation})
		e.addStair(level, name, lower.ID, pl, f, model.StairData{
			Lower:    lower.ID,
			Upper:    upper.ID,
			Width:    width,
			Material: MaterialWood,
		})
	}
}

// buildStoop creates the exterior front stoop of the entry story, centred
// on the front facade. It stands on grade (elevation 0) and climbs the
// stoop rise.
func (e *Engine) buildStoop() {
	s := e.p.Stairs
	if !s.Stoop {
		return
	}
	// The riser preference applies to interior flights only.
	s.RiserCount = 0
	level := e.p.EntryLevel()
	if level >= e.p.Levels() {
		return
	}
	entry := e.story(level)
	const name = "Front Stoop"

	f, err := ProportionFlight(s.StoopRise, s)
	if err != nil {
		se := err.(*StairError)
		e.fail(model.KindStair, level, name, se.Code, "%s", se.Message)
		return
	}
	if s.StoopWidth > e.p.Width+eps {
		e.fail(model.KindStair, level, name, CodeExceedsLength,
			"width %.3f is wider than the front facade %.3f", s.StoopWidth, e.p.Width)
		return
	}

	// The top step meets the front wall.
	pl := model.At(model.Vec3{
		X: (e.p.Width - s.StoopWidth) / 2,
		Y: -f.Run(),
	})
	e.addStair(level, name, entry.ID, pl, f, model.StairData{
		Lower:    entry.ID,
		Width:    s.StoopWidth,
		Exterior: true,
		Material: MaterialBrownstone,
	})
}

func (e *Engine) addStair(level int, name string, parent model.ID, pl model.Placement, f Flight, data model.StairData) {
	data.RiserHeight = f.Riser
	data.TreadDepth = f.Tread
	data.StepCount = f.Risers
	data.TotalRise = float64(f.Risers) * f.Riser

	body := stepBody(f, data.Width)
	solid, err := e.extrude(body)
	if err != nil {
		e.fail(model.KindStair, level, name, CodeSolidFailed, "%v", err)
		return
	}
	e.add(&model.Entity{
		Kind:      model.KindStair,
		Name:      name,
		Parent:    parent,
		Placement: pl,
		Body:      body,
		Data:      data,
	}, e.place(solid, pl))
}
