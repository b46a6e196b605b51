package config

import (
	"fmt"
	"strconv"

	"github.com/chazu/bimgen/pkg/units"
	"gopkg.in/yaml.v3"
)

// Length is a configured length. It is written in YAML either as a bare
// number, interpreted in the file's default unit, or as a string with a
// unit suffix ("7.75in").
type Length struct {
	Value float64
	Unit  units.Unit // empty means the file's default unit
}

// L is shorthand for a length in the default unit.
func L(v float64) Length { return Length{Value: v} }

// In returns a length with an explicit unit.
func In(v float64, u units.Unit) Length { return Length{Value: v, Unit: u} }

// Metres converts the length using def when no unit was given.
func (l Length) Metres(def units.Unit) float64 {
	u := l.Unit
	if u == "" {
		u = def
	}
	return u.ToMetres(l.Value)
}

// IsZero reports whether the length is unset.
func (l Length) IsZero() bool { return l.Value == 0 && l.Unit == "" }

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + string(l.Unit)
}

// ParseLengthValue parses "12", "3.5ft" and similar into a Length.
func ParseLengthValue(s string) (Length, error) {
	v, u, err := units.ParseLength(s)
	if err != nil {
		return Length{}, err
	}
	return Length{Value: v, Unit: u}, nil
}

// UnmarshalYAML accepts numbers and unit-suffixed strings.
func (l *Length) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: length must be a scalar", node.Line)
	}
	parsed, err := ParseLengthValue(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*l = parsed
	return nil
}

// MarshalYAML writes bare numbers when no unit is set.
func (l Length) MarshalYAML() (interface{}, error) {
	if l.Unit == "" {
		return l.Value, nil
	}
	return l.String(), nil
}
