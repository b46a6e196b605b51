// Package units converts user-facing lengths into the internal unit
// system. Every length inside bimgen is stored in metres.
package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Unit is a length unit accepted in configuration files.
type Unit string

const (
	Metre      Unit = "m"
	Centimetre Unit = "cm"
	Millimetre Unit = "mm"
	Foot       Unit = "ft"
	Inch       Unit = "in"
)

// metresPer maps each unit to its size in metres.
var metresPer = map[Unit]float64{
	Metre:      1,
	Centimetre: 0.01,
	Millimetre: 0.001,
	Foot:       0.3048,
	Inch:       0.0254,
}

// aliases accepted by ParseUnit in addition to the canonical symbols.
var aliases = map[string]Unit{
	"meter": Metre, "meters": Metre, "metre": Metre, "metres": Metre,
	"centimeter": Centimetre, "centimeters": Centimetre,
	"millimeter": Millimetre, "millimeters": Millimetre,
	"foot": Foot, "feet": Foot, "'": Foot,
	"inch": Inch, "inches": Inch, `"`: Inch,
}

// Valid reports whether u is a known unit.
func (u Unit) Valid() bool {
	_, ok := metresPer[u]
	return ok
}

// ToMetres converts v expressed in u into metres.
func (u Unit) ToMetres(v float64) float64 {
	return v * metresPer[u]
}

// FromMetres converts v metres into u.
func (u Unit) FromMetres(v float64) float64 {
	return v / metresPer[u]
}

// ParseUnit resolves a unit symbol or alias, case-insensitively.
func ParseUnit(s string) (Unit, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if u := Unit(key); u.Valid() {
		return u, nil
	}
	if u, ok := aliases[key]; ok {
		return u, nil
	}
	return "", fmt.Errorf("unknown length unit %q", s)
}

// ParseLength parses a number with an optional unit suffix, such as
// "7.75in", "0.3 m" or "12". A missing suffix yields an empty Unit so the
// caller can apply its own default.
func ParseLength(s string) (float64, Unit, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, "", fmt.Errorf("empty length")
	}
	i := len(s)
	for i > 0 && !isNumberChar(s[i-1]) {
		i--
	}
	num := strings.TrimSpace(s[:i])
	suffix := strings.TrimSpace(s[i:])

	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid length %q: %w", s, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, "", fmt.Errorf("invalid length %q: not finite", s)
	}
	if suffix == "" {
		return v, "", nil
	}
	u, err := ParseUnit(suffix)
	if err != nil {
		return 0, "", fmt.Errorf("invalid length %q: %w", s, err)
	}
	return v, u, nil
}

func isNumberChar(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.'
}

// Feet converts feet to metres.
func Feet(v float64) float64 { return Foot.ToMetres(v) }

// Inches converts inches to metres.
func Inches(v float64) float64 { return Inch.ToMetres(v) }
