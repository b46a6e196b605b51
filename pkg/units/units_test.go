package units

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLength(t *testing.T) {
	cases := []struct {
		in   string
		v    float64
		unit Unit
	}{
		{"12", 12, ""},
		{"7.75in", 7.75, Inch},
		{"0.3 m", 0.3, Metre},
		{"450mm", 450, Millimetre},
		{"3 feet", 3, Foot},
		{"-2ft", -2, Foot},
	}
	for _, c := range cases {
		v, u, err := ParseLength(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.v, v, c.in)
		assert.Equal(t, c.unit, u, c.in)
	}
}

func TestParseLength_Invalid(t *testing.T) {
	for _, in := range []string{"", "ft", "3 parsecs", "abc"} {
		_, _, err := ParseLength(in)
		assert.Error(t, err, in)
	}
}

func TestConversions(t *testing.T) {
	assert.InDelta(t, 0.3048, Feet(1), 1e-12)
	assert.InDelta(t, 0.0254, Inches(1), 1e-12)
	assert.InDelta(t, 12.0, Inch.FromMetres(Feet(1)), 1e-9)
	assert.InDelta(t, 1000.0, Millimetre.FromMetres(1), 1e-9)
	assert.False(t, math.IsNaN(Metre.ToMetres(1)))
}

func TestParseUnit_Aliases(t *testing.T) {
	u, err := ParseUnit("Inches")
	require.NoError(t, err)
	assert.Equal(t, Inch, u)

	u, err = ParseUnit("M")
	require.NoError(t, err)
	assert.Equal(t, Metre, u)
}
