package render

import (
	"github.com/mazznoer/colorgrad"
)

// Scale maps income values onto a continuous viridis color ramp spanning
// the observed value range.
type Scale struct {
	Min  float64
	Max  float64
	grad colorgrad.Gradient
}

// NewScale builds a color scale over the given values. Values that are nil
// (missing) do not contribute to the range.
func NewScale(values []*float64) Scale {
	s := Scale{grad: colorgrad.Viridis()}
	seen := false
	for _, v := range values {
		if v == nil {
			continue
		}
		if !seen {
			s.Min, s.Max = *v, *v
			seen = true
			continue
		}
		s.Min = min(s.Min, *v)
		s.Max = max(s.Max, *v)
	}
	return s
}

// Norm returns v's position in [0, 1] on the scale, clamped at the ends.
// A degenerate scale (Min == Max) maps everything to the midpoint.
func (s Scale) Norm(v float64) float64 {
	if s.Max <= s.Min {
		return 0.5
	}
	t := (v - s.Min) / (s.Max - s.Min)
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// At returns the RGB components (0..1) for a value on the scale.
func (s Scale) At(v float64) (r, g, b float64) {
	c := s.grad.At(s.Norm(v))
	return c.R, c.G, c.B
}

// atT returns the RGB components for a pre-normalized position, used when
// drawing the legend gradient.
func (s Scale) atT(t float64) (r, g, b float64) {
	c := s.grad.At(t)
	return c.R, c.G, c.B
}
