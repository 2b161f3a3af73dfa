package math

import "github.com/chewxy/math32"

// Color is an RGBA vertex color. On terrain it carries four texture paint weights.
type Color struct {
	R, G, B, A float32
}

// Lerp interpolates between c and other by t.
func (c Color) Lerp(other Color, t float32) Color {
	return Color{
		c.R + (other.R-c.R)*t,
		c.G + (other.G-c.G)*t,
		c.B + (other.B-c.B)*t,
		c.A + (other.A-c.A)*t,
	}
}

// Min returns the component-wise minimum.
func (c Color) Min(other Color) Color {
	return Color{
		math32.Min(c.R, other.R),
		math32.Min(c.G, other.G),
		math32.Min(c.B, other.B),
		math32.Min(c.A, other.A),
	}
}

// Channels returns the components as an array in RGBA order.
func (c Color) Channels() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

// ColorFromChannels builds a Color from an RGBA array.
func ColorFromChannels(ch [4]float32) Color {
	return Color{ch[0], ch[1], ch[2], ch[3]}
}

// Bilinear interpolates four corner colors at (x, z) in the unit square.
// c00 is at (0,0), c10 at (1,0), c01 at (0,1) and c11 at (1,1).
func Bilinear(c00, c10, c01, c11 Color, x, z float32) Color {
	top := c00.Lerp(c10, x)
	bottom := c01.Lerp(c11, x)
	return top.Lerp(bottom, z)
}
