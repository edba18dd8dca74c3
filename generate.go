package backdrop

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// PaletteEntry is one color option with its relative weight.
type PaletteEntry struct {
	Color  Color
	Weight float64
}

// Palette is a small discrete set of weighted colors.
type Palette []PaletteEntry

// StarPalette is the default star field palette: 20% cyan, 20% violet,
// 60% white.
var StarPalette = Palette{
	{Color: Hex(0x00d4ff), Weight: 0.2},
	{Color: Hex(0x8b5cf6), Weight: 0.2},
	{Color: ColorWhite, Weight: 0.6},
}

// Pick draws one color using a single value from rng. Weights need not sum
// to 1. An empty palette yields white.
func (p Palette) Pick(rng RandomSource) Color {
	if len(p) == 0 {
		return ColorWhite
	}
	var total float64
	for _, e := range p {
		total += e.Weight
	}
	r := rng.Float64() * total
	for _, e := range p {
		if r < e.Weight {
			return e.Color
		}
		r -= e.Weight
	}
	return p[len(p)-1].Color
}

// Contains reports whether c is one of the palette's colors.
func (p Palette) Contains(c Color) bool {
	for _, e := range p {
		if e.Color == c {
			return true
		}
	}
	return false
}

// StarData is the generated geometry for a point cloud.
type StarData struct {
	Positions []mgl32.Vec3
	Colors    []Color
}

// StarField produces n positions uniformly distributed in an axis-aligned
// cube of side extent centered on the origin, and n colors picked from
// palette. Negative n is treated as zero. Each star consumes four values
// from rng: x, y, z, then color.
func StarField(n int, extent float32, palette Palette, rng RandomSource) StarData {
	if n < 0 {
		n = 0
	}
	data := StarData{
		Positions: make([]mgl32.Vec3, n),
		Colors:    make([]Color, n),
	}
	span := Range{Min: -extent / 2, Max: extent / 2}
	for i := 0; i < n; i++ {
		data.Positions[i] = mgl32.Vec3{span.Random(rng), span.Random(rng), span.Random(rng)}
		data.Colors[i] = palette.Pick(rng)
	}
	return data
}

// OrbitParams describes a skewed elliptical orbit around Center.
type OrbitParams struct {
	Center  mgl32.Vec3
	RadiusX float32 // semi-axis along X
	RadiusZ float32 // semi-axis along Z
	Tilt    float32 // vertical amplitude, skews the ellipse out of the XZ plane
	Speed   float32 // angular speed in radians per second
	Phase   float32 // angle at t = 0
}

// DefaultOrbit is the globe orbit of the cosmic preset.
var DefaultOrbit = OrbitParams{
	RadiusX: 6,
	RadiusZ: 3,
	Tilt:    1.5,
	Speed:   0.3,
}

// At returns the orbit point at angle theta (radians).
func (o OrbitParams) At(theta float32) mgl32.Vec3 {
	sin, cos := math32.Sincos(theta)
	return mgl32.Vec3{
		o.Center[0] + o.RadiusX*cos,
		o.Center[1] + o.Tilt*sin,
		o.Center[2] + o.RadiusZ*sin,
	}
}

// Position returns the orbit point after t seconds of travel.
func (o OrbitParams) Position(t float32) mgl32.Vec3 {
	return o.At(o.Phase + o.Speed*t)
}

// DefaultOrbitSamples is the number of points used to draw an orbit path.
const DefaultOrbitSamples = 257

// OrbitPath samples the orbit at samples evenly spaced angles covering one
// full turn. The first and last points coincide so the path draws closed.
func OrbitPath(o OrbitParams, samples int) []mgl32.Vec3 {
	if samples <= 0 {
		return nil
	}
	if samples == 1 {
		return []mgl32.Vec3{o.At(0)}
	}
	pts := make([]mgl32.Vec3, samples)
	step := 2 * math32.Pi / float32(samples-1)
	for i := range pts {
		pts[i] = o.At(step * float32(i))
	}
	pts[samples-1] = pts[0]
	return pts
}
