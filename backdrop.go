package backdrop

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

var (
	// ErrCapabilityUnavailable reports that no graphics surface could be
	// obtained from the display target at mount time.
	ErrCapabilityUnavailable = errors.New("backdrop: graphics capability unavailable")

	// ErrResourceAcquisition reports that the surface was created but a
	// required resource (texture, geometry) could not be.
	ErrResourceAcquisition = errors.New("backdrop: resource acquisition failed")

	// ErrUnknownProperty is returned by Timeline.Schedule for a property path
	// that does not resolve on the target object.
	ErrUnknownProperty = errors.New("backdrop: unknown property path")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("backdrop: invalid config")
)

// Color is an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float32
}

// ColorWhite is the default material color.
var ColorWhite = Color{1, 1, 1, 1}

// RGB returns an opaque color from 0-255 components.
func RGB(r, g, b uint8) Color {
	return Color{float32(r) / 255, float32(g) / 255, float32(b) / 255, 1}
}

// Hex returns an opaque color from a 0xRRGGBB value.
func Hex(v uint32) Color {
	return RGB(uint8(v>>16), uint8(v>>8), uint8(v))
}

// ParseColor parses "#rgb", "#rrggbb" or "#rrggbbaa" (leading '#' optional).
func ParseColor(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 && len(s) != 8 {
		return Color{}, fmt.Errorf("parse color %q: want 3, 6 or 8 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	if len(s) == 6 {
		return Hex(uint32(v)), nil
	}
	c := Hex(uint32(v >> 8))
	c.A = float32(v&0xff) / 255
	return c, nil
}

// String formats the color as "#rrggbb", or "#rrggbbaa" when not opaque.
func (c Color) String() string {
	r, g, b, a := to8(c.R), to8(c.G), to8(c.B), to8(c.A)
	if a == 255 {
		return fmt.Sprintf("#%02x%02x%02x", r, g, b)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", r, g, b, a)
}

// MarshalText implements encoding.TextMarshaler so colors round-trip through TOML.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Scale multiplies the RGB components by f, leaving alpha untouched.
func (c Color) Scale(f float32) Color {
	return Color{c.R * f, c.G * f, c.B * f, c.A}
}

func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: to8(c.R * c.A),
		G: to8(c.G * c.A),
		B: to8(c.B * c.A),
		A: to8(c.A),
	}
}

func to8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// RandomSource is the ambient entropy source. *rand.Rand from math/rand/v2
// satisfies it.
type RandomSource interface {
	Float64() float64
}

// Range is a general-purpose min/max range.
type Range struct {
	Min, Max float32
}

// Random returns a value in [Min, Max) drawn from rng.
func (r Range) Random(rng RandomSource) float32 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + float32(rng.Float64())*(r.Max-r.Min)
}

// BlendMode selects a compositing operation.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota // source-over
	BlendAdd                     // additive, used for glows and stars
)

// EbitenBlend returns the ebiten.Blend value corresponding to this BlendMode.
func (b BlendMode) EbitenBlend() ebiten.Blend {
	switch b {
	case BlendAdd:
		return ebiten.BlendLighter
	default:
		return ebiten.BlendSourceOver
	}
}

// ObjectType distinguishes rendering behavior for an Object.
type ObjectType uint8

const (
	ObjectGroup  ObjectType = iota // transform-only node with no visual output
	ObjectPoints                   // point cloud, one quad per position
	ObjectMesh                     // indexed triangles
	ObjectLine                     // connected line strip
)

func (t ObjectType) String() string {
	switch t {
	case ObjectGroup:
		return "group"
	case ObjectPoints:
		return "points"
	case ObjectMesh:
		return "mesh"
	case ObjectLine:
		return "line"
	default:
		return "unknown"
	}
}
