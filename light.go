package backdrop

import (
	"github.com/go-gl/mathgl/mgl32"
)

// LightKind distinguishes how a Light contributes to shading.
type LightKind uint8

const (
	LightAmbient     LightKind = iota // uniform, direction-independent
	LightPoint                        // radiates from Position
	LightDirectional                  // parallel rays along Direction
)

// Light illuminates lit materials. Lights are stored on the Scene, not in
// the object tree.
type Light struct {
	Name      string
	Kind      LightKind
	On        bool
	Color     Color
	Intensity float32

	// Position is used by point lights.
	Position mgl32.Vec3
	// Direction is used by directional lights and points from the light
	// toward the scene.
	Direction mgl32.Vec3
}

// NewAmbientLight creates an ambient light.
func NewAmbientLight(name string, c Color, intensity float32) *Light {
	return &Light{Name: name, Kind: LightAmbient, On: true, Color: c, Intensity: intensity}
}

// NewPointLight creates a point light at pos.
func NewPointLight(name string, c Color, intensity float32, pos mgl32.Vec3) *Light {
	return &Light{Name: name, Kind: LightPoint, On: true, Color: c, Intensity: intensity, Position: pos}
}

// NewDirectionalLight creates a directional light.
func NewDirectionalLight(name string, c Color, intensity float32, dir mgl32.Vec3) *Light {
	return &Light{Name: name, Kind: LightDirectional, On: true, Color: c, Intensity: intensity, Direction: dir.Normalize()}
}

// shade returns the lit color for a surface point with world position pos
// and unit normal n. Unlit materials return their base color untouched.
func shade(lights []*Light, m *Material, base Color, pos, n mgl32.Vec3) Color {
	if m.Unlit || len(lights) == 0 {
		return addEmissive(base, m)
	}
	var r, g, b float32
	for _, l := range lights {
		if !l.On {
			continue
		}
		var k float32
		switch l.Kind {
		case LightAmbient:
			k = l.Intensity
		case LightPoint:
			k = l.Intensity * max(0, n.Dot(l.Position.Sub(pos).Normalize()))
		case LightDirectional:
			k = l.Intensity * max(0, n.Dot(l.Direction.Mul(-1)))
		}
		r += l.Color.R * k
		g += l.Color.G * k
		b += l.Color.B * k
	}
	lit := Color{base.R * r, base.G * g, base.B * b, base.A}
	return addEmissive(lit, m)
}

func addEmissive(c Color, m *Material) Color {
	if m.EmissiveIntensity == 0 {
		return c
	}
	e := m.Emissive.Scale(m.EmissiveIntensity)
	return Color{min(c.R+e.R, 1), min(c.G+e.G, 1), min(c.B+e.B, 1), c.A}
}
