package backdrop

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween/ease"
)

// Cosmic is the star field background: a rotating point cloud whose stars
// twinkle, and a wireframe globe travelling along a skewed orbit.
type Cosmic struct {
	// FieldExtent is the side of the cube stars are scattered in.
	FieldExtent float32
	// FieldSpin is the star field's rotation speed in radians per second.
	FieldSpin float32
	// GlobeSpin is the globe's rotation increment per frame in radians.
	GlobeSpin float32
	// Twinkle is the half period of the star opacity yoyo in seconds.
	Twinkle float32
	Orbit   OrbitParams
	Palette Palette

	// Set by Build.
	Stars *Object
	Globe *Object
	Path  *Object
}

// NewCosmic returns the preset with its default tuning.
func NewCosmic() *Cosmic {
	return &Cosmic{
		FieldExtent: 100,
		FieldSpin:   0.02,
		GlobeSpin:   0.005,
		Twinkle:     2,
		Orbit:       DefaultOrbit,
		Palette:     StarPalette,
	}
}

// Build implements Content.
func (c *Cosmic) Build(b *Builder) error {
	rm := b.Resources

	glow, err := rm.NewGlowTexture(32)
	if err != nil {
		return fmt.Errorf("star texture: %w", err)
	}
	starMat := rm.NewMaterial("stars")
	starMat.Texture = glow
	starMat.PointSize = 0.35
	starMat.Blend = BlendAdd
	starMat.Unlit = true

	data := StarField(b.Config.ObjectCount, c.FieldExtent, c.Palette, b.Rand)
	c.Stars = NewPoints("stars", rm.NewGeometry(data.Positions, data.Colors, nil), starMat)
	b.Add(c.Stars)

	if _, err := b.Timeline.Schedule(c.Stars, PropMaterialOpacity, 1, 0.3, c.Twinkle, ease.InOutSine,
		TweenOptions{Repeat: RepeatForever, Yoyo: true, Tag: "twinkle"}); err != nil {
		return err
	}

	path := OrbitPath(c.Orbit, DefaultOrbitSamples)
	pathMat := rm.NewMaterial("orbit")
	pathMat.Color = Hex(0x8b5cf6)
	pathMat.Opacity = 0.35
	pathMat.Unlit = true
	pathMat.Blend = BlendAdd
	c.Path = NewLine("orbit", rm.NewGeometry(path, nil, nil), pathMat)
	b.Add(c.Path)

	globeMat := rm.NewMaterial("globe")
	globeMat.Color = Hex(0x0b1a3a)
	globeMat.Emissive = Hex(0x00d4ff)
	globeMat.EmissiveIntensity = 0.08
	c.Globe = NewMesh("globe", Sphere(1.2, 12, 18).Geometry(rm), globeMat)

	wireMat := rm.NewMaterial("globe-wire")
	wireMat.Color = Hex(0x00d4ff)
	wireMat.Opacity = 0.6
	wireMat.Unlit = true
	wireMat.Blend = BlendAdd
	wire := NewLine("globe-wire", SphereWireframe(1.22, 12, 18).Geometry(rm), wireMat)
	c.Globe.AddChild(wire)
	c.Globe.Position = c.Orbit.Position(0)
	c.Globe.Rotation[2] = mgl32.DegToRad(23.5)
	b.Add(c.Globe)

	b.Scene.AddLight(NewAmbientLight("ambient", ColorWhite, 0.35))
	b.Scene.AddLight(NewPointLight("sun", Hex(0xfff4e0), 1.2, mgl32.Vec3{10, 10, 10}))

	b.OnFrame(c.frame)
	return nil
}

func (c *Cosmic) frame(f FrameInfo) {
	c.Stars.Rotation[1] = c.FieldSpin * f.Elapsed
	c.Globe.Position = c.Orbit.Position(f.Elapsed)
	c.Globe.Rotation[1] += c.GlobeSpin
}
