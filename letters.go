package backdrop

import (
	"strings"
	"unicode"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween/ease"
)

// Letter is one floating character of the Letters preset.
type Letter struct {
	Char   rune
	Group  *Object // bobs up and down
	Mesh   *Object // jumps
	Shell  *Object // glow shell, pulses
	Jumper *Jumper
}

// Letters renders a line of floating block letters. Each letter is a group
// that bobs, holding a mesh that jumps at random intervals, holding a glow
// shell that pulses. All meshes share one material and all shells share
// another.
type Letters struct {
	// Cell is the edge length of one font cell in world units.
	Cell float32
	// Spacing is the gap between letters in cells.
	Spacing int
	// Bob is the vertical travel of the bob yoyo.
	Bob  float32
	Jump JumpConfig
	// Hover is the pointer enter/leave response.
	Hover HoverConfig

	// Set by Build.
	Letters []*Letter

	tl       *Timeline
	hovering bool
}

// HoverConfig tunes how letters light up and lift while the pointer is
// over the view. Each letter starts Stagger seconds after the previous.
type HoverConfig struct {
	Emissive float32 // mesh emissive intensity while hovered
	Glow     float32 // glow shell opacity while hovered
	Lift     float32 // group rise above its rest height
	In       float32 // enter duration
	Out      float32 // leave duration

	RestEmissive float32 // emissive intensity after leaving
	RestGlow     float32 // glow opacity after leaving
	Stagger      float32
}

// DefaultHover is the tuning used by NewLetters.
var DefaultHover = HoverConfig{
	Emissive:     0.6,
	Glow:         0.8,
	Lift:         0.2,
	In:           0.4,
	Out:          0.6,
	RestEmissive: 0.3,
	RestGlow:     0.4,
	Stagger:      0.03,
}

// hoverTag marks the entries scheduled by pointer enter and leave.
const hoverTag = "hover"

// NewLetters returns the preset with its default tuning.
func NewLetters() *Letters {
	return &Letters{
		Cell:    0.3,
		Spacing: 2,
		Bob:     0.25,
		Jump:    DefaultJump,
		Hover:   DefaultHover,
	}
}

// Build implements Content.
func (l *Letters) Build(b *Builder) error {
	rm := b.Resources
	text := strings.ToUpper(b.Config.Text)

	meshMat := rm.NewMaterial("letter")
	meshMat.Color = Hex(0x8b5cf6)
	meshMat.Emissive = Hex(0x00d4ff)
	meshMat.EmissiveIntensity = 0.15

	glowMat := rm.NewMaterial("letter-glow")
	glowMat.Color = Hex(0x00d4ff)
	glowMat.Opacity = 0.3
	glowMat.Unlit = true
	glowMat.Blend = BlendAdd

	advance := float32(glyphWidth+l.Spacing) * l.Cell
	runes := []rune(text)
	total := float32(len(runes))*advance - float32(l.Spacing)*l.Cell
	x := -total / 2

	for i, r := range runes {
		if unicode.IsSpace(r) {
			x += advance
			continue
		}
		data := l.glyphMesh(r)
		if len(data.Positions) == 0 {
			b.Logger.Debug("no glyph, skipping", "rune", string(r))
			x += advance
			continue
		}

		group := NewGroup("letter:" + string(r))
		group.Position = mgl32.Vec3{x + float32(glyphWidth)*l.Cell/2, 0, 0}
		mesh := NewMesh("letter-mesh:"+string(r), data.Geometry(rm), meshMat)
		shell := NewMesh("letter-glow:"+string(r), data.Clone().Geometry(rm), glowMat)
		shell.Scale = mgl32.Vec3{1.12, 1.08, 1.4}
		mesh.AddChild(shell)
		group.AddChild(mesh)
		b.Add(group)

		phase := float32(i) * 0.15
		bobPeriod := Range{Min: 1.4, Max: 2.2}.Random(b.Rand)
		if _, err := b.Timeline.Schedule(group, PropPositionY, 0, l.Bob, bobPeriod, ease.InOutSine,
			TweenOptions{Repeat: RepeatForever, Yoyo: true, Delay: phase, Tag: "bob"}); err != nil {
			return err
		}
		if _, err := b.Timeline.Schedule(shell, PropOpacity, 1, 0.4, 1.2, ease.InOutSine,
			TweenOptions{Repeat: RepeatForever, Yoyo: true, Delay: phase, Tag: "glow"}); err != nil {
			return err
		}

		l.Letters = append(l.Letters, &Letter{
			Char:   r,
			Group:  group,
			Mesh:   mesh,
			Shell:  shell,
			Jumper: b.Jump(mesh, l.Jump),
		})
		x += advance
	}

	l.tl = b.Timeline
	b.OnPointerEnter(func(PointerEvent) { l.hoverIn() })
	b.OnPointerLeave(func(PointerEvent) { l.hoverOut() })

	b.Camera.Rest = mgl32.Vec3{0, 0, 12}
	b.Camera.Position = b.Camera.Rest
	b.Scene.AddLight(NewAmbientLight("ambient", ColorWhite, 0.45))
	b.Scene.AddLight(NewPointLight("key", ColorWhite, 0.9, mgl32.Vec3{4, 6, 10}))
	b.Scene.AddLight(NewDirectionalLight("rim", Hex(0x00d4ff), 0.4, mgl32.Vec3{-1, -0.5, -1}))
	return nil
}

// Hovered reports whether the pointer is over the view.
func (l *Letters) Hovered() bool {
	return l.hovering
}

// hoverIn brightens every letter and lifts it with an overshoot, one
// letter after another. Entries of a previous enter or leave are replaced.
func (l *Letters) hoverIn() {
	l.hovering = true
	l.tl.CancelTag(hoverTag)
	h := l.Hover
	for i, lt := range l.Letters {
		opts := TweenOptions{Delay: float32(i) * h.Stagger, Tag: hoverTag}
		l.hover(lt.Mesh, PropMaterialEmissive, h.Emissive, h.In, ease.OutQuad, opts)
		l.hover(lt.Shell, PropMaterialOpacity, h.Glow, h.In, ease.OutQuad, opts)
		l.hover(lt.Group, PropPositionY, h.Lift, h.In, ease.OutBack, opts)
	}
}

// hoverOut dims the letters back to their resting glow. Height is left to
// the bob.
func (l *Letters) hoverOut() {
	l.hovering = false
	l.tl.CancelTag(hoverTag)
	h := l.Hover
	for i, lt := range l.Letters {
		opts := TweenOptions{Delay: float32(i) * h.Stagger, Tag: hoverTag}
		l.hover(lt.Mesh, PropMaterialEmissive, h.RestEmissive, h.Out, ease.OutQuad, opts)
		l.hover(lt.Shell, PropMaterialOpacity, h.RestGlow, h.Out, ease.OutQuad, opts)
	}
}

func (l *Letters) hover(o *Object, path string, to, d float32, fn ease.TweenFunc, opts TweenOptions) {
	if o.IsDisposed() {
		return
	}
	// Letters always carry their materials, so the paths resolve.
	_, _ = l.tl.To(o, path, to, d, fn, opts)
}

// glyphMesh builds r's cells as boxes centered on the glyph's middle.
func (l *Letters) glyphMesh(r rune) MeshData {
	var d MeshData
	c := l.Cell
	ox := -float32(glyphWidth) * c / 2
	oy := float32(glyphHeight) * c / 2
	glyphCells(r, func(col, row int) {
		x0 := ox + float32(col)*c
		y0 := oy - float32(row+1)*c
		d.AppendBox(mgl32.Vec3{x0, y0, -c / 2}, mgl32.Vec3{x0 + c, y0 + c, c / 2})
	})
	return d
}
