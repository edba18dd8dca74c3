// Package termview is the reduced-fidelity presentation used when no
// graphics surface can be mounted: the cosmic star field and orbiting globe
// drawn as glyphs on a terminal.
package termview

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/phanxgames/backdrop"
)

// cellAspect is the height of a terminal cell relative to its width.
const cellAspect = 2

// starGlyphs run from farthest to nearest.
var starGlyphs = []rune{'.', '·', '+', '*'}

// View renders the star field onto a tcell screen.
type View struct {
	screen tcell.Screen
	bg     tcell.Style

	stars    backdrop.StarData
	spin     float32
	orbit    backdrop.OrbitParams
	path     []mgl32.Vec3
	camera   *backdrop.Camera
	pointer  backdrop.PointerState
	viewport backdrop.ViewportState

	extent float32
	frames int
}

// New creates a view drawing onto screen. The screen must already be
// initialized. Stars are generated from rng with cfg.ObjectCount entries.
func New(screen tcell.Screen, cfg backdrop.Config, rng backdrop.RandomSource) *View {
	const extent = 100
	bg := cfg.BackgroundColor
	v := &View{
		screen: screen,
		bg:     tcell.StyleDefault.Background(tcellColor(bg, 1)),
		stars:  backdrop.StarField(cfg.ObjectCount, extent, backdrop.StarPalette, rng),
		spin:   0.02,
		orbit:  backdrop.DefaultOrbit,
		extent: extent,
	}
	v.path = backdrop.OrbitPath(v.orbit, backdrop.DefaultOrbitSamples)
	v.camera = backdrop.NewCamera(cfg.CameraFOV, 1, mgl32.Vec3{0, 0, 30})
	v.camera.ParallaxStrength = cfg.ParallaxStrength * 4
	v.camera.Smoothing = cfg.Smoothing
	v.resize()
	return v
}

// Frames returns the number of frames drawn.
func (v *View) Frames() int {
	return v.frames
}

// Camera returns the view's camera.
func (v *View) Camera() *backdrop.Camera {
	return v.camera
}

func (v *View) resize() {
	w, h := v.screen.Size()
	v.viewport.Set(w, h)
	if w > 0 && h > 0 {
		v.camera.SetAspect(float32(w) / float32(h*cellAspect))
	}
}

// HandleEvent applies a terminal event and reports whether the view
// should quit.
func (v *View) HandleEvent(ev tcell.Event) (quit bool) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return true
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q', 'Q':
				return true
			}
		}
	case *tcell.EventMouse:
		x, y := ev.Position()
		v.pointer.Set(float64(x), float64(y), v.viewport.Snapshot())
	case *tcell.EventResize:
		v.resize()
		v.screen.Sync()
	}
	return false
}

// Draw renders the scene as it is elapsed seconds after start and shows it.
func (v *View) Draw(elapsed float32) {
	v.camera.Nudge(v.camera.ParallaxTarget(v.pointer.Snapshot()))
	vp := v.camera.ViewProjection()
	w, h := v.screen.Size()
	fw, fh := float32(w), float32(h)

	v.screen.SetStyle(v.bg)
	v.screen.Clear()

	field := vp.Mul4(mgl32.HomogRotate3DY(v.spin * elapsed))
	for i, p := range v.stars.Positions {
		x, y, depth, ok := project(field, p, fw, fh)
		if !ok {
			continue
		}
		// Nearer stars get brighter glyphs and colors.
		near := 1 - min(max(depth/v.extent, 0), 1)
		g := starGlyphs[min(int(near*float32(len(starGlyphs))), len(starGlyphs)-1)]
		style := v.bg.Foreground(tcellColor(v.stars.Colors[i], 0.35+0.65*near))
		v.screen.SetContent(x, y, g, nil, style)
	}

	pathStyle := v.bg.Foreground(tcellColor(backdrop.Hex(0x8b5cf6), 0.6))
	for _, p := range v.path {
		if x, y, _, ok := project(vp, p, fw, fh); ok {
			v.screen.SetContent(x, y, '·', nil, pathStyle)
		}
	}
	if x, y, _, ok := project(vp, v.orbit.Position(elapsed), fw, fh); ok {
		v.screen.SetContent(x, y, 'O', nil, v.bg.Foreground(tcellColor(backdrop.Hex(0x00d4ff), 1)).Bold(true))
	}

	v.screen.Show()
	v.frames++
}

// project maps p to a terminal cell. ok is false when the point is behind
// the camera or off screen.
func project(m mgl32.Mat4, p mgl32.Vec3, w, h float32) (x, y int, depth float32, ok bool) {
	clip := m.Mul4x1(p.Vec4(1))
	if clip[3] <= 1e-6 {
		return 0, 0, 0, false
	}
	nx, ny := clip[0]/clip[3], clip[1]/clip[3]
	if nx < -1 || nx >= 1 || ny <= -1 || ny > 1 {
		return 0, 0, 0, false
	}
	return int((nx + 1) * 0.5 * w), int((1 - ny) * 0.5 * h), clip[3], true
}

// tcellColor converts c scaled by brightness to a true color.
func tcellColor(c backdrop.Color, brightness float32) tcell.Color {
	ch := func(v float32) int32 {
		return int32(min(max(v*brightness, 0), 1) * 255)
	}
	return tcell.NewRGBColor(ch(c.R), ch(c.G), ch(c.B))
}

// Run draws at fps frames per second until the user quits or ctx is done.
func (v *View) Run(ctx context.Context, fps int) error {
	if fps <= 0 {
		fps = 30
	}
	v.screen.EnableMouse()
	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go v.screen.ChannelEvents(events, quit)

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok || v.HandleEvent(ev) {
				return nil
			}
		case now := <-ticker.C:
			v.Draw(float32(now.Sub(start).Seconds()))
		}
	}
}
