package backdrop

import (
	"testing"
	"time"
)

func mountCosmic(t *testing.T, stars int) (*mountFixture, *Cosmic) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.ObjectCount = stars
	c := NewCosmic()
	return mountWith(t, cfg, c), c
}

func TestCosmicBuild(t *testing.T) {
	f, c := mountCosmic(t, 300)
	defer f.ctrl.Unmount()

	g := c.Stars.Geometry
	if g.Len() != 300 || len(g.Colors) != 300 {
		t.Fatalf("stars = %d positions, %d colors; want 300", g.Len(), len(g.Colors))
	}
	for i, col := range g.Colors {
		if !c.Palette.Contains(col) {
			t.Fatalf("star %d color %v not in palette", i, col)
		}
	}
	m := c.Stars.Material()
	if m.Texture == nil || m.Blend != BlendAdd || !m.Unlit {
		t.Errorf("star material = %+v, want textured additive unlit", m)
	}

	path := c.Path.Geometry.Positions
	if len(path) != DefaultOrbitSamples || path[0] != path[len(path)-1] {
		t.Errorf("orbit path not closed (%d points)", len(path))
	}
	if c.Globe.NumChildren() != 1 || c.Globe.Children()[0].Type != ObjectLine {
		t.Error("globe has no wireframe child")
	}
	if n := len(f.ctrl.Scene().Lights()); n != 2 {
		t.Errorf("lights = %d, want 2", n)
	}
}

func TestCosmicTwinkle(t *testing.T) {
	f, c := mountCosmic(t, 10)
	defer f.ctrl.Unmount()

	entries := f.ctrl.Timeline().Entries()
	if len(entries) != 1 || entries[0].Tag() != "twinkle" || entries[0].Property() != PropMaterialOpacity {
		t.Fatalf("entries = %v, want one twinkle on material opacity", entries)
	}

	f.sched.Flush(0)
	f.sched.Flush(2 * time.Second)
	if op := c.Stars.Material().Opacity; !approx(op, 0.3) {
		t.Errorf("opacity after one leg = %v, want 0.3", op)
	}
}

func TestCosmicFrameHook(t *testing.T) {
	f, c := mountCosmic(t, 10)
	defer f.ctrl.Unmount()

	f.sched.Flush(0)
	if !vecApprox(c.Globe.Position, c.Orbit.Position(0), 1e-5) {
		t.Errorf("globe at %v, want orbit start %v", c.Globe.Position, c.Orbit.Position(0))
	}
	f.sched.Flush(2 * time.Second)

	if want := c.Orbit.Position(2); !vecApprox(c.Globe.Position, want, 1e-5) {
		t.Errorf("globe at %v, want %v", c.Globe.Position, want)
	}
	if !approx(c.Stars.Rotation[1], 0.04) {
		t.Errorf("star field rotation = %v, want 0.04", c.Stars.Rotation[1])
	}
	if !approx(c.Globe.Rotation[1], 2*c.GlobeSpin) {
		t.Errorf("globe spin = %v, want %v", c.Globe.Rotation[1], 2*c.GlobeSpin)
	}
}

func TestCosmicZeroStars(t *testing.T) {
	f, c := mountCosmic(t, 0)
	defer f.ctrl.Unmount()

	if c.Stars.Geometry.Len() != 0 {
		t.Errorf("stars = %d, want 0", c.Stars.Geometry.Len())
	}
	f.sched.Flush(0)
	for _, cmd := range f.ctrl.Renderer().Commands() {
		if cmd.Object == c.Stars {
			t.Error("empty star field emitted a command")
		}
	}
}
