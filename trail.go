package backdrop

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// trailTick is the simulation step. Speeds and decay are per tick.
const trailTick = float32(1) / 60

// maxTrailSteps bounds the ticks simulated in one frame, so a stalled
// window does not replay seconds of motion at once.
const maxTrailSteps = 4

// trailParticle is one falling digit in viewport pixels, y down.
type trailParticle struct {
	digit  rune
	x, y   float32
	vx, vy float32
	life   float32 // 1 at birth, dead at 0
}

// Trail is the cursor trail: pointer moves shed binary digits that drift
// sideways, fall under gravity and fade out. Particles live in viewport
// pixels and are drawn as one point cloud of glyph cells on the plane
// z = PlaneZ.
type Trail struct {
	// Interval is the minimum time between spawns in seconds.
	Interval float32
	// PerSpawn is the number of digits shed per spawn.
	PerSpawn int
	// Jitter is the spread of spawn positions around the pointer in pixels.
	Jitter float32
	// Drift is the spread of horizontal speed in pixels per tick.
	Drift float32
	// Fall is the initial downward speed in pixels per tick.
	Fall Range
	// Gravity is added to the downward speed every tick.
	Gravity float32
	// Decay is the life lost every tick.
	Decay float32
	// MaxParticles is the pool size. Spawns are dropped when it is full.
	MaxParticles int
	// GlyphSize is the digit height in pixels.
	GlyphSize float32
	Color     Color
	PlaneZ    float32

	// Set by Build.
	Cloud *Object

	mu        sync.Mutex
	particles []trailParticle
	alive     int
	rng       RandomSource
	camera    *Camera
	now       float32
	lastSpawn float32
	spawned   bool
	acc       float32
	stopped   bool
	positions []mgl32.Vec3
	colors    []Color
}

// NewTrail returns the preset with its default tuning.
func NewTrail() *Trail {
	return &Trail{
		Interval:     0.05,
		PerSpawn:     2,
		Jitter:       40,
		Drift:        2,
		Fall:         Range{Min: 1, Max: 4},
		Gravity:      0.1,
		Decay:        0.02,
		MaxParticles: 256,
		GlyphSize:    14,
		Color:        Hex(0x00ff96),
	}
}

// Build implements Content.
func (t *Trail) Build(b *Builder) error {
	rm := b.Resources
	mat := rm.NewMaterial("trail")
	mat.Color = t.Color
	mat.Unlit = true
	mat.Blend = BlendAdd

	t.Cloud = NewPoints("trail", rm.NewGeometry(nil, nil, nil), mat)
	b.Add(t.Cloud)

	t.particles = make([]trailParticle, max(t.MaxParticles, 1))
	t.rng = b.Rand
	t.camera = b.Camera
	b.OnPointerMove(func(ev PointerEvent) { t.spawnAt(float32(ev.X), float32(ev.Y)) })
	b.OnFrame(t.frame)
	b.OnUnmount(t.reset)
	return nil
}

// Live returns the number of particles alive.
func (t *Trail) Live() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.alive
}

// spawnAt sheds PerSpawn digits around (x, y) unless the last spawn was
// less than Interval ago.
func (t *Trail) spawnAt(x, y float32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || (t.spawned && t.now-t.lastSpawn < t.Interval) {
		return
	}
	t.spawned = true
	t.lastSpawn = t.now
	for range t.PerSpawn {
		if t.alive == len(t.particles) {
			return
		}
		p := &t.particles[t.alive]
		p.digit = '1'
		if t.rng.Float64() > 0.5 {
			p.digit = '0'
		}
		p.x = x + t.spread(t.Jitter)
		p.y = y + t.spread(t.Jitter)
		p.vx = t.spread(t.Drift)
		p.vy = t.Fall.Random(t.rng)
		p.life = 1
		t.alive++
	}
}

// spread returns a value in [-w/2, w/2).
func (t *Trail) spread(w float32) float32 {
	return (float32(t.rng.Float64()) - 0.5) * w
}

// step advances every particle one tick and swap-removes the dead.
func (t *Trail) step() {
	i := 0
	for i < t.alive {
		p := &t.particles[i]
		p.life -= t.Decay
		p.y += p.vy
		p.x += p.vx
		p.vy += t.Gravity
		if p.life <= 0 {
			t.alive--
			t.particles[i] = t.particles[t.alive]
			continue
		}
		i++
	}
}

func (t *Trail) frame(f FrameInfo) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = f.Elapsed
	t.acc += f.Delta
	for n := 0; t.acc >= trailTick; n++ {
		if n == maxTrailSteps {
			t.acc = 0
			break
		}
		t.step()
		t.acc -= trailTick
	}
	t.rebuild(f.Viewport)
}

// rebuild writes one point per filled glyph cell of every live digit into
// the cloud's geometry. Cell alpha is the particle's life.
func (t *Trail) rebuild(vp ViewportSnapshot) {
	g := t.Cloud.Geometry
	if g == nil || g.Released() || vp.Width <= 0 || vp.Height <= 0 {
		return
	}
	w, h := float32(vp.Width), float32(vp.Height)
	inv := t.camera.ViewProjection().Inv()
	toWorld := func(px, py float32) (mgl32.Vec3, bool) {
		return unproject(inv, px/w*2-1, 1-py/h*2, t.PlaneZ)
	}

	cellPx := t.GlyphSize / glyphHeight
	o, ok1 := toWorld(w/2, h/2)
	dx, ok2 := toWorld(w/2+cellPx, h/2)
	if !ok1 || !ok2 {
		return
	}
	cell := dx.Sub(o).Len()
	t.Cloud.Material().PointSize = cell

	t.positions = t.positions[:0]
	t.colors = t.colors[:0]
	for _, p := range t.particles[:t.alive] {
		centre, ok := toWorld(p.x, p.y)
		if !ok {
			continue
		}
		c := Color{R: 1, G: 1, B: 1, A: p.life}
		glyphCells(p.digit, func(col, row int) {
			x := (float32(col) - (glyphWidth-1)/2.0) * cell
			y := ((glyphHeight-1)/2.0 - float32(row)) * cell
			t.positions = append(t.positions, centre.Add(mgl32.Vec3{x, y, 0}))
			t.colors = append(t.colors, c)
		})
	}
	g.Positions = t.positions
	g.Colors = t.colors
}

// reset kills every particle and refuses further spawns.
func (t *Trail) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	t.alive = 0
	t.acc = 0
	t.positions = nil
	t.colors = nil
	if g := t.Cloud.Geometry; g != nil && !g.Released() {
		g.Positions = nil
		g.Colors = nil
	}
}
