package backdrop

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

// handleKind identifies a class of graphics handle tracked by the ledger.
type handleKind uint8

const (
	kindSurface handleKind = iota
	kindGeometry
	kindMaterial
	kindTexture
	numHandleKinds
)

// ledger counts allocations and releases per handle kind. Every handle
// releases through its ledger exactly once.
type ledger struct {
	live     [numHandleKinds]int
	released [numHandleKinds]int
}

func (l *ledger) acquire(k handleKind) {
	if l != nil {
		l.live[k]++
	}
}

func (l *ledger) release(k handleKind) {
	if l != nil {
		l.live[k]--
		l.released[k]++
	}
}

// --- Geometry ---

// Geometry holds vertex buffers for a point cloud, line strip or mesh.
// Buffers are dropped on release; a released geometry renders nothing.
type Geometry struct {
	Positions []mgl32.Vec3
	// Colors holds optional per-vertex colors, multiplied with the material color.
	Colors []Color
	// Indices holds triangle indices for meshes.
	Indices []uint16

	ledger   *ledger
	released bool

	// Scratch buffers reused by the renderer.
	projected []projectedVertex
	verts     []ebiten.Vertex
	inds      []uint32
}

// Len returns the number of vertices.
func (g *Geometry) Len() int {
	return len(g.Positions)
}

// Released reports whether the geometry's buffers have been released.
func (g *Geometry) Released() bool {
	return g.released
}

func (g *Geometry) release() {
	if g.released {
		return
	}
	g.released = true
	g.Positions = nil
	g.Colors = nil
	g.Indices = nil
	g.projected = nil
	g.verts = nil
	g.inds = nil
	g.ledger.release(kindGeometry)
}

// --- Texture ---

// Texture is a GPU image sampled by a material.
type Texture struct {
	image    *ebiten.Image
	w, h     int
	ledger   *ledger
	released bool
}

// Image returns the underlying image, or nil once released.
func (t *Texture) Image() *ebiten.Image {
	return t.image
}

// Size returns the texture size in pixels.
func (t *Texture) Size() (w, h int) {
	return t.w, t.h
}

// Released reports whether the texture's image has been deallocated.
func (t *Texture) Released() bool {
	return t.released
}

func (t *Texture) release() {
	if t.released {
		return
	}
	t.released = true
	if t.image != nil {
		t.image.Deallocate()
		t.image = nil
	}
	t.ledger.release(kindTexture)
}

// --- Material ---

// Material holds shading parameters. Materials may be shared by several
// objects of the same role; each owning object holds one reference. A
// material made by a ResourceManager is also held by the manager and is
// released (with its texture) by the manager's Dispose. Any other material
// is released when its last reference goes away.
type Material struct {
	Name string

	Color   Color
	Opacity float32

	// Emissive is added on top of the lit color, scaled by EmissiveIntensity.
	Emissive          Color
	EmissiveIntensity float32

	// Unlit materials ignore scene lights.
	Unlit bool

	// PointSize is the world-space size of each point for point clouds.
	PointSize float32
	// LineWidth is the screen-space width of line strips in pixels.
	LineWidth float32

	Blend BlendMode

	// Texture is sampled for points. Owned by the material.
	Texture *Texture

	refs     int
	pinned   bool
	ledger   *ledger
	released bool
}

func materialDefaults(m *Material) {
	m.Color = ColorWhite
	m.Opacity = 1
	m.PointSize = 1
	m.LineWidth = 1
}

// Refs returns the number of objects currently referencing the material.
func (m *Material) Refs() int {
	return m.refs
}

// Released reports whether the material has been released.
func (m *Material) Released() bool {
	return m.released
}

func (m *Material) retain() {
	m.refs++
}

func (m *Material) release() {
	if m.refs > 0 {
		m.refs--
	}
	if m.refs == 0 && !m.pinned {
		m.dispose()
	}
}

func (m *Material) dispose() {
	if m.released {
		return
	}
	m.released = true
	if m.Texture != nil {
		m.Texture.release()
		m.Texture = nil
	}
	m.ledger.release(kindMaterial)
}
