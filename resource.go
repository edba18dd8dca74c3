package backdrop

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

// DisplayTarget is the host element a Surface is inserted into.
type DisplayTarget interface {
	// Size returns the logical size of the target in pixels.
	Size() (width, height int)
	// DeviceScale returns the ratio of physical to logical pixels.
	DeviceScale() float64
	// GraphicsAvailable reports whether a graphics surface can be hosted.
	GraphicsAvailable() bool
	// Insert adds the surface to the host's composition.
	Insert(s *Surface) error
	// Remove takes the surface out of the host's composition.
	Remove(s *Surface)
	// Contains reports whether the surface is currently inserted.
	Contains(s *Surface) bool
}

// ResourceCounts is a per-kind handle count.
type ResourceCounts struct {
	Surfaces   int
	Geometries int
	Materials  int
	Textures   int
}

// Total returns the sum over all kinds.
func (c ResourceCounts) Total() int {
	return c.Surfaces + c.Geometries + c.Materials + c.Textures
}

// ResourceStats reports the state of a ResourceManager.
type ResourceStats struct {
	// Live handles not yet released.
	Live ResourceCounts
	// Released handles; each handle is counted once.
	Released ResourceCounts
	// Objects is the number of live objects attached to managed scenes.
	Objects int
	// Points is the number of point entries attached across all point clouds.
	Points int
}

// ResourceManager owns every graphics handle created for one mounted view:
// the render surface, geometry buffers, materials and textures. Dispose is
// the only path that frees them, and it is idempotent.
type ResourceManager struct {
	target  DisplayTarget
	surface *Surface
	scenes  []*Scene

	geometries []*Geometry
	materials  []*Material
	textures   []*Texture

	ledger   ledger
	disposed bool
}

// NewResourceManager creates an empty manager. Nothing is allocated until
// Acquire or one of the New* factories is called.
func NewResourceManager() *ResourceManager {
	return &ResourceManager{}
}

// Acquire allocates the render surface sized to the target and inserts it
// into the target. Returns ErrCapabilityUnavailable if the target cannot
// host graphics. Calling Acquire again returns the existing surface.
func (rm *ResourceManager) Acquire(target DisplayTarget, opts SurfaceOptions) (*Surface, error) {
	if rm.disposed {
		return nil, fmt.Errorf("acquire surface: %w: manager disposed", ErrResourceAcquisition)
	}
	if rm.surface != nil {
		return rm.surface, nil
	}
	if !graphicsAvailable(target) {
		return nil, ErrCapabilityUnavailable
	}
	w, h := target.Size()
	s := newSurface(w, h, target.DeviceScale(), opts, &rm.ledger)
	if err := target.Insert(s); err != nil {
		s.release()
		return nil, fmt.Errorf("insert surface: %w: %w", ErrCapabilityUnavailable, err)
	}
	rm.target = target
	rm.surface = s
	return s, nil
}

// graphicsAvailable asks target for graphics. A target that panics, such
// as a typed nil pointer, has none.
func graphicsAvailable(target DisplayTarget) (ok bool) {
	if target == nil {
		return false
	}
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return target.GraphicsAvailable()
}

// Surface returns the acquired surface, or nil.
func (rm *ResourceManager) Surface() *Surface {
	return rm.surface
}

// Attach adds obj to the scene's render set and places the scene under
// this manager's ownership.
func (rm *ResourceManager) Attach(scene *Scene, obj *Object) {
	rm.adopt(scene)
	scene.Add(obj)
}

// Detach removes obj from the scene's render set without releasing it. A
// detached object's geometry is still released by Dispose. Detaching an
// object that is not attached is a no-op.
func (rm *ResourceManager) Detach(scene *Scene, obj *Object) {
	if obj == nil || obj.Parent != scene.Root() {
		return
	}
	scene.Remove(obj)
}

func (rm *ResourceManager) adopt(scene *Scene) {
	for _, s := range rm.scenes {
		if s == scene {
			return
		}
	}
	rm.scenes = append(rm.scenes, scene)
}

// NewGeometry creates a geometry owned by this manager.
func (rm *ResourceManager) NewGeometry(positions []mgl32.Vec3, colors []Color, indices []uint16) *Geometry {
	g := &Geometry{Positions: positions, Colors: colors, Indices: indices, ledger: &rm.ledger}
	rm.ledger.acquire(kindGeometry)
	rm.geometries = append(rm.geometries, g)
	return g
}

// NewMaterial creates a material with default shading owned by this manager.
func (rm *ResourceManager) NewMaterial(name string) *Material {
	m := &Material{Name: name, ledger: &rm.ledger, pinned: true}
	materialDefaults(m)
	rm.ledger.acquire(kindMaterial)
	rm.materials = append(rm.materials, m)
	return m
}

// NewTexture uploads straight-alpha RGBA pixels into a new texture.
func (rm *ResourceManager) NewTexture(w, h int, pixels []byte) (*Texture, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("new texture %dx%d: %w: empty size", w, h, ErrResourceAcquisition)
	}
	if len(pixels) != 4*w*h {
		return nil, fmt.Errorf("new texture %dx%d: %w: got %d bytes, want %d",
			w, h, ErrResourceAcquisition, len(pixels), 4*w*h)
	}
	img := ebiten.NewImage(w, h)
	img.WritePixels(premultiply(pixels))
	t := &Texture{image: img, w: w, h: h, ledger: &rm.ledger}
	rm.ledger.acquire(kindTexture)
	rm.textures = append(rm.textures, t)
	return t, nil
}

// NewGlowTexture generates a size x size radial falloff texture used for
// soft round points.
func (rm *ResourceManager) NewGlowTexture(size int) (*Texture, error) {
	if size <= 0 {
		return nil, fmt.Errorf("glow texture: %w: size %d", ErrResourceAcquisition, size)
	}
	return rm.NewTexture(size, size, glowPixels(size))
}

// glowPixels returns RGBA pixels of a white disc whose alpha falls off
// quadratically from the center.
func glowPixels(size int) []byte {
	pix := make([]byte, 4*size*size)
	c := float64(size-1) / 2
	r := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := math.Hypot(float64(x)-c, float64(y)-c) / r
			a := 1 - d
			if a < 0 {
				a = 0
			}
			i := 4 * (y*size + x)
			pix[i], pix[i+1], pix[i+2] = 255, 255, 255
			pix[i+3] = uint8(a * a * 255)
		}
	}
	return pix
}

// premultiply converts straight-alpha RGBA to the premultiplied form
// ebiten images store.
func premultiply(pix []byte) []byte {
	out := make([]byte, len(pix))
	for i := 0; i+3 < len(pix); i += 4 {
		a := uint16(pix[i+3])
		out[i] = uint8(uint16(pix[i]) * a / 255)
		out[i+1] = uint8(uint16(pix[i+1]) * a / 255)
		out[i+2] = uint8(uint16(pix[i+2]) * a / 255)
		out[i+3] = pix[i+3]
	}
	return out
}

// Resize resizes the surface to the given logical size.
func (rm *ResourceManager) Resize(width, height int) {
	if rm.surface != nil {
		rm.surface.Resize(width, height)
	}
}

// Dispose releases every handle this manager created: scene objects (and
// through them geometries and material references), any remaining
// materials, geometries and textures, and finally the surface, which is
// removed from its target only if still inserted. Dispose on a manager
// that never acquired anything is a no-op; calling it twice is safe.
func (rm *ResourceManager) Dispose() {
	if rm.disposed {
		return
	}
	rm.disposed = true

	for _, s := range rm.scenes {
		s.Dispose()
	}
	rm.scenes = nil

	for _, g := range rm.geometries {
		g.release()
	}
	rm.geometries = nil
	for _, m := range rm.materials {
		m.pinned = false
		m.dispose()
	}
	rm.materials = nil
	for _, t := range rm.textures {
		t.release()
	}
	rm.textures = nil

	if rm.surface != nil {
		if rm.target != nil && rm.target.Contains(rm.surface) {
			rm.target.Remove(rm.surface)
		}
		rm.surface.release()
		rm.surface = nil
	}
	rm.target = nil
}

// Disposed reports whether Dispose has run.
func (rm *ResourceManager) Disposed() bool {
	return rm.disposed
}

// Stats returns handle counts and attachment totals.
func (rm *ResourceManager) Stats() ResourceStats {
	st := ResourceStats{
		Live:     countsOf(rm.ledger.live),
		Released: countsOf(rm.ledger.released),
	}
	for _, s := range rm.scenes {
		for _, child := range s.Root().Children() {
			child.Walk(func(o *Object) bool {
				st.Objects++
				if o.Type == ObjectPoints && o.Geometry != nil {
					st.Points += o.Geometry.Len()
				}
				return true
			})
		}
	}
	return st
}

func countsOf(c [numHandleKinds]int) ResourceCounts {
	return ResourceCounts{
		Surfaces:   c[kindSurface],
		Geometries: c[kindGeometry],
		Materials:  c[kindMaterial],
		Textures:   c[kindTexture],
	}
}
