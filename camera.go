package backdrop

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultSmoothing is the fraction of the remaining distance the camera
// covers toward its parallax target each frame.
const DefaultSmoothing = 0.05

// Camera is a perspective camera that looks at Target from Position.
// Pointer-driven parallax moves Position toward Rest plus a pointer offset
// with exponential smoothing.
type Camera struct {
	// Position is the eye position in world space.
	Position mgl32.Vec3
	// Target is the point the camera looks at.
	Target mgl32.Vec3
	// Up is the camera's up direction.
	Up mgl32.Vec3

	// Rest is the eye position when the pointer is centered.
	Rest mgl32.Vec3
	// ParallaxStrength is the world-space offset at the viewport edge.
	ParallaxStrength float32
	// Smoothing is the per-frame lerp factor in (0, 1]; 1 snaps.
	Smoothing float32

	fov    float32 // vertical, degrees
	aspect float32
	near   float32
	far    float32

	proj     mgl32.Mat4
	projDirt bool
}

// NewCamera creates a camera with the given vertical field of view in
// degrees and aspect ratio, placed at rest.
func NewCamera(fovDeg, aspect float32, rest mgl32.Vec3) *Camera {
	if aspect <= 0 {
		aspect = 1
	}
	return &Camera{
		Position:         rest,
		Rest:             rest,
		Up:               mgl32.Vec3{0, 1, 0},
		ParallaxStrength: 1,
		Smoothing:        DefaultSmoothing,
		fov:              fovDeg,
		aspect:           aspect,
		near:             0.1,
		far:              2000,
		projDirt:         true,
	}
}

// FOV returns the vertical field of view in degrees.
func (c *Camera) FOV() float32 {
	return c.fov
}

// Aspect returns the projection aspect ratio.
func (c *Camera) Aspect() float32 {
	return c.aspect
}

// SetAspect updates the projection aspect ratio. Non-positive values are ignored.
func (c *Camera) SetAspect(aspect float32) {
	if aspect <= 0 || aspect == c.aspect {
		return
	}
	c.aspect = aspect
	c.projDirt = true
}

// SetClip sets the near and far clip distances.
func (c *Camera) SetClip(near, far float32) {
	c.near, c.far = near, far
	c.projDirt = true
}

// ParallaxTarget returns the eye position the camera drifts toward for a
// normalized pointer position.
func (c *Camera) ParallaxTarget(p PointerSnapshot) mgl32.Vec3 {
	return c.Rest.Add(mgl32.Vec3{p.X * c.ParallaxStrength, p.Y * c.ParallaxStrength, 0})
}

// Nudge moves Position a Smoothing fraction of the remaining distance
// toward target. The factor is clamped to [0, 1] so the camera never
// overshoots.
func (c *Camera) Nudge(target mgl32.Vec3) {
	f := c.Smoothing
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	c.Position = c.Position.Add(target.Sub(c.Position).Mul(f))
}

// Projection returns the perspective projection matrix.
func (c *Camera) Projection() mgl32.Mat4 {
	if c.projDirt {
		c.proj = mgl32.Perspective(mgl32.DegToRad(c.fov), c.aspect, c.near, c.far)
		c.projDirt = false
	}
	return c.proj
}

// View returns the view matrix.
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.Up)
}

// ViewProjection returns Projection * View.
func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.Projection().Mul4(c.View())
}

// projectPoint maps a clip-space point to screen pixels for a w x h target.
// ok is false for points behind the near plane.
func projectPoint(clip mgl32.Vec4, w, h float32) (sx, sy, depth float32, ok bool) {
	if clip[3] <= 1e-6 {
		return 0, 0, 0, false
	}
	inv := 1 / clip[3]
	nx, ny, nz := clip[0]*inv, clip[1]*inv, clip[2]*inv
	if nz < -1 || nz > 1 {
		return 0, 0, 0, false
	}
	return (nx + 1) * 0.5 * w, (1 - ny) * 0.5 * h, clip[3], true
}

// WorldToScreen projects a world-space point onto a w x h target.
func (c *Camera) WorldToScreen(p mgl32.Vec3, w, h float32) (sx, sy float32, ok bool) {
	sx, sy, _, ok = projectPoint(c.ViewProjection().Mul4x1(p.Vec4(1)), w, h)
	return sx, sy, ok
}

// Unproject returns the point on the plane z = planeZ seen at normalized
// device coordinates (nx, ny). ok is false when the view ray is parallel
// to the plane.
func (c *Camera) Unproject(nx, ny, planeZ float32) (p mgl32.Vec3, ok bool) {
	return unproject(c.ViewProjection().Inv(), nx, ny, planeZ)
}

// unproject intersects the ray through (nx, ny) with z = planeZ, given the
// inverse view-projection matrix.
func unproject(inv mgl32.Mat4, nx, ny, planeZ float32) (mgl32.Vec3, bool) {
	near := inv.Mul4x1(mgl32.Vec4{nx, ny, -1, 1})
	far := inv.Mul4x1(mgl32.Vec4{nx, ny, 1, 1})
	if near[3] == 0 || far[3] == 0 {
		return mgl32.Vec3{}, false
	}
	a := near.Vec3().Mul(1 / near[3])
	dir := far.Vec3().Mul(1 / far[3]).Sub(a)
	if math32.Abs(dir[2]) <= 1e-6*dir.Len() {
		return mgl32.Vec3{}, false
	}
	return a.Add(dir.Mul((planeZ - a[2]) / dir[2])), true
}
