package backdrop

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// PowerPreference is a performance hint for the host.
type PowerPreference string

const (
	PowerDefault         PowerPreference = "default"
	PowerHighPerformance PowerPreference = "high-performance"
	PowerLowPower        PowerPreference = "low-power"
)

// SurfaceOptions configures the render surface allocated by
// ResourceManager.Acquire.
type SurfaceOptions struct {
	Antialias   bool
	Transparent bool
	// PixelDensityCap bounds the device scale used to size the backing image.
	// Zero or negative means uncapped.
	PixelDensityCap float64
	PowerPreference PowerPreference
	// Background fills opaque surfaces at the start of every frame.
	Background Color
}

// Surface is the offscreen render target owned by a ResourceManager and
// hosted by a DisplayTarget. Its backing image is sized in physical pixels:
// logical size times the capped device scale.
type Surface struct {
	image   *ebiten.Image
	opts    SurfaceOptions
	logical [2]int
	scale   float64

	ledger   *ledger
	released bool
}

func newSurface(width, height int, deviceScale float64, opts SurfaceOptions, l *ledger) *Surface {
	s := &Surface{opts: opts, ledger: l}
	s.scale = effectiveScale(deviceScale, opts.PixelDensityCap)
	s.logical = [2]int{max(width, 1), max(height, 1)}
	s.image = ebiten.NewImage(s.physical())
	l.acquire(kindSurface)
	return s
}

// effectiveScale returns the device scale bounded by the cap.
func effectiveScale(deviceScale, capScale float64) float64 {
	if deviceScale <= 0 {
		deviceScale = 1
	}
	if capScale > 0 && deviceScale > capScale {
		return capScale
	}
	return deviceScale
}

func (s *Surface) physical() (int, int) {
	w := int(math.Ceil(float64(s.logical[0]) * s.scale))
	h := int(math.Ceil(float64(s.logical[1]) * s.scale))
	return max(w, 1), max(h, 1)
}

// Image returns the backing image, or nil once released.
func (s *Surface) Image() *ebiten.Image {
	return s.image
}

// LogicalSize returns the surface size in logical (CSS-like) pixels.
func (s *Surface) LogicalSize() (w, h int) {
	return s.logical[0], s.logical[1]
}

// PhysicalSize returns the backing image size in pixels.
func (s *Surface) PhysicalSize() (w, h int) {
	return s.physical()
}

// Scale returns the capped device scale applied to the backing image.
func (s *Surface) Scale() float64 {
	return s.scale
}

// Options returns the options the surface was acquired with.
func (s *Surface) Options() SurfaceOptions {
	return s.opts
}

// Released reports whether the backing image has been deallocated.
func (s *Surface) Released() bool {
	return s.released
}

// Resize reallocates the backing image when the logical size changes.
// No-op once released.
func (s *Surface) Resize(width, height int) {
	if s.released {
		return
	}
	width, height = max(width, 1), max(height, 1)
	if s.logical == [2]int{width, height} {
		return
	}
	s.logical = [2]int{width, height}
	s.image.Deallocate()
	s.image = ebiten.NewImage(s.physical())
}

// Begin prepares the surface for a new frame: transparent surfaces are
// cleared, opaque ones are filled with the background color.
func (s *Surface) Begin() {
	if s.released {
		return
	}
	if s.opts.Transparent {
		s.image.Clear()
		return
	}
	bg := s.opts.Background
	bg.A = 1
	s.image.Fill(bg.toRGBA())
}

func (s *Surface) release() {
	if s.released {
		return
	}
	s.released = true
	s.image.Deallocate()
	s.image = nil
	s.ledger.release(kindSurface)
}
