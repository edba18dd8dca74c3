package backdrop

import "sync"

// PointerSnapshot is a copy of the pointer state. X and Y are normalized to
// [-1, 1] with +Y up; (0, 0) is the viewport center.
type PointerSnapshot struct {
	X, Y float32
	// Seen is false until the first pointer event arrives.
	Seen bool
}

// PointerState is the last-known pointer position for one mounted view.
// Event handlers write it; the render loop reads one snapshot per frame.
// Writers and the loop may run on different goroutines.
type PointerState struct {
	mu  sync.Mutex
	cur PointerSnapshot
}

// Set records a pointer position given in viewport pixels, normalizing it
// against the viewport size.
func (p *PointerState) Set(x, y float64, vp ViewportSnapshot) {
	nx, ny := normalizePointer(x, y, vp)
	p.mu.Lock()
	p.cur = PointerSnapshot{X: nx, Y: ny, Seen: true}
	p.mu.Unlock()
}

// Snapshot returns a consistent copy of the state.
func (p *PointerState) Snapshot() PointerSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cur
}

func normalizePointer(x, y float64, vp ViewportSnapshot) (float32, float32) {
	if vp.Width <= 0 || vp.Height <= 0 {
		return 0, 0
	}
	nx := x/float64(vp.Width)*2 - 1
	ny := -(y/float64(vp.Height)*2 - 1)
	return float32(clamp(nx, -1, 1)), float32(clamp(ny, -1, 1))
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}

// ViewportSnapshot is a copy of the viewport state.
type ViewportSnapshot struct {
	Width, Height int
	// Version increases on every change so readers can detect resizes.
	Version uint64
}

// Aspect returns Width / Height, or 1 for an empty viewport.
func (v ViewportSnapshot) Aspect() float32 {
	if v.Width <= 0 || v.Height <= 0 {
		return 1
	}
	return float32(v.Width) / float32(v.Height)
}

// ViewportState is the current viewport size for one mounted view.
type ViewportState struct {
	mu  sync.Mutex
	cur ViewportSnapshot
}

// Set records a new size. Setting the current size again is a no-op.
func (v *ViewportState) Set(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cur.Width == width && v.cur.Height == height {
		return
	}
	v.cur.Width, v.cur.Height = width, height
	v.cur.Version++
}

// Snapshot returns a consistent copy of the state.
func (v *ViewportState) Snapshot() ViewportSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cur
}
