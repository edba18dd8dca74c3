package backdrop

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// MeshData is CPU-side vertex data produced by the shape builders. Pass it
// to ResourceManager.NewGeometry to obtain a releasable Geometry.
type MeshData struct {
	Positions []mgl32.Vec3
	Indices   []uint16
}

// Geometry uploads the data into a geometry owned by rm.
func (d MeshData) Geometry(rm *ResourceManager) *Geometry {
	return rm.NewGeometry(d.Positions, nil, d.Indices)
}

// Clone returns a deep copy, so two objects can each own their geometry.
func (d MeshData) Clone() MeshData {
	return MeshData{
		Positions: append([]mgl32.Vec3(nil), d.Positions...),
		Indices:   append([]uint16(nil), d.Indices...),
	}
}

// --- Sphere ---

// sphereVertices returns (rings+1) * (segments+1) points of a UV sphere,
// ring-major from the north pole.
func sphereVertices(radius float32, rings, segments int) []mgl32.Vec3 {
	pts := make([]mgl32.Vec3, 0, (rings+1)*(segments+1))
	for i := 0; i <= rings; i++ {
		sinPhi, cosPhi := math32.Sincos(math32.Pi * float32(i) / float32(rings))
		for j := 0; j <= segments; j++ {
			sinTheta, cosTheta := math32.Sincos(2 * math32.Pi * float32(j) / float32(segments))
			pts = append(pts, mgl32.Vec3{
				radius * sinPhi * cosTheta,
				radius * cosPhi,
				radius * sinPhi * sinTheta,
			})
		}
	}
	return pts
}

// Sphere builds a UV sphere with outward counter-clockwise triangles.
// rings is clamped to at least 2 and segments to at least 3.
func Sphere(radius float32, rings, segments int) MeshData {
	rings, segments = max(rings, 2), max(segments, 3)
	d := MeshData{Positions: sphereVertices(radius, rings, segments)}
	stride := segments + 1
	for i := 0; i < rings; i++ {
		for j := 0; j < segments; j++ {
			a := uint16(i*stride + j)
			b := a + uint16(stride)
			c := a + 1
			e := b + 1
			d.Indices = append(d.Indices, a, c, b, b, c, e)
		}
	}
	return d
}

// SphereWireframe builds latitude and longitude lines of a UV sphere as
// segment pairs, for drawing as a line object.
func SphereWireframe(radius float32, rings, segments int) MeshData {
	rings, segments = max(rings, 2), max(segments, 3)
	d := MeshData{Positions: sphereVertices(radius, rings, segments)}
	stride := segments + 1
	// Parallels, skipping the degenerate poles.
	for i := 1; i < rings; i++ {
		for j := 0; j < segments; j++ {
			a := uint16(i*stride + j)
			d.Indices = append(d.Indices, a, a+1)
		}
	}
	// Meridians.
	for j := 0; j < segments; j++ {
		for i := 0; i < rings; i++ {
			a := uint16(i*stride + j)
			d.Indices = append(d.Indices, a, a+uint16(stride))
		}
	}
	return d
}

// --- Boxes ---

// boxFaces lists each face's corners counter-clockwise seen from outside.
// Corner k sits at (k&1, k>>1&1, k>>2&1).
var boxFaces = [6][4]uint16{
	{4, 5, 7, 6}, // +z
	{1, 0, 2, 3}, // -z
	{5, 1, 3, 7}, // +x
	{0, 4, 6, 2}, // -x
	{6, 7, 3, 2}, // +y
	{0, 1, 5, 4}, // -y
}

// AppendBox appends an axis-aligned box spanning min to max.
func (d *MeshData) AppendBox(minCorner, maxCorner mgl32.Vec3) {
	base := uint16(len(d.Positions))
	for k := 0; k < 8; k++ {
		p := minCorner
		if k&1 != 0 {
			p[0] = maxCorner[0]
		}
		if k&2 != 0 {
			p[1] = maxCorner[1]
		}
		if k&4 != 0 {
			p[2] = maxCorner[2]
		}
		d.Positions = append(d.Positions, p)
	}
	for _, f := range boxFaces {
		d.Indices = append(d.Indices,
			base+f[0], base+f[1], base+f[2],
			base+f[0], base+f[2], base+f[3],
		)
	}
}

// Box builds a single box centered on the origin.
func Box(size mgl32.Vec3) MeshData {
	var d MeshData
	half := size.Mul(0.5)
	d.AppendBox(half.Mul(-1), half)
	return d
}
