package backdrop

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// checkOutward fails if any non-degenerate triangle of a mesh centered on
// the origin faces inward.
func checkOutward(t *testing.T, d MeshData) {
	t.Helper()
	for i := 0; i+2 < len(d.Indices); i += 3 {
		a := d.Positions[d.Indices[i]]
		b := d.Positions[d.Indices[i+1]]
		c := d.Positions[d.Indices[i+2]]
		n := b.Sub(a).Cross(c.Sub(a))
		if n.Len() < 1e-6 {
			continue
		}
		center := a.Add(b).Add(c).Mul(1.0 / 3)
		if n.Dot(center) <= 0 {
			t.Fatalf("triangle %d (%v %v %v) faces inward", i/3, a, b, c)
		}
	}
}

func TestBox(t *testing.T) {
	d := Box(mgl32.Vec3{2, 2, 2})
	if len(d.Positions) != 8 || len(d.Indices) != 36 {
		t.Fatalf("box has %d positions, %d indices; want 8, 36", len(d.Positions), len(d.Indices))
	}
	for _, p := range d.Positions {
		for axis := 0; axis < 3; axis++ {
			if p[axis] != -1 && p[axis] != 1 {
				t.Fatalf("corner %v not on the unit box", p)
			}
		}
	}
	checkOutward(t, d)
}

func TestAppendBoxOffsetsIndices(t *testing.T) {
	var d MeshData
	d.AppendBox(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1})
	d.AppendBox(mgl32.Vec3{2, 0, 0}, mgl32.Vec3{3, 1, 1})
	if len(d.Positions) != 16 || len(d.Indices) != 72 {
		t.Fatalf("got %d positions, %d indices", len(d.Positions), len(d.Indices))
	}
	for _, idx := range d.Indices[36:] {
		if idx < 8 {
			t.Fatalf("second box references vertex %d of the first", idx)
		}
	}
}

func TestSphere(t *testing.T) {
	d := Sphere(1.5, 8, 12)
	if len(d.Positions) != 9*13 {
		t.Fatalf("positions = %d, want %d", len(d.Positions), 9*13)
	}
	if len(d.Indices) != 8*12*6 {
		t.Fatalf("indices = %d, want %d", len(d.Indices), 8*12*6)
	}
	for _, p := range d.Positions {
		if !approx(p.Len(), 1.5) {
			t.Fatalf("vertex %v off the sphere", p)
		}
	}
	checkOutward(t, d)
}

func TestSphereClampsResolution(t *testing.T) {
	d := Sphere(1, 0, 1)
	if len(d.Positions) != 3*4 {
		t.Errorf("positions = %d, want 12 for 2 rings x 3 segments", len(d.Positions))
	}
}

func TestSphereWireframe(t *testing.T) {
	d := SphereWireframe(1, 6, 8)
	if len(d.Indices)%2 != 0 {
		t.Fatalf("odd index count %d", len(d.Indices))
	}
	// 5 parallels of 8 segments, 8 meridians of 6 segments.
	if want := 2 * (5*8 + 8*6); len(d.Indices) != want {
		t.Errorf("indices = %d, want %d", len(d.Indices), want)
	}
	for _, idx := range d.Indices {
		if int(idx) >= len(d.Positions) {
			t.Fatalf("index %d out of range", idx)
		}
	}
}

func TestMeshDataClone(t *testing.T) {
	d := Box(mgl32.Vec3{1, 1, 1})
	c := d.Clone()
	c.Positions[0] = mgl32.Vec3{9, 9, 9}
	c.Indices[0] = 7
	if d.Positions[0] == c.Positions[0] || d.Indices[0] == 7 {
		t.Error("Clone shares buffers with the original")
	}
}
