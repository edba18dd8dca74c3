package backdrop

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestLocalMatrixOrder(t *testing.T) {
	o := NewGroup("o")
	o.Position = mgl32.Vec3{1, 0, 0}
	o.Rotation[1] = mgl32.DegToRad(90)
	o.Scale = mgl32.Vec3{2, 1, 1}
	s := NewScene()
	s.Add(o)
	s.UpdateTransforms()

	// Scale (2, 0, 0), rotate about Y to (0, 0, -2), then translate.
	got := o.LocalToWorld(mgl32.Vec3{1, 0, 0})
	if !vecApprox(got, mgl32.Vec3{1, 0, -2}, 1e-5) {
		t.Errorf("LocalToWorld = %v, want (1, 0, -2)", got)
	}
}

func TestWorldMatrixHierarchy(t *testing.T) {
	s := NewScene()
	parent := NewGroup("parent")
	parent.Position = mgl32.Vec3{0, 5, 0}
	parent.Scale = mgl32.Vec3{2, 2, 2}
	child := NewGroup("child")
	child.Position = mgl32.Vec3{1, 0, 0}
	parent.AddChild(child)
	s.Add(parent)
	s.UpdateTransforms()

	if got := child.WorldPosition(); !vecApprox(got, mgl32.Vec3{2, 5, 0}, 1e-5) {
		t.Errorf("child world position = %v, want (2, 5, 0)", got)
	}
	if got := parent.WorldMatrix().Col(3).Vec3(); got != parent.Position {
		t.Errorf("parent translation = %v", got)
	}
}

func TestWorldOpacityInherited(t *testing.T) {
	s := NewScene()
	parent := NewGroup("parent")
	parent.Opacity = 0.5
	child := NewGroup("child")
	child.Opacity = 0.5
	parent.AddChild(child)
	s.Add(parent)
	s.UpdateTransforms()
	if !approx(child.worldOpacity, 0.25) {
		t.Errorf("world opacity = %f, want 0.25", child.worldOpacity)
	}
}

func TestRotationOrderYXZ(t *testing.T) {
	o := NewGroup("o")
	o.Rotation = mgl32.Vec3{mgl32.DegToRad(90), mgl32.DegToRad(90), 0}
	m := computeLocalMatrix(o)
	// X first takes +y to +z, then Y takes +z to +x.
	got := m.Mul4x1(mgl32.Vec4{0, 1, 0, 1}).Vec3()
	if !vecApprox(got, mgl32.Vec3{1, 0, 0}, 1e-5) {
		t.Errorf("rotated +y = %v, want (1, 0, 0)", got)
	}
}
