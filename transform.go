package backdrop

import (
	"github.com/go-gl/mathgl/mgl32"
)

// computeLocalMatrix builds the object's local matrix from its transform
// fields.
//
// Composition order:
//
//	Scale -> RotateZ -> RotateX -> RotateY -> Translate
func computeLocalMatrix(o *Object) mgl32.Mat4 {
	m := mgl32.Translate3D(o.Position[0], o.Position[1], o.Position[2])
	if o.Rotation[1] != 0 {
		m = m.Mul4(mgl32.HomogRotate3DY(o.Rotation[1]))
	}
	if o.Rotation[0] != 0 {
		m = m.Mul4(mgl32.HomogRotate3DX(o.Rotation[0]))
	}
	if o.Rotation[2] != 0 {
		m = m.Mul4(mgl32.HomogRotate3DZ(o.Rotation[2]))
	}
	if o.Scale != (mgl32.Vec3{1, 1, 1}) {
		m = m.Mul4(mgl32.Scale3D(o.Scale[0], o.Scale[1], o.Scale[2]))
	}
	return m
}

// updateWorldMatrix recomputes the world matrix and opacity of o and its
// descendants.
func updateWorldMatrix(o *Object, parent mgl32.Mat4, parentOpacity float32) {
	o.worldMatrix = parent.Mul4(computeLocalMatrix(o))
	o.worldOpacity = parentOpacity * o.Opacity
	for _, child := range o.children {
		updateWorldMatrix(child, o.worldMatrix, o.worldOpacity)
	}
}

// UpdateTransforms recomputes world matrices for every object in the scene
// without rendering. The renderer does this on every frame; callers that
// need WorldPosition outside a frame use it directly.
func (s *Scene) UpdateTransforms() {
	updateWorldMatrix(s.root, mgl32.Ident4(), 1)
}

// LocalToWorld converts a local-space point to world space using the world
// matrix from the last traversal.
func (o *Object) LocalToWorld(p mgl32.Vec3) mgl32.Vec3 {
	return o.worldMatrix.Mul4x1(p.Vec4(1)).Vec3()
}

// WorldMatrix returns the world matrix from the last traversal.
func (o *Object) WorldMatrix() mgl32.Mat4 {
	return o.worldMatrix
}
