package backdrop

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
)

var objectIDCounter atomic.Uint32

func nextObjectID() uint32 {
	return objectIDCounter.Add(1)
}

// Object is a positioned, renderable entity within a Scene. A single flat
// struct is used for all object types to avoid interface dispatch on the
// hot path. An Object exclusively owns its Geometry and its children; its
// Material may be shared and is reference counted.
type Object struct {
	// Identity
	ID   uint32
	Name string
	Type ObjectType

	// Hierarchy
	Parent   *Object
	children []*Object

	// Transform (local). Rotation is Euler angles in radians, applied Y, X, Z.
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3

	// Opacity multiplies the material opacity and is inherited by children.
	Opacity float32
	Visible bool

	// Geometry is released when the object is disposed.
	Geometry *Geometry

	// Metadata
	UserData any

	material *Material

	// Computed during traversal.
	worldMatrix  mgl32.Mat4
	worldOpacity float32

	disposed bool
}

func objectDefaults(o *Object) {
	o.ID = nextObjectID()
	o.Scale = mgl32.Vec3{1, 1, 1}
	o.Opacity = 1
	o.Visible = true
	o.worldMatrix = mgl32.Ident4()
}

// NewGroup creates a transform-only object with no visual representation.
func NewGroup(name string) *Object {
	o := &Object{Name: name, Type: ObjectGroup}
	objectDefaults(o)
	return o
}

// NewPoints creates a point cloud; each geometry position renders as one
// point sized by the material's PointSize.
func NewPoints(name string, geom *Geometry, mat *Material) *Object {
	return newVisual(name, ObjectPoints, geom, mat)
}

// NewMesh creates an indexed triangle mesh.
func NewMesh(name string, geom *Geometry, mat *Material) *Object {
	return newVisual(name, ObjectMesh, geom, mat)
}

// NewLine creates a line strip through the geometry positions in order.
func NewLine(name string, geom *Geometry, mat *Material) *Object {
	return newVisual(name, ObjectLine, geom, mat)
}

func newVisual(name string, typ ObjectType, geom *Geometry, mat *Material) *Object {
	o := &Object{Name: name, Type: typ, Geometry: geom}
	objectDefaults(o)
	o.SetMaterial(mat)
	return o
}

// Material returns the object's material, or nil.
func (o *Object) Material() *Material {
	return o.material
}

// SetMaterial replaces the object's material, retaining the new one and
// releasing the old one.
func (o *Object) SetMaterial(m *Material) {
	if o.material == m {
		return
	}
	if m != nil {
		m.retain()
	}
	if o.material != nil {
		o.material.release()
	}
	o.material = m
}

// WorldPosition returns the translation of the world matrix computed on the
// last render traversal.
func (o *Object) WorldPosition() mgl32.Vec3 {
	return o.worldMatrix.Col(3).Vec3()
}

// --- Tree manipulation ---

// AddChild appends child to this object's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this object (cycle).
func (o *Object) AddChild(child *Object) {
	if child == nil {
		panic("backdrop: cannot add nil child")
	}
	if isAncestor(child, o) {
		panic("backdrop: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = o
	o.children = append(o.children, child)
}

// RemoveChild detaches child from this object.
// Panics if child.Parent != o.
func (o *Object) RemoveChild(child *Object) {
	if child.Parent != o {
		panic("backdrop: child's parent is not this object")
	}
	o.removeChildByPtr(child)
	child.Parent = nil
}

// RemoveFromParent detaches this object from its parent.
// No-op if this object has no parent.
func (o *Object) RemoveFromParent() {
	if o.Parent == nil {
		return
	}
	o.Parent.RemoveChild(o)
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (o *Object) Children() []*Object {
	return o.children
}

// NumChildren returns the number of children.
func (o *Object) NumChildren() int {
	return len(o.children)
}

// Walk visits o and its descendants depth-first. Returning false from fn
// skips the visited object's subtree.
func (o *Object) Walk(fn func(*Object) bool) {
	if !fn(o) {
		return
	}
	for _, child := range o.children {
		child.Walk(fn)
	}
}

// --- Disposal ---

// Dispose removes this object from its parent, marks it as disposed,
// releases its geometry and material reference, and recursively disposes
// all descendants. Calling Dispose twice is a no-op.
func (o *Object) Dispose() {
	if o.disposed {
		return
	}
	o.RemoveFromParent()
	o.dispose()
}

func (o *Object) dispose() {
	o.disposed = true
	for _, child := range o.children {
		child.Parent = nil
		child.dispose()
	}
	o.children = nil
	o.Parent = nil
	if o.Geometry != nil {
		o.Geometry.release()
		o.Geometry = nil
	}
	if o.material != nil {
		o.material.release()
		o.material = nil
	}
	o.UserData = nil
}

// IsDisposed returns true if this object has been disposed.
func (o *Object) IsDisposed() bool {
	return o.disposed
}

// isAncestor reports whether candidate is an ancestor of obj.
func isAncestor(candidate, obj *Object) bool {
	for p := obj; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from o.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (o *Object) removeChildByPtr(child *Object) {
	for i, c := range o.children {
		if c == child {
			copy(o.children[i:], o.children[i+1:])
			o.children[len(o.children)-1] = nil
			o.children = o.children[:len(o.children)-1]
			return
		}
	}
}
