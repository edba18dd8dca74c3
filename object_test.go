package backdrop

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestNewObjectDefaults(t *testing.T) {
	o := NewGroup("g")
	if o.Scale != (mgl32.Vec3{1, 1, 1}) || o.Opacity != 1 || !o.Visible {
		t.Errorf("defaults: scale %v, opacity %f, visible %v", o.Scale, o.Opacity, o.Visible)
	}
	if o.Type != ObjectGroup || o.Type.String() != "group" {
		t.Errorf("type = %v", o.Type)
	}
	if NewGroup("a").ID == NewGroup("b").ID {
		t.Error("object IDs not unique")
	}
}

func TestAddChildReparents(t *testing.T) {
	a, b, c := NewGroup("a"), NewGroup("b"), NewGroup("c")
	a.AddChild(c)
	b.AddChild(c)
	if c.Parent != b || a.NumChildren() != 0 || b.NumChildren() != 1 {
		t.Errorf("parent = %v, a children %d, b children %d", c.Parent.Name, a.NumChildren(), b.NumChildren())
	}
}

func TestAddChildPanics(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{"nil child", func() { NewGroup("a").AddChild(nil) }},
		{"self", func() {
			a := NewGroup("a")
			a.AddChild(a)
		}},
		{"cycle", func() {
			a, b := NewGroup("a"), NewGroup("b")
			a.AddChild(b)
			b.AddChild(a)
		}},
		{"wrong parent", func() { NewGroup("a").RemoveChild(NewGroup("b")) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.fn()
		})
	}
}

func TestRemoveFromParent(t *testing.T) {
	a, b, c := NewGroup("a"), NewGroup("b"), NewGroup("c")
	a.AddChild(b)
	a.AddChild(c)
	b.RemoveFromParent()
	b.RemoveFromParent()
	if a.NumChildren() != 1 || a.Children()[0] != c || b.Parent != nil {
		t.Errorf("children = %d, b.Parent = %v", a.NumChildren(), b.Parent)
	}
}

func TestWalkSkipsSubtree(t *testing.T) {
	root := NewGroup("root")
	skip := NewGroup("skip")
	keep := NewGroup("keep")
	skip.AddChild(NewGroup("hidden"))
	keep.AddChild(NewGroup("leaf"))
	root.AddChild(skip)
	root.AddChild(keep)

	var names []string
	root.Walk(func(o *Object) bool {
		names = append(names, o.Name)
		return o.Name != "skip"
	})
	want := []string{"root", "skip", "keep", "leaf"}
	if len(names) != len(want) {
		t.Fatalf("visited %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("visited %v, want %v", names, want)
			break
		}
	}
}

func TestDisposeRecursive(t *testing.T) {
	rm := NewResourceManager()
	mat := rm.NewMaterial("m")
	parent := NewMesh("parent", rm.NewGeometry(nil, nil, nil), mat)
	child := NewMesh("child", rm.NewGeometry(nil, nil, nil), mat)
	grand := NewGroup("grand")
	parent.AddChild(child)
	child.AddChild(grand)
	holder := NewGroup("holder")
	holder.AddChild(parent)

	parent.Dispose()
	if holder.NumChildren() != 0 {
		t.Error("disposed object still attached to its parent")
	}
	for _, o := range []*Object{parent, child, grand} {
		if !o.IsDisposed() || o.Parent != nil {
			t.Errorf("%s: disposed = %v, parent = %v", o.Name, o.IsDisposed(), o.Parent)
		}
	}
	if mat.Released() || mat.Refs() != 0 {
		t.Errorf("manager material: released = %v, refs = %d; want held by the manager", mat.Released(), mat.Refs())
	}
	if st := rm.Stats(); st.Released.Geometries != 2 {
		t.Errorf("released geometries = %d, want 2", st.Released.Geometries)
	}
	parent.Dispose()
	if st := rm.Stats(); st.Released.Geometries != 2 || st.Released.Materials != 0 {
		t.Errorf("second Dispose released again: %+v", st.Released)
	}
	rm.Dispose()
	if !mat.Released() || rm.Stats().Released.Materials != 1 {
		t.Error("material not released by the manager")
	}
}

func TestSetMaterial(t *testing.T) {
	rm := NewResourceManager()
	m1, m2 := rm.NewMaterial("m1"), rm.NewMaterial("m2")
	o := NewMesh("o", nil, m1)
	o.SetMaterial(m1)
	if m1.Refs() != 1 {
		t.Fatalf("Refs = %d after setting the same material, want 1", m1.Refs())
	}
	o.SetMaterial(m2)
	if m1.Refs() != 0 || m2.Refs() != 1 || o.Material() != m2 {
		t.Errorf("m1 refs = %d, m2 refs = %d", m1.Refs(), m2.Refs())
	}

	// A material with no manager goes with its last reference.
	loose := &Material{Name: "loose"}
	o.SetMaterial(loose)
	o.SetMaterial(m1)
	if !loose.Released() {
		t.Error("unmanaged material not released with its last reference")
	}
}

func TestSwappedMaterialReusable(t *testing.T) {
	rm := NewResourceManager()
	tex, err := rm.NewGlowTexture(4)
	if err != nil {
		t.Fatal(err)
	}
	m1, m2 := rm.NewMaterial("m1"), rm.NewMaterial("m2")
	m1.Texture = tex
	a := NewPoints("a", rm.NewGeometry([]mgl32.Vec3{{}}, nil, nil), m1)
	a.SetMaterial(m2)
	if m1.Released() || tex.Released() {
		t.Fatal("swapped-out material released while its manager is live")
	}

	b := NewPoints("b", rm.NewGeometry([]mgl32.Vec3{{}}, nil, nil), m1)
	if b.Material() != m1 || m1.Refs() != 1 || m1.Texture != tex || tex.Image() == nil {
		t.Fatalf("reassigned material: refs = %d, texture = %v", m1.Refs(), m1.Texture)
	}
	b.Dispose()
	a.Dispose()
	if m1.Released() || m2.Released() {
		t.Fatal("materials released before the manager")
	}

	rm.Dispose()
	rm.Dispose()
	st := rm.Stats()
	if !m1.Released() || !m2.Released() || !tex.Released() {
		t.Error("manager Dispose left a material or texture live")
	}
	if st.Released.Materials != 2 || st.Released.Textures != 1 || st.Live.Total() != 0 {
		t.Errorf("ledger: live %+v, released %+v", st.Live, st.Released)
	}
}

func TestSceneAddRemove(t *testing.T) {
	s := NewScene()
	o := NewGroup("o")
	s.Add(o)
	if o.Parent != s.Root() {
		t.Fatal("Add did not attach to the root")
	}
	nested := NewGroup("nested")
	o.AddChild(nested)
	s.Remove(nested)
	if nested.Parent != o {
		t.Error("Remove detached a non-root child")
	}
	s.Remove(o)
	if s.Root().NumChildren() != 0 {
		t.Error("Remove left the object attached")
	}
}

func TestSceneDispose(t *testing.T) {
	s := NewScene()
	o := NewGroup("o")
	s.Add(o)
	s.AddLight(NewAmbientLight("a", ColorWhite, 1))
	s.Dispose()
	s.Dispose()
	if !s.IsDisposed() || !o.IsDisposed() || len(s.Lights()) != 0 {
		t.Errorf("scene disposed = %v, object disposed = %v, lights = %d",
			s.IsDisposed(), o.IsDisposed(), len(s.Lights()))
	}
	count := 0
	s.Walk(func(*Object) bool { count++; return true })
	if count != 0 {
		t.Errorf("disposed scene still walks %d objects", count)
	}
}
