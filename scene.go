package backdrop

// Scene is the set of objects and lights composing one renderable frame.
// A Scene belongs to exactly one mounted view; there is no global registry.
type Scene struct {
	root   *Object
	lights []*Light

	disposed bool
}

// NewScene creates a new scene with a pre-created root group.
func NewScene() *Scene {
	return &Scene{root: NewGroup("root")}
}

// Root returns the scene's root group.
func (s *Scene) Root() *Object {
	return s.root
}

// Add attaches obj to the root group.
func (s *Scene) Add(obj *Object) {
	s.root.AddChild(obj)
}

// Remove detaches obj from the root group. No-op if obj is not a direct
// child of the root.
func (s *Scene) Remove(obj *Object) {
	if obj.Parent == s.root {
		s.root.RemoveChild(obj)
	}
}

// AddLight adds a light to the scene.
func (s *Scene) AddLight(l *Light) {
	s.lights = append(s.lights, l)
}

// Lights returns the scene's lights. The returned slice MUST NOT be mutated.
func (s *Scene) Lights() []*Light {
	return s.lights
}

// Walk visits every object below the root depth-first.
func (s *Scene) Walk(fn func(*Object) bool) {
	for _, child := range s.root.children {
		child.Walk(fn)
	}
}

// Dispose disposes every object in the scene and drops the lights.
func (s *Scene) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.root.dispose()
	s.lights = nil
}

// IsDisposed returns true if the scene has been disposed.
func (s *Scene) IsDisposed() bool {
	return s.disposed
}
