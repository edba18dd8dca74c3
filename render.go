package backdrop

import (
	"image/color"
	"log/slog"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

// CommandType identifies the kind of render command.
type CommandType uint8

const (
	CommandPoints CommandType = iota // one textured quad per point
	CommandLine                      // one screen-space quad per segment
	CommandMesh                      // flat-shaded triangles
)

// RenderCommand is a single draw instruction emitted during scene traversal.
type RenderCommand struct {
	Type   CommandType
	Object *Object
	Blend  BlendMode
	// Depth is the clip-space w of the object's origin; larger is farther.
	Depth     float32
	treeOrder int

	// Slice headers into the geometry's scratch buffers.
	verts []ebiten.Vertex
	inds  []uint32
	image *ebiten.Image
}

// Vertices returns the screen-space vertices built for this command.
func (c *RenderCommand) Vertices() []ebiten.Vertex { return c.verts }

// Indices returns the triangle indices built for this command.
func (c *RenderCommand) Indices() []uint32 { return c.inds }

// projectedVertex is a geometry vertex after the world and view-projection
// transforms.
type projectedVertex struct {
	world  mgl32.Vec3
	sx, sy float32
	depth  float32
	ok     bool
}

type meshTri struct {
	depth float32
	v     [3]ebiten.Vertex
}

// FrameStats holds per-frame timing and draw-call metrics. Timings are only
// measured when the renderer runs in debug mode.
type FrameStats struct {
	TraverseTime time.Duration
	SortTime     time.Duration
	SubmitTime   time.Duration
	Commands     int
	DrawCalls    int
	Vertices     int
}

var whiteImage *ebiten.Image

// ensureWhiteImage returns a shared 3x3 white image. Sampling its center
// texel avoids bleeding from the transparent border ebiten adds.
func ensureWhiteImage() *ebiten.Image {
	if whiteImage == nil {
		whiteImage = ebiten.NewImage(3, 3)
		whiteImage.Fill(color.White)
	}
	return whiteImage
}

// Renderer draws a Scene onto a Surface. It traverses the object tree,
// emits one RenderCommand per visible object, sorts them back to front and
// submits each as a single DrawTriangles32 call.
type Renderer struct {
	surface *Surface
	logger  *slog.Logger
	debug   bool

	commands  []RenderCommand
	sortBuf   []RenderCommand
	tris      []meshTri
	treeOrder int

	width, height float32
	eye           mgl32.Vec3
	viewProj      mgl32.Mat4
	focal         float32
	pixelScale    float32
	lights        []*Light

	stats  FrameStats
	frames uint64
}

// NewRenderer creates a renderer targeting surface. A nil logger discards.
func NewRenderer(surface *Surface, logger *slog.Logger, debug bool) *Renderer {
	if logger == nil {
		logger = discardLogger
	}
	return &Renderer{surface: surface, logger: logger, debug: debug}
}

// Draw renders one frame: begin the surface, build and sort commands,
// submit them.
func (r *Renderer) Draw(scene *Scene, cam *Camera) {
	if r.surface == nil || r.surface.Released() {
		return
	}
	r.surface.Begin()
	w, h := r.surface.PhysicalSize()

	var t0 time.Time
	if r.debug {
		t0 = time.Now()
	}
	r.Prepare(scene, cam, w, h)
	var t1 time.Time
	if r.debug {
		t1 = time.Now()
	}
	r.mergeSort()
	var t2 time.Time
	if r.debug {
		t2 = time.Now()
	}
	r.submit(r.surface.Image())
	if r.debug {
		r.stats.TraverseTime = t1.Sub(t0)
		r.stats.SortTime = t2.Sub(t1)
		r.stats.SubmitTime = time.Since(t2)
		r.debugLog()
	}
	r.frames++
}

// Prepare traverses the scene and builds the unsorted command list for a
// w x h target without drawing anything.
func (r *Renderer) Prepare(scene *Scene, cam *Camera, w, h int) {
	r.commands = r.commands[:0]
	r.treeOrder = 0
	r.stats = FrameStats{}
	r.width, r.height = float32(w), float32(h)
	r.eye = cam.Position
	r.viewProj = cam.ViewProjection()
	r.focal = cam.Projection()[5] * r.height / 2
	r.lights = scene.Lights()
	r.pixelScale = 1
	if r.surface != nil {
		r.pixelScale = float32(r.surface.Scale())
	}

	scene.UpdateTransforms()
	for _, child := range scene.root.children {
		r.traverse(child)
	}
	r.stats.Commands = len(r.commands)
}

// Commands returns the command list of the last frame. The returned slice
// MUST NOT be retained across frames.
func (r *Renderer) Commands() []RenderCommand {
	return r.commands
}

// Stats returns the metrics of the last frame.
func (r *Renderer) Stats() FrameStats {
	return r.stats
}

// Frames returns the number of frames drawn.
func (r *Renderer) Frames() uint64 {
	return r.frames
}

func (r *Renderer) traverse(o *Object) {
	if !o.Visible || o.worldOpacity <= 0 {
		return
	}
	m := o.material
	g := o.Geometry
	if o.Type != ObjectGroup && m != nil && !m.released && g != nil && !g.released && g.Len() > 0 {
		mvp := r.viewProj.Mul4(o.worldMatrix)
		origin := mvp.Col(3)
		cmd := RenderCommand{
			Object: o,
			Blend:  m.Blend,
			Depth:  origin[3],
		}
		ok := false
		switch o.Type {
		case ObjectPoints:
			cmd.Type = CommandPoints
			ok = r.buildPoints(&cmd, o, mvp)
		case ObjectLine:
			cmd.Type = CommandLine
			ok = r.buildLine(&cmd, o, mvp)
		case ObjectMesh:
			cmd.Type = CommandMesh
			ok = r.buildMesh(&cmd, o, mvp)
		}
		if ok {
			r.treeOrder++
			cmd.treeOrder = r.treeOrder
			r.commands = append(r.commands, cmd)
		}
	}
	for _, child := range o.children {
		r.traverse(child)
	}
}

// vertexColor returns the premultiplied color of vertex i.
func vertexColor(o *Object, i int) (cr, cg, cb, ca float32) {
	m := o.material
	c := m.Color
	if i < len(o.Geometry.Colors) {
		vc := o.Geometry.Colors[i]
		c = Color{c.R * vc.R, c.G * vc.G, c.B * vc.B, c.A * vc.A}
	}
	ca = c.A * m.Opacity * o.worldOpacity
	return c.R * ca, c.G * ca, c.B * ca, ca
}

func (r *Renderer) project(g *Geometry, world, mvp mgl32.Mat4) []projectedVertex {
	n := g.Len()
	if cap(g.projected) < n {
		g.projected = make([]projectedVertex, n)
	}
	g.projected = g.projected[:n]
	for i, p := range g.Positions {
		v4 := p.Vec4(1)
		sx, sy, d, ok := projectPoint(mvp.Mul4x1(v4), r.width, r.height)
		g.projected[i] = projectedVertex{
			world: world.Mul4x1(v4).Vec3(),
			sx:    sx,
			sy:    sy,
			depth: d,
			ok:    ok,
		}
	}
	return g.projected
}

func (r *Renderer) buildPoints(cmd *RenderCommand, o *Object, mvp mgl32.Mat4) bool {
	g, m := o.Geometry, o.material
	img := ensureWhiteImage()
	var u0, v0, u1, v1 float32 = 1, 1, 2, 2
	if m.Texture != nil && m.Texture.image != nil {
		img = m.Texture.image
		u0, v0 = 0, 0
		u1, v1 = float32(m.Texture.w), float32(m.Texture.h)
	}
	// Object scale applies uniformly to point size.
	size := m.PointSize * o.worldMatrix.Col(0).Vec3().Len()

	verts := g.verts[:0]
	inds := g.inds[:0]
	for i, p := range g.Positions {
		sx, sy, d, ok := projectPoint(mvp.Mul4x1(p.Vec4(1)), r.width, r.height)
		if !ok {
			continue
		}
		half := size * r.focal / d / 2
		if half < 0.5 {
			half = 0.5
		}
		cr, cg, cb, ca := vertexColor(o, i)
		base := uint32(len(verts))
		verts = append(verts,
			ebiten.Vertex{DstX: sx - half, DstY: sy - half, SrcX: u0, SrcY: v0, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca},
			ebiten.Vertex{DstX: sx + half, DstY: sy - half, SrcX: u1, SrcY: v0, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca},
			ebiten.Vertex{DstX: sx - half, DstY: sy + half, SrcX: u0, SrcY: v1, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca},
			ebiten.Vertex{DstX: sx + half, DstY: sy + half, SrcX: u1, SrcY: v1, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca},
		)
		inds = append(inds, base, base+1, base+2, base+1, base+3, base+2)
	}
	g.verts, g.inds = verts, inds
	cmd.verts, cmd.inds, cmd.image = verts, inds, img
	return len(inds) > 0
}

// buildLine emits a quad per segment. Geometries with indices are drawn as
// segment pairs; otherwise the positions form one connected strip.
func (r *Renderer) buildLine(cmd *RenderCommand, o *Object, mvp mgl32.Mat4) bool {
	g, m := o.Geometry, o.material
	pv := r.project(g, o.worldMatrix, mvp)
	half := m.LineWidth * r.pixelScale / 2

	verts := g.verts[:0]
	inds := g.inds[:0]
	segment := func(a, b int) {
		pa, pb := pv[a], pv[b]
		if !pa.ok || !pb.ok {
			return
		}
		dx, dy := pb.sx-pa.sx, pb.sy-pa.sy
		l := mgl32.Vec2{dx, dy}.Len()
		if l == 0 {
			return
		}
		nx, ny := -dy/l*half, dx/l*half
		ar, ag, ab, aa := vertexColor(o, a)
		br, bg, bb, ba := vertexColor(o, b)
		base := uint32(len(verts))
		verts = append(verts,
			ebiten.Vertex{DstX: pa.sx + nx, DstY: pa.sy + ny, SrcX: 1, SrcY: 1, ColorR: ar, ColorG: ag, ColorB: ab, ColorA: aa},
			ebiten.Vertex{DstX: pb.sx + nx, DstY: pb.sy + ny, SrcX: 2, SrcY: 1, ColorR: br, ColorG: bg, ColorB: bb, ColorA: ba},
			ebiten.Vertex{DstX: pa.sx - nx, DstY: pa.sy - ny, SrcX: 1, SrcY: 2, ColorR: ar, ColorG: ag, ColorB: ab, ColorA: aa},
			ebiten.Vertex{DstX: pb.sx - nx, DstY: pb.sy - ny, SrcX: 2, SrcY: 2, ColorR: br, ColorG: bg, ColorB: bb, ColorA: ba},
		)
		inds = append(inds, base, base+1, base+2, base+1, base+3, base+2)
	}
	if len(g.Indices) > 0 {
		for i := 0; i+1 < len(g.Indices); i += 2 {
			a, b := int(g.Indices[i]), int(g.Indices[i+1])
			if a < len(pv) && b < len(pv) {
				segment(a, b)
			}
		}
	} else {
		for i := 0; i+1 < len(pv); i++ {
			segment(i, i+1)
		}
	}
	g.verts, g.inds = verts, inds
	cmd.verts, cmd.inds, cmd.image = verts, inds, ensureWhiteImage()
	return len(inds) > 0
}

// buildMesh flat-shades each front-facing triangle and orders triangles
// back to front. Triangles are wound counter-clockwise when seen from
// outside.
func (r *Renderer) buildMesh(cmd *RenderCommand, o *Object, mvp mgl32.Mat4) bool {
	g, m := o.Geometry, o.material
	pv := r.project(g, o.worldMatrix, mvp)

	r.tris = r.tris[:0]
	for i := 0; i+2 < len(g.Indices); i += 3 {
		ia, ib, ic := int(g.Indices[i]), int(g.Indices[i+1]), int(g.Indices[i+2])
		if ia >= len(pv) || ib >= len(pv) || ic >= len(pv) {
			continue
		}
		a, b, c := pv[ia], pv[ib], pv[ic]
		if !a.ok || !b.ok || !c.ok {
			continue
		}
		n := b.world.Sub(a.world).Cross(c.world.Sub(a.world))
		if n.Len() == 0 {
			continue
		}
		n = n.Normalize()
		center := a.world.Add(b.world).Add(c.world).Mul(1.0 / 3)
		if n.Dot(r.eye.Sub(center)) <= 0 {
			continue
		}
		base := m.Color
		if ia < len(g.Colors) {
			vc := g.Colors[ia]
			base = Color{base.R * vc.R, base.G * vc.G, base.B * vc.B, base.A * vc.A}
		}
		lit := shade(r.lights, m, base, center, n)
		ca := lit.A * m.Opacity * o.worldOpacity
		cr, cg, cb := lit.R*ca, lit.G*ca, lit.B*ca
		t := meshTri{depth: (a.depth + b.depth + c.depth) / 3}
		for k, p := range [3]projectedVertex{a, b, c} {
			t.v[k] = ebiten.Vertex{DstX: p.sx, DstY: p.sy, SrcX: 1.5, SrcY: 1.5, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca}
		}
		r.tris = append(r.tris, t)
	}
	if len(r.tris) == 0 {
		return false
	}
	sortTris(r.tris)

	verts := g.verts[:0]
	inds := g.inds[:0]
	for i := range r.tris {
		base := uint32(len(verts))
		verts = append(verts, r.tris[i].v[:]...)
		inds = append(inds, base, base+1, base+2)
	}
	g.verts, g.inds = verts, inds
	cmd.verts, cmd.inds, cmd.image = verts, inds, ensureWhiteImage()
	return true
}

// sortTris orders triangles far to near with an insertion sort; meshes are
// small and mostly sorted from the previous frame.
func sortTris(tris []meshTri) {
	for i := 1; i < len(tris); i++ {
		key := tris[i]
		j := i - 1
		for j >= 0 && tris[j].depth < key.depth {
			tris[j+1] = tris[j]
			j--
		}
		tris[j+1] = key
	}
}

func (r *Renderer) submit(target *ebiten.Image) {
	var op ebiten.DrawTrianglesOptions
	op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	op.AntiAlias = r.surface.Options().Antialias
	for i := range r.commands {
		cmd := &r.commands[i]
		op.Blend = cmd.Blend.EbitenBlend()
		target.DrawTriangles32(cmd.verts, cmd.inds, cmd.image, &op)
		r.stats.DrawCalls++
		r.stats.Vertices += len(cmd.verts)
	}
}

// --- Merge sort ---

// commandLessOrEqual returns true if a should be drawn before or at the same
// time as b: normal blending before additive, then far before near. Using
// <= for treeOrder keeps the sort stable.
func commandLessOrEqual(a, b *RenderCommand) bool {
	if a.Blend != b.Blend {
		return a.Blend < b.Blend
	}
	if a.Depth != b.Depth {
		return a.Depth > b.Depth
	}
	return a.treeOrder <= b.treeOrder
}

// mergeSort sorts r.commands in place using r.sortBuf as scratch space.
// Bottom-up merge sort: zero allocations once the buffer reaches its
// high-water mark.
func (r *Renderer) mergeSort() {
	n := len(r.commands)
	if n <= 1 {
		return
	}
	if cap(r.sortBuf) < n {
		r.sortBuf = make([]RenderCommand, n)
	}
	r.sortBuf = r.sortBuf[:n]

	a := r.commands
	b := r.sortBuf
	swapped := false
	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}
	if swapped {
		copy(r.commands, r.sortBuf)
	}
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst []RenderCommand, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if commandLessOrEqual(&src[i], &src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	k += copy(dst[k:], src[i:mid])
	copy(dst[k:], src[j:hi])
}
