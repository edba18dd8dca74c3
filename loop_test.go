package backdrop

import (
	"slices"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween/ease"
)

// recordingDrawer records the camera aspect at every draw.
type recordingDrawer struct {
	aspects []float32
	log     *[]string
}

func (d *recordingDrawer) Draw(_ *Scene, cam *Camera) {
	d.aspects = append(d.aspects, cam.Aspect())
	if d.log != nil {
		*d.log = append(*d.log, "draw")
	}
}

// leakyScheduler hands out callbacks but ignores cancellation, like a host
// that fires a frame it was asked to drop.
type leakyScheduler struct {
	fns []FrameFunc
}

func (s *leakyScheduler) RequestFrame(fn FrameFunc) FrameToken {
	s.fns = append(s.fns, fn)
	return FrameToken(len(s.fns))
}

func (s *leakyScheduler) CancelFrame(FrameToken) {}

type loopFixture struct {
	loop     *Loop
	sched    *ManualScheduler
	drawer   *recordingDrawer
	camera   *Camera
	timeline *Timeline
	pointer  *PointerState
	viewport *ViewportState
}

func newLoopFixture(sched FrameScheduler) *loopFixture {
	f := &loopFixture{
		drawer:   &recordingDrawer{},
		camera:   NewCamera(75, 1, mgl32.Vec3{0, 0, 30}),
		timeline: NewTimeline(),
		pointer:  &PointerState{},
		viewport: &ViewportState{},
	}
	if sched == nil {
		f.sched = NewManualScheduler()
		sched = f.sched
	}
	f.viewport.Set(800, 800)
	f.loop = NewLoop(LoopConfig{
		Scheduler: sched,
		Scene:     NewScene(),
		Camera:    f.camera,
		Timeline:  f.timeline,
		Pointer:   f.pointer,
		Viewport:  f.viewport,
		Drawer:    f.drawer,
	})
	return f
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func TestLoopStartStop(t *testing.T) {
	f := newLoopFixture(nil)
	if f.loop.State() != LoopStopped {
		t.Fatalf("new loop state = %v", f.loop.State())
	}
	f.loop.Start()
	f.loop.Start()
	if f.loop.State() != LoopRunning || f.sched.Pending() != 1 {
		t.Fatalf("after Start: state = %v, pending = %d", f.loop.State(), f.sched.Pending())
	}
	for i := 0; i < 3; i++ {
		f.sched.Flush(ms(16 * i))
	}
	if len(f.drawer.aspects) != 3 || f.loop.Frames() != 3 {
		t.Fatalf("draws = %d, frames = %d, want 3", len(f.drawer.aspects), f.loop.Frames())
	}
	if f.loop.PendingToken() == 0 {
		t.Error("running loop has no pending token")
	}

	f.loop.Stop()
	if f.loop.State() != LoopStopped || f.sched.Pending() != 0 || f.loop.PendingToken() != 0 {
		t.Fatalf("after Stop: state = %v, pending = %d", f.loop.State(), f.sched.Pending())
	}
	f.sched.Flush(ms(100))
	if len(f.drawer.aspects) != 3 {
		t.Errorf("drew %d frames after Stop", len(f.drawer.aspects)-3)
	}
	f.loop.Stop()
}

func TestLoopStaleCallbackDoesNotDraw(t *testing.T) {
	sched := &leakyScheduler{}
	f := newLoopFixture(sched)
	f.loop.Start()
	stale := sched.fns[0]
	f.loop.Stop()

	stale(ms(16))
	if len(f.drawer.aspects) != 0 {
		t.Fatal("stale callback drew after Stop")
	}

	f.loop.Start()
	fresh := sched.fns[1]
	stale(ms(32))
	if len(f.drawer.aspects) != 0 {
		t.Fatal("callback from the previous run drew after restart")
	}
	fresh(ms(48))
	if len(f.drawer.aspects) != 1 {
		t.Fatalf("fresh callback draws = %d, want 1", len(f.drawer.aspects))
	}
	// Invoking the same callback twice must not draw twice.
	fresh(ms(64))
	if len(f.drawer.aspects) != 1 {
		t.Errorf("consumed callback drew again")
	}
}

func TestLoopStopInsideFrame(t *testing.T) {
	f := newLoopFixture(nil)
	f.loop.AddHook(func(FrameInfo) { f.loop.Stop() })
	f.loop.Start()
	f.sched.Flush(0)
	if len(f.drawer.aspects) != 1 {
		t.Errorf("in-progress frame draws = %d, want 1", len(f.drawer.aspects))
	}
	if f.sched.Pending() != 0 {
		t.Errorf("frame rescheduled after Stop: pending = %d", f.sched.Pending())
	}
}

func TestLoopResizeAppliesBeforeDraw(t *testing.T) {
	f := newLoopFixture(nil)
	var log []string
	f.drawer.log = &log
	f.loop.cfg.OnResize = func(vp ViewportSnapshot) {
		log = append(log, "resize")
	}
	f.loop.Start()
	f.sched.Flush(0)

	f.viewport.Set(1920, 1080)
	f.sched.Flush(ms(16))
	want := float32(1920) / 1080
	if got := f.drawer.aspects[1]; !approx(got, want) {
		t.Errorf("aspect at draw = %f, want %f", got, want)
	}
	if !slices.Equal(log, []string{"resize", "draw", "resize", "draw"}) {
		t.Errorf("order = %v", log)
	}

	f.sched.Flush(ms(32))
	if len(log) != 5 {
		t.Errorf("unchanged viewport triggered a resize: %v", log)
	}
}

func TestLoopFrameInfo(t *testing.T) {
	f := newLoopFixture(nil)
	var infos []FrameInfo
	f.loop.AddHook(func(fi FrameInfo) { infos = append(infos, fi) })
	f.loop.Start()
	f.sched.Flush(ms(1000))
	f.sched.Flush(ms(1016))
	f.sched.Flush(ms(1050))

	wantElapsed := []float32{0, 0.016, 0.05}
	wantDelta := []float32{0, 0.016, 0.034}
	for i, fi := range infos {
		if fi.Frame != uint64(i) || !approx(fi.Elapsed, wantElapsed[i]) || !approx(fi.Delta, wantDelta[i]) {
			t.Errorf("frame %d: %+v, want elapsed %f delta %f", i, fi, wantElapsed[i], wantDelta[i])
		}
	}
}

func TestLoopHooksRunAfterTimelineInOrder(t *testing.T) {
	f := newLoopFixture(nil)
	o := NewGroup("o")
	f.timeline.Schedule(o, PropPositionX, 0, 1, 1, ease.Linear, TweenOptions{})
	var seen []float32
	var order []int
	f.loop.AddHook(func(FrameInfo) { order = append(order, 1); seen = append(seen, o.Position[0]) })
	f.loop.AddHook(func(FrameInfo) { order = append(order, 2) })
	f.loop.Start()
	f.sched.Flush(0)
	f.sched.Flush(ms(500))

	if !approx(seen[1], 0.5) {
		t.Errorf("hook saw x = %f, want 0.5 (timeline advanced first)", seen[1])
	}
	if !slices.Equal(order, []int{1, 2, 1, 2}) {
		t.Errorf("hook order = %v", order)
	}
}

func TestLoopParallaxConverges(t *testing.T) {
	f := newLoopFixture(nil)
	f.camera.ParallaxStrength = 2
	f.pointer.Set(800, 0, f.viewport.Snapshot()) // top-right corner
	f.loop.Start()

	prev := f.camera.Position
	for i := 0; i < 200; i++ {
		f.sched.Flush(ms(16 * i))
		p := f.camera.Position
		if p[0] < prev[0] || p[1] < prev[1] {
			t.Fatalf("frame %d: camera moved away from target: %v -> %v", i, prev, p)
		}
		if p[0] > 2 || p[1] > 2 {
			t.Fatalf("frame %d: camera overshot: %v", i, p)
		}
		prev = p
	}
	if !vecApprox(f.camera.Position, mgl32.Vec3{2, 2, 30}, 1e-2) {
		t.Errorf("camera = %v, want near (2, 2, 30)", f.camera.Position)
	}
}

func TestLoopStateString(t *testing.T) {
	if LoopRunning.String() != "running" || LoopStopped.String() != "stopped" {
		t.Error("unexpected LoopState strings")
	}
}
