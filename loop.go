package backdrop

import (
	"log/slog"
	"time"
)

// LoopState is the render loop's state.
type LoopState uint8

const (
	LoopStopped LoopState = iota
	LoopRunning
)

func (s LoopState) String() string {
	if s == LoopRunning {
		return "running"
	}
	return "stopped"
}

// FrameInfo is what per-frame hooks see.
type FrameInfo struct {
	// Elapsed is seconds since the first frame after Start.
	Elapsed float32
	// Delta is seconds since the previous frame; zero on the first frame.
	Delta    float32
	Frame    uint64
	Pointer  PointerSnapshot
	Viewport ViewportSnapshot
}

// FrameHook runs once per frame after the timeline has advanced and before
// the draw call. Hooks apply time-driven transforms such as orbits.
type FrameHook func(FrameInfo)

// Drawer issues the draw call for one frame.
type Drawer interface {
	Draw(scene *Scene, cam *Camera)
}

// LoopConfig wires a Loop to its collaborators. Every field except Logger
// and OnResize is required.
type LoopConfig struct {
	Scheduler FrameScheduler
	Scene     *Scene
	Camera    *Camera
	Timeline  *Timeline
	Pointer   *PointerState
	Viewport  *ViewportState
	Drawer    Drawer
	// OnResize runs inside the frame that first observes a new viewport
	// size, after the camera aspect is updated and before drawing.
	OnResize func(ViewportSnapshot)
	Logger   *slog.Logger
}

// Loop is the render loop driver: a single self-rescheduling frame
// callback that reads pointer and viewport state, advances the timeline,
// runs frame hooks, moves the camera and draws. It moves between
// LoopStopped and LoopRunning only.
//
// A Loop must be driven from its scene's goroutine: Start, Stop and the
// scheduler's callbacks must not run concurrently.
type Loop struct {
	cfg   LoopConfig
	hooks []FrameHook

	state LoopState
	token FrameToken
	gen   uint64

	started   bool
	startAt   time.Duration
	lastAt    time.Duration
	frames    uint64
	vpVersion uint64
}

// NewLoop creates a stopped loop.
func NewLoop(cfg LoopConfig) *Loop {
	if cfg.Logger == nil {
		cfg.Logger = discardLogger
	}
	return &Loop{cfg: cfg}
}

// AddHook registers a per-frame hook. Hooks run in registration order.
func (l *Loop) AddHook(h FrameHook) {
	l.hooks = append(l.hooks, h)
}

// Start transitions Stopped -> Running and requests the first frame.
// No-op if already running.
func (l *Loop) Start() {
	if l.state == LoopRunning {
		return
	}
	l.state = LoopRunning
	l.started = false
	l.request()
	l.cfg.Logger.Debug("render loop started")
}

// Stop transitions Running -> Stopped and cancels the pending frame. After
// Stop returns no frame callback of this loop draws again, including
// callbacks the host invokes late with a stale token. A frame already in
// progress finishes but does not reschedule.
func (l *Loop) Stop() {
	if l.state == LoopStopped {
		return
	}
	l.state = LoopStopped
	l.gen++
	if l.token != 0 {
		l.cfg.Scheduler.CancelFrame(l.token)
		l.token = 0
	}
	l.cfg.Logger.Debug("render loop stopped", "frames", l.frames)
}

// State returns the current state.
func (l *Loop) State() LoopState {
	return l.state
}

// Frames returns the number of frames drawn.
func (l *Loop) Frames() uint64 {
	return l.frames
}

// PendingToken returns the token of the requested next frame, or zero.
func (l *Loop) PendingToken() FrameToken {
	return l.token
}

func (l *Loop) request() {
	l.gen++
	gen := l.gen
	l.token = l.cfg.Scheduler.RequestFrame(func(now time.Duration) {
		l.frame(gen, now)
	})
}

func (l *Loop) frame(gen uint64, now time.Duration) {
	if l.state != LoopRunning || gen != l.gen {
		return
	}
	l.token = 0

	if !l.started {
		l.started = true
		l.startAt = now
		l.lastAt = now
	}
	info := FrameInfo{
		Elapsed:  float32((now - l.startAt).Seconds()),
		Delta:    float32(max(now-l.lastAt, 0).Seconds()),
		Frame:    l.frames,
		Pointer:  l.cfg.Pointer.Snapshot(),
		Viewport: l.cfg.Viewport.Snapshot(),
	}
	l.lastAt = now

	if info.Viewport.Version != l.vpVersion {
		l.vpVersion = info.Viewport.Version
		l.cfg.Camera.SetAspect(info.Viewport.Aspect())
		if l.cfg.OnResize != nil {
			l.cfg.OnResize(info.Viewport)
		}
	}

	l.cfg.Timeline.Advance(info.Delta)
	for _, h := range l.hooks {
		h(info)
	}
	l.cfg.Camera.Nudge(l.cfg.Camera.ParallaxTarget(info.Pointer))

	l.cfg.Drawer.Draw(l.cfg.Scene, l.cfg.Camera)
	l.frames++

	if l.state == LoopRunning && gen == l.gen {
		l.request()
	}
}
